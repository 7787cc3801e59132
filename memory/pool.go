package memory

import (
	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
)

// BlockPool hands out fixed-size blocks from an arena in constant time.
//
// Free blocks form a singly linked list threaded through their first word,
// so the pool needs no memory besides the arena itself.
type BlockPool struct {
	resource

	arena     arena
	blocks    int
	blockSize int
	align     int // natural alignment of every block
	first     int // offset of the first free block, format.Nil when exhausted
	count     int // blocks currently allocated

	backing backing
}

// NewBlockPool builds a pool of blocks blocks of blockSize bytes inside
// storage. blockSize is rounded up to the word size. It panics when storage
// cannot hold every block.
func NewBlockPool(name string, blocks, blockSize int, storage []byte, opts ...Option) *BlockPool {
	p := newBlockPool(name, blocks, blockSize, opts)
	p.attach(storage)
	return p
}

// NewBlockPoolFrom builds a pool whose arena is allocated from upstream.
// Close returns the arena.
func NewBlockPoolFrom(name string, blocks, blockSize int, upstream Resource, opts ...Option) (*BlockPool, error) {
	p := newBlockPool(name, blocks, blockSize, opts)
	b, err := acquire(upstream, PoolArenaSize(blocks, blockSize))
	if err != nil {
		return nil, errors.Wrapf(err, "block pool %s", p.Name())
	}
	p.backing = b
	p.attach(b.storage)
	return p, nil
}

// PoolArenaSize returns the storage a pool of the given geometry needs.
func PoolArenaSize(blocks, blockSize int) int {
	return blocks * poolBlockSize(blockSize)
}

func poolBlockSize(blockSize int) int {
	return format.AlignWord(max(blockSize, format.WordSize))
}

func newBlockPool(name string, blocks, blockSize int, opts []Option) *BlockPool {
	if blocks <= 0 || blockSize <= 0 {
		panic(errors.AssertionFailedf("memory: block pool %q needs positive geometry, got %d x %d", name, blocks, blockSize))
	}
	p := &BlockPool{blocks: blocks, blockSize: poolBlockSize(blockSize)}
	p.init(name, p, opts)
	return p
}

func (p *BlockPool) attach(storage []byte) {
	p.arena = newArena(storage, ChunkAlign)
	need := p.blocks * p.blockSize
	if p.arena.size() < need {
		panic(errors.AssertionFailedf("memory: block pool %s needs %d bytes, storage has %d usable", p.Name(), need, p.arena.size()))
	}
	p.arena.buf = p.arena.buf[:need:need]

	p.align = p.blockSize & -p.blockSize
	for p.align > 1 && p.arena.base%uintptr(p.align) != 0 {
		p.align >>= 1
	}

	p.doReset()
	logger.Debug("memory: block pool ready", "resource", p.Name(), "blocks", p.blocks, "block_size", p.blockSize)
	p.trace(TraceConstruct, nil, need, p.align)
}

// Blocks returns the pool capacity.
func (p *BlockPool) Blocks() int { return p.blocks }

// BlockSize returns the size of one block, after rounding.
func (p *BlockPool) BlockSize() int { return p.blockSize }

// Alignment returns the alignment every block satisfies.
func (p *BlockPool) Alignment() int { return p.align }

// Count returns the number of allocated blocks.
func (p *BlockPool) Count() int {
	cs := p.domain.Enter()
	defer cs.Exit()
	return p.count
}

// OwnsStorage reports whether the arena came from an upstream resource and
// has not been returned yet.
func (p *BlockPool) OwnsStorage() bool {
	cs := p.domain.Enter()
	defer cs.Exit()
	return p.backing.owns
}

// Close marks the pool closed and, when the arena came from an upstream
// resource, gives it back. Closing twice is a no-op.
func (p *BlockPool) Close() error {
	cs := p.domain.Enter()
	if p.closed {
		cs.Exit()
		return nil
	}
	p.closed = true
	p.arena = arena{}
	p.first = format.Nil
	b := p.backing
	p.backing = backing{}
	cs.Exit()

	b.release()
	p.trace(TraceDestroy, nil, 0, 0)
	return nil
}

func (p *BlockPool) doAllocate(bytes, alignment int) []byte {
	if bytes > p.blockSize {
		panic(errors.AssertionFailedf("memory: %s: %d bytes exceed block size %d", p.Name(), bytes, p.blockSize))
	}
	if alignment > p.align {
		panic(errors.AssertionFailedf("memory: %s: alignment %d exceeds block alignment %d", p.Name(), alignment, p.align))
	}
	if p.first == format.Nil {
		return nil
	}
	off := p.first
	p.first = p.arena.word(off)
	p.count++
	p.stats.increase(p.blockSize)
	return p.arena.slice(off, bytes)
}

func (p *BlockPool) doDeallocate(b []byte, bytes, _ int) {
	off, ok := p.arena.offsetOf(b)
	if !ok {
		panic(errors.AssertionFailedf("memory: %s: deallocate of %#x outside the pool", p.Name(), addrOf(b)))
	}
	if off%p.blockSize != 0 {
		panic(errors.AssertionFailedf("memory: %s: deallocate of %#x not on a block boundary", p.Name(), addrOf(b)))
	}
	if bytes > p.blockSize {
		panic(errors.AssertionFailedf("memory: %s: deallocate of %d bytes from %d-byte blocks", p.Name(), bytes, p.blockSize))
	}
	p.arena.setWord(off, p.first)
	p.first = off
	p.count--
	p.stats.decrease(p.blockSize)
}

func (p *BlockPool) doMaxSize() int { return p.blockSize }

// doReset threads every block in increasing address order.
func (p *BlockPool) doReset() {
	p.count = 0
	if p.arena.size() == 0 {
		p.first = format.Nil
		p.stats = Stats{}
		return
	}
	last := (p.blocks - 1) * p.blockSize
	for off := 0; off < last; off += p.blockSize {
		p.arena.setWord(off, off+p.blockSize)
	}
	p.arena.setWord(last, format.Nil)
	p.first = 0
	p.stats = fresh(p.blocks*p.blockSize, p.blocks)
}

func (p *BlockPool) doCoalesce() bool { return false }
