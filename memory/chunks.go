package memory

import (
	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/format"
	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
)

// Chunk layout, shared by the variable-size allocators:
//
//	free:       [size][next ]......................
//	allocated:  [size][  pad  ...  ][offset][payload ...]
//
// size covers the whole chunk, header included. next links free chunks in
// ascending address order. offset is the distance from the chunk start to
// the payload and always sits in the word right before the payload; with no
// padding it overlays the next slot and reads headerSize.
const (
	headerSize   = 2 * format.WordSize
	minChunkSize = headerSize + ChunkAlign
)

// chunkList is the address-ordered free list every variable-size allocator
// carves from and coalesces into.
type chunkList struct {
	arena arena
	head  int
	stats *Stats
	owner string
}

func newChunkList(storage []byte, stats *Stats, owner string) chunkList {
	l := chunkList{arena: newArena(storage, ChunkAlign), stats: stats, owner: owner}
	if l.arena.size() < minChunkSize {
		panic(errors.AssertionFailedf("memory: %s: arena of %d bytes is smaller than one chunk", owner, len(storage)))
	}
	return l
}

func (l *chunkList) sizeOf(c int) int        { return l.arena.word(c) }
func (l *chunkList) setSize(c, n int)        { l.arena.setWord(c, n) }
func (l *chunkList) nextOf(c int) int        { return l.arena.word(c + format.WordSize) }
func (l *chunkList) setNext(c, next int)     { l.arena.setWord(c+format.WordSize, next) }
func (l *chunkList) maxSize() int            { return l.arena.size() - headerSize }
func (l *chunkList) atArenaStart(c int) bool { return c == 0 }

// reset makes the whole arena a single free chunk.
func (l *chunkList) reset() {
	n := l.arena.size()
	l.setSize(0, n)
	l.setNext(0, format.Nil)
	l.head = 0
	*l.stats = fresh(n, 1)
}

// adjustedSize is the chunk size needed for bytes at alignment, padding
// included.
func adjustedSize(bytes, alignment int) int {
	n := format.AlignWord(bytes) + headerSize
	if alignment > ChunkAlign {
		n += alignment - ChunkAlign
	}
	return max(n, minChunkSize)
}

// firstFit returns the first free chunk of at least size bytes and its
// predecessor on the list.
func (l *chunkList) firstFit(size int) (prev, c int) {
	prev = format.Nil
	for c = l.head; c != format.Nil; c = l.nextOf(c) {
		if l.sizeOf(c) >= size {
			return prev, c
		}
		prev = c
	}
	return prev, format.Nil
}

// take carves size bytes from the top of free chunk c. When the remainder
// is too small to stand alone the whole chunk is unlinked instead. It
// returns the allocated chunk, its final size, and whether c was split.
func (l *chunkList) take(prev, c, size int) (chunk, chunkSize int, split bool) {
	rem := l.sizeOf(c) - size
	if rem >= minChunkSize {
		l.setSize(c, rem)
		chunk = c + rem
		l.setSize(chunk, size)
		return chunk, size, true
	}
	if prev == format.Nil {
		l.head = l.nextOf(c)
	} else {
		l.setNext(prev, l.nextOf(c))
	}
	return c, l.sizeOf(c), false
}

// commit records an allocation of chunkSize bytes.
func (l *chunkList) commit(chunkSize int, split bool) {
	l.stats.increase(chunkSize)
	if split {
		l.stats.FreeChunks++
	}
}

// place writes the payload offset for chunk and returns the payload slice,
// aligned to alignment. The chunk must have room for the padding.
func (l *chunkList) place(chunk, bytes, alignment int) (payload int, p []byte) {
	payload = chunk + headerSize
	addr := l.arena.addr(payload)
	payload += int(format.AlignAddr(addr, alignment) - addr)
	l.arena.setWord(payload-format.WordSize, payload-chunk)
	return payload, l.arena.slice(payload, bytes)
}

// locate maps a payload back to its chunk. ok is false when the header
// words do not describe an allocated chunk, which happens for a second free
// of the same payload.
func (l *chunkList) locate(p []byte) (chunk, payload int, ok bool) {
	payload, inside := l.arena.offsetOf(p)
	if !inside {
		panic(errors.AssertionFailedf("memory: %s: deallocate of %#x outside the arena", l.owner, addrOf(p)))
	}
	if payload < headerSize || payload%format.WordSize != 0 {
		panic(errors.AssertionFailedf("memory: %s: %#x is not a payload address", l.owner, addrOf(p)))
	}
	off := l.arena.word(payload - format.WordSize)
	if off < headerSize || off%format.WordSize != 0 || off > payload {
		return 0, 0, false
	}
	chunk = payload - off
	size := l.sizeOf(chunk)
	if size < minChunkSize || size%ChunkAlign != 0 || chunk+size > l.arena.size() || payload >= chunk+size {
		return 0, 0, false
	}
	return chunk, payload, true
}

// usable is the number of payload bytes chunk can hold from payload on.
func (l *chunkList) usable(chunk, payload int) int {
	return chunk + l.sizeOf(chunk) - payload
}

// free returns the chunk holding p to the list. bytes, when not zero, must
// fit the chunk.
func (l *chunkList) free(p []byte, bytes int) {
	chunk, payload, ok := l.locate(p)
	if !ok {
		logger.Warn("memory: ignored deallocate of a chunk that is not allocated", "resource", l.owner, "addr", addrOf(p))
		return
	}
	if bytes > l.usable(chunk, payload) {
		panic(errors.AssertionFailedf("memory: %s: deallocate of %d bytes from a chunk holding %d",
			l.owner, bytes, l.usable(chunk, payload)))
	}
	size := l.sizeOf(chunk)
	if !l.insert(chunk) {
		logger.Warn("memory: ignored deallocate of a chunk already freed", "resource", l.owner, "addr", addrOf(p))
		return
	}
	l.stats.decrease(size)
}

// insert links chunk c into the address-ordered list, merging it with the
// free neighbours it touches. It reports false, changing nothing, when c
// overlaps a chunk that is already free.
func (l *chunkList) insert(c int) bool {
	size := l.sizeOf(c)

	if l.head == format.Nil {
		l.setNext(c, format.Nil)
		l.head = c
		return true
	}

	if c < l.head {
		switch {
		case c+size > l.head:
			return false
		case c+size == l.head:
			l.setSize(c, size+l.sizeOf(l.head))
			l.setNext(c, l.nextOf(l.head))
			l.stats.FreeChunks--
		default:
			l.setNext(c, l.head)
		}
		l.head = c
		return true
	}

	prev, next := format.Nil, l.head
	for next != format.Nil && next <= c {
		prev = next
		next = l.nextOf(next)
	}

	prevEnd := prev + l.sizeOf(prev)
	if prevEnd > c {
		return false
	}
	if next != format.Nil && c+size > next {
		return false
	}

	if prevEnd == c {
		l.setSize(prev, l.sizeOf(prev)+size)
		l.stats.FreeChunks--
		if next != format.Nil && prev+l.sizeOf(prev) == next {
			l.setSize(prev, l.sizeOf(prev)+l.sizeOf(next))
			l.setNext(prev, l.nextOf(next))
			l.stats.FreeChunks--
		}
		return true
	}

	if next != format.Nil && c+size == next {
		l.setSize(c, size+l.sizeOf(next))
		l.setNext(c, l.nextOf(next))
		l.stats.FreeChunks--
	} else {
		l.setNext(c, next)
	}
	l.setNext(prev, c)
	return true
}

// chunks returns the free list as (offset, size) pairs, for diagnostics.
func (l *chunkList) chunks() [][2]int {
	var out [][2]int
	for c := l.head; c != format.Nil; c = l.nextOf(c) {
		out = append(out, [2]int{c, l.sizeOf(c)})
	}
	return out
}
