package memory

import (
	"github.com/cockroachdb/errors"

	"github.com/micro-os-plus/micro-os-plus-iii-sub003/internal/logger"
)

// chunkResource is the part shared by the variable-size allocators: the
// free list, arena ownership and every operation except allocation.
type chunkResource struct {
	resource
	list    chunkList
	backing backing
}

func (h *chunkResource) setup(name string, algo algorithm, storage []byte, opts []Option) {
	h.init(name, algo, opts)
	h.list = newChunkList(storage, &h.stats, h.Name())
	h.list.reset()
	logger.Debug("memory: heap ready", "resource", h.Name(), "bytes", h.list.arena.size())
	h.trace(TraceConstruct, nil, h.list.arena.size(), ChunkAlign)
}

func (h *chunkResource) setupFrom(name string, algo algorithm, size int, upstream Resource, opts []Option) error {
	b, err := acquire(upstream, size)
	if err != nil {
		return errors.Wrapf(err, "heap %s", name)
	}
	h.backing = b
	h.setup(name, algo, b.storage, opts)
	return nil
}

// OwnsStorage reports whether the arena came from an upstream resource and
// has not been returned yet.
func (h *chunkResource) OwnsStorage() bool {
	cs := h.domain.Enter()
	defer cs.Exit()
	return h.backing.owns
}

// FreeChunks returns the free list as (offset, size) pairs in address order.
func (h *chunkResource) FreeChunks() [][2]int {
	cs := h.domain.Enter()
	defer cs.Exit()
	return h.list.chunks()
}

// Close marks the resource closed and returns an upstream arena. Closing
// twice is a no-op.
func (h *chunkResource) Close() error {
	cs := h.domain.Enter()
	if h.closed {
		cs.Exit()
		return nil
	}
	h.closed = true
	b := h.backing
	h.backing = backing{}
	cs.Exit()

	b.release()
	h.trace(TraceDestroy, nil, 0, 0)
	return nil
}

func (h *chunkResource) doDeallocate(p []byte, bytes, _ int) {
	if h.closed {
		panic(errors.AssertionFailedf("memory: %s: deallocate after close", h.Name()))
	}
	h.list.free(p, bytes)
}

func (h *chunkResource) doMaxSize() int { return h.list.maxSize() }

func (h *chunkResource) doReset() {
	if h.closed {
		return
	}
	h.list.reset()
}

func (h *chunkResource) doCoalesce() bool { return false }
