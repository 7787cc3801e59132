// Package memory implements deterministic memory resources for small
// real-time systems.
//
// # Overview
//
// Every resource satisfies the Resource interface: Allocate and
// TryAllocate hand out aligned byte slices, Deallocate returns them, and
// Stats reports usage. Allocator metadata lives inside the arena it
// manages, so a resource needs no memory besides the arena.
//
// # Implementations
//
// BlockPool: fixed-size blocks, O(1) allocate and deallocate
//
//   - free blocks are threaded through their first word
//   - reset rethreads blocks in address order
//
// LIFO: variable-size chunks for stack-like lifetimes
//
//   - never scans; only the chunk at the arena start is carved
//   - reverse-order frees merge back in O(1)
//
// FirstFitTop: variable-size chunks, first fit, carved from the top
//
// NewlibNano: first fit with post-carve alignment, UsableSize and Reallocate
//
// Host and Null: the Go heap and the resource that never has memory
//
// # Errors
//
// Exhaustion is a normal outcome: Allocate returns an error wrapping
// ErrOutOfMemory and TryAllocate returns nil. Before failing, an installed
// OutOfMemoryHandler runs once and the request is retried. Misuse, such as
// freeing an address the resource never handed out, panics.
//
// # Concurrency
//
// Each resource runs its algorithm inside a critical.Domain chosen at
// construction (critical.Scheduler unless WithDomain says otherwise).
//
// # Usage Example
//
//	arena := make([]byte, 16<<10)
//	heap := memory.NewNewlibNano("app", arena)
//
//	pool, err := memory.NewBlockPoolFrom("timers", 16, 64, heap)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	b := pool.TryAllocate(48, 0)
//	if b == nil {
//	    // pool exhausted
//	}
//	pool.Deallocate(b, 48, 0)
package memory
