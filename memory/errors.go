package memory

import "github.com/cockroachdb/errors"

var (
	// ErrOutOfMemory indicates that a request could not be satisfied, even
	// after the out-of-memory handler had a chance to release memory.
	ErrOutOfMemory = errors.New("memory: out of memory")

	// ErrClosed indicates an allocation from a resource that has been closed.
	ErrClosed = errors.New("memory: resource closed")

	// ErrBadConfig indicates a resource or hierarchy configuration that cannot be built.
	ErrBadConfig = errors.New("memory: bad configuration")
)
