//go:build !unix

// Package mmarena provides page-backed arenas mapped straight from the OS,
// outside the Go heap.
package mmarena

import (
	"fmt"
	"os"
)

// Map allocates the arena on the Go heap when anonymous mappings are not
// available.
func Map(size int) ([]byte, func() error, error) {
	if size < 0 {
		return nil, nil, fmt.Errorf("mmarena: negative size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}

// PageSize returns the granularity mappings are rounded to.
func PageSize() int { return os.Getpagesize() }
