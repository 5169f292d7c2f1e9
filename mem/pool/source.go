package pool

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/mmap"
)

// Source provides raw memory for blocks.
type Source interface {
	// Acquire returns size zeroed bytes.
	Acquire(size int) ([]byte, error)
	// Release returns memory obtained from Acquire.
	Release(b []byte) error
}

// HeapSource allocates blocks on the Go heap.
type HeapSource struct{}

// Acquire implements Source.
func (HeapSource) Acquire(size int) (b []byte, err error) {
	if size <= 0 {
		return nil, fmt.Errorf("heap: invalid size %d", size)
	}
	// make panics rather than failing for sizes the runtime refuses.
	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("heap: %v", r)
		}
	}()
	return make([]byte, size), nil
}

// Release implements Source. Heap blocks are reclaimed by the GC.
func (HeapSource) Release([]byte) error { return nil }

// MmapSource allocates blocks from anonymous memory mappings.
// On platforms without mmap it behaves like HeapSource.
type MmapSource struct{}

// Acquire implements Source.
func (MmapSource) Acquire(size int) ([]byte, error) {
	return mmap.Anon(size)
}

// Release implements Source.
func (MmapSource) Release(b []byte) error {
	return mmap.Unmap(b)
}
