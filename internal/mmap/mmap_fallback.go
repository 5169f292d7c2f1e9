//go:build !unix

package mmap

import "fmt"

// Supported reports whether anonymous mappings are available on this platform.
const Supported = false

// Anon allocates size bytes on the Go heap when mmap is not available.
func Anon(size int) ([]byte, error) {
	if size <= 0 {
		return nil, fmt.Errorf("mmap: invalid size %d", size)
	}
	return make([]byte, size), nil
}

// Unmap is a no-op for heap-backed fallbacks.
func Unmap(data []byte) error {
	return nil
}
