// Package pool implements the block pool that backs the memkit allocator.
//
// # Overview
//
// A Pool owns a list of raw blocks of the configured size. Blocks are acquired
// one at a time on demand through Get and are released only in bulk, by Reset
// or Close. GetSpan hands out one block of several units for requests that do
// not fit a single block; it counts every unit against WithMaxBlocks.
// There is no per-block release: memory reserved by the pool only shrinks when
// the whole pool is discarded.
//
//	p := pool.New(32, pool.WithMaxBlocks(64))
//	if err := p.Reset(65536); err != nil {
//	    return err
//	}
//	b, err := p.Get()
//	if err != nil {
//	    return err // pool.ErrOutOfMemory
//	}
//	copy(b.Data, payload)
//
// # Sources
//
// Block memory comes from a Source. HeapSource uses the Go heap; MmapSource
// uses anonymous mappings so large pools do not add GC scan work.
//
// # Thread Safety
//
// Pool instances are not thread-safe. Callers must synchronize access
// externally.
package pool
