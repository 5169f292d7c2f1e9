// Package alloc provides slot allocation and free-list management over a block pool.
//
// # Overview
//
// The Allocator carves blocks obtained from a pool.Pool into fixed-size slots.
// Slot size is the object size rounded up to 8 bytes. Two allocation modes are
// supported, each with its own bookkeeping:
//
//   - NewObject / DeleteObject: single slots served from a LIFO free list
//   - NewArray / DeleteArray: runs of n contiguous slots served from a bump
//     arena and recycled through per-length recycle lists
//
// # Free List
//
// When the free list is empty, NewObject acquires one block and threads all of
// its slots onto the list, slot 0 on top. DeleteObject pushes the slot back on
// the head, so the most recently freed slot is the next one served.
//
// Links are kept in a per-block side array (one Ref per slot) rather than in
// the slot bytes, so slot contents are never interpreted by the allocator.
//
// # Array Arena
//
// Arrays are bump-allocated from a dedicated array block. When a run does not
// fit the rest of the block, the remainder is pushed onto the recycle list for
// its length and a new block is acquired. A run longer than a whole block gets
// its own span of several block units (pool.GetSpan); the unused tail of the
// span is recycled like any other remainder:
//
//	ref, buf, err := a.NewArray(10)
//	if errors.Is(err, alloc.ErrOutOfMemory) {
//	    // the pool refused a block, or the size overflowed
//	}
//	copy(buf, payload)
//	err = a.DeleteArray(ref) // pushed onto recycle list 10
//
// # Handles
//
// A Ref packs (block index, first slot index). Every block keeps a roaring
// bitmap of the first slots of its live allocations, so double frees and
// foreign handles are reported as errors instead of corrupting the lists.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
package alloc
