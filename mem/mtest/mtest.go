// Package mtest is the memory test harness: it drives an alloc.Allocator
// through reset, allocate, delete and print operations and records every live
// allocation in an Object List and an Array List.
//
// Lists are indexed by allocation order until the first deletion. Deleting
// index i moves the last element into i and shrinks the list by one, so order
// is not preserved across deletions.
//
// Batch operations (NewObjs, NewArrs, DeleteRandomObjs, DeleteRandomArrs)
// keep the items completed before a failure and report the count in a
// *BatchError.
package mtest

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/alloc"
	"github.com/joshuapare/memkit/mem/pool"
)

const (
	// DefaultBlockSize is used by Reset(0) before any size was configured.
	DefaultBlockSize = 65536

	// DefaultObjectSize is the size of one test object in bytes.
	DefaultObjectSize = 32
)

// record is one entry of the Object or Array List.
type record struct {
	ref   alloc.Ref
	n     int  // array length, 1 for objects
	stamp byte // fill pattern written at allocation
}

// Harness owns an allocator and the allocation records built on top of it.
type Harness struct {
	alloc     *alloc.Allocator
	blockSize int
	ready     bool

	objs []record
	arrs []record

	serial int
	rng    *rand.Rand
	log    *slog.Logger
}

type options struct {
	objSize   int
	blockSize int
	source    pool.Source
	maxBlocks int
	maxBytes  int64
	rng       *rand.Rand
	log       *slog.Logger
}

// Option configures a Harness.
type Option func(*options)

// WithObjectSize sets the test object size in bytes.
func WithObjectSize(n int) Option {
	return func(o *options) { o.objSize = n }
}

// WithBlockSize sets the block size used by Reset(0).
func WithBlockSize(n int) Option {
	return func(o *options) { o.blockSize = n }
}

// WithSource sets the pool's memory source.
func WithSource(s pool.Source) Option {
	return func(o *options) { o.source = s }
}

// WithMaxBlocks caps the number of blocks the pool may hold.
func WithMaxBlocks(n int) Option {
	return func(o *options) { o.maxBlocks = n }
}

// WithMaxBytes sets the ceiling on bytes the pool may hold. Values below 1
// keep pool.DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(o *options) { o.maxBytes = n }
}

// WithRand sets the generator used for random deletion.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// WithSeed seeds the generator used for random deletion.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithLogger sets the logger for the harness and everything below it.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New builds an Uninitialized harness. Call Reset before any other operation.
func New(opts ...Option) (*Harness, error) {
	o := options{
		objSize:   DefaultObjectSize,
		blockSize: DefaultBlockSize,
		log:       logger.L,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rng == nil {
		seed := uint64(time.Now().UnixNano())
		o.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if o.objSize < 1 {
		return nil, fmt.Errorf("%w: object size %d", ErrIllegalSize, o.objSize)
	}

	popts := []pool.Option{pool.WithMaxBlocks(o.maxBlocks), pool.WithMaxBytes(o.maxBytes), pool.WithLogger(o.log)}
	if o.source != nil {
		popts = append(popts, pool.WithSource(o.source))
	}
	a, err := alloc.New(pool.New(buf.Align8(o.objSize), popts...), o.objSize, alloc.WithLogger(o.log))
	if err != nil {
		return nil, err
	}
	return &Harness{
		alloc:     a,
		blockSize: o.blockSize,
		rng:       o.rng,
		log:       o.log,
	}, nil
}

// Reset tears down all allocator state and records and reinitializes with
// blockSize, or with the previous size when blockSize is 0. A size below the
// slot size fails with ErrIllegalSize and leaves everything unchanged.
func (h *Harness) Reset(blockSize int) error {
	if blockSize == 0 {
		blockSize = h.blockSize
	}
	if err := h.alloc.Reset(blockSize); err != nil {
		return fmt.Errorf("mtest: reset: %w", err)
	}
	h.blockSize = blockSize
	h.objs = nil
	h.arrs = nil
	h.serial = 0
	h.ready = true
	h.log.Info("mtest reset", "block_size", blockSize)
	return nil
}

// Close releases all memory and returns the harness to the Uninitialized state.
func (h *Harness) Close() error {
	h.objs = nil
	h.arrs = nil
	h.ready = false
	return h.alloc.Close()
}

// Ready reports whether Reset has succeeded at least once.
func (h *Harness) Ready() bool { return h.ready }

// BlockSize returns the block size of the last successful Reset.
func (h *Harness) BlockSize() int { return h.blockSize }

// ObjectSize returns the test object size.
func (h *Harness) ObjectSize() int { return h.alloc.ObjectSize() }

func (h *Harness) checkReady() error {
	if !h.ready {
		return ErrNotReady
	}
	return nil
}

func (h *Harness) nextStamp() byte {
	h.serial++
	return byte(h.serial)
}

// NewObjs allocates n objects and appends them to the Object List.
func (h *Harness) NewObjs(n int) error {
	if err := h.checkReady(); err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("%w: number of objects %d", ErrIllegalSize, n)
	}
	for i := range n {
		ref, data, err := h.alloc.NewObject()
		if err != nil {
			h.log.Warn("mtest new objects failed", "done", i, "total", n, "err", err)
			return &BatchError{Op: "new objects", Done: i, Total: n, Err: err}
		}
		rec := record{ref: ref, n: 1, stamp: h.nextStamp()}
		fill(data, rec.stamp)
		h.objs = append(h.objs, rec)
	}
	h.log.Debug("mtest new objects", "count", n, "list_size", len(h.objs))
	return nil
}

// NewArrs allocates n arrays of size elements each and appends them to the
// Array List.
func (h *Harness) NewArrs(n, size int) error {
	if err := h.checkReady(); err != nil {
		return err
	}
	if n < 1 {
		return fmt.Errorf("%w: number of arrays %d", ErrIllegalSize, n)
	}
	if size < 1 {
		return fmt.Errorf("%w: array size %d", ErrIllegalSize, size)
	}
	for i := range n {
		ref, data, err := h.alloc.NewArray(size)
		if err != nil {
			h.log.Warn("mtest new arrays failed", "done", i, "total", n, "err", err)
			return &BatchError{Op: "new arrays", Done: i, Total: n, Err: err}
		}
		rec := record{ref: ref, n: size, stamp: h.nextStamp()}
		fill(data, rec.stamp)
		h.arrs = append(h.arrs, rec)
	}
	h.log.Debug("mtest new arrays", "count", n, "array_size", size, "list_size", len(h.arrs))
	return nil
}

// DeleteObj frees the object at index i and compacts the Object List.
func (h *Harness) DeleteObj(i int) error {
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.deleteAt(&h.objs, i, "object", h.alloc.DeleteObject)
}

// DeleteArr frees the array at index i and compacts the Array List.
func (h *Harness) DeleteArr(i int) error {
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.deleteAt(&h.arrs, i, "array", h.alloc.DeleteArray)
}

func (h *Harness) deleteAt(list *[]record, i int, what string, free func(alloc.Ref) error) error {
	l := *list
	if len(l) == 0 {
		return fmt.Errorf("%w: %s list", ErrEmptyList, what)
	}
	if i < 0 || i >= len(l) {
		return fmt.Errorf("%w: %s index %d, list size %d", ErrIndexOutOfRange, what, i, len(l))
	}
	if err := free(l[i].ref); err != nil {
		return fmt.Errorf("mtest: delete %s %d: %w", what, i, err)
	}
	last := len(l) - 1
	l[i] = l[last]
	*list = l[:last]
	return nil
}

// DeleteRandomObjs deletes m objects, each at an index drawn uniformly over
// the current list size.
func (h *Harness) DeleteRandomObjs(m int) error {
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.deleteRandom(&h.objs, m, "object", h.alloc.DeleteObject)
}

// DeleteRandomArrs deletes m arrays, each at an index drawn uniformly over
// the current list size.
func (h *Harness) DeleteRandomArrs(m int) error {
	if err := h.checkReady(); err != nil {
		return err
	}
	return h.deleteRandom(&h.arrs, m, "array", h.alloc.DeleteArray)
}

func (h *Harness) deleteRandom(list *[]record, m int, what string, free func(alloc.Ref) error) error {
	if m < 1 {
		return fmt.Errorf("%w: number of random ids %d", ErrIllegalSize, m)
	}
	op := "delete random " + what + "s"
	for done := range m {
		if len(*list) == 0 {
			h.log.Warn("mtest random delete exhausted list", "what", what, "done", done, "total", m)
			return &BatchError{Op: op, Done: done, Total: m, Err: ErrEmptyList}
		}
		if err := h.deleteAt(list, h.rng.IntN(len(*list)), what, free); err != nil {
			return &BatchError{Op: op, Done: done, Total: m, Err: err}
		}
	}
	return nil
}

// ObjListSize returns the number of live objects.
func (h *Harness) ObjListSize() int { return len(h.objs) }

// ArrListSize returns the number of live arrays.
func (h *Harness) ArrListSize() int { return len(h.arrs) }

// ObjectBytes returns the payload of the object at index i.
func (h *Harness) ObjectBytes(i int) ([]byte, error) {
	if i < 0 || i >= len(h.objs) {
		return nil, fmt.Errorf("%w: object index %d", ErrIndexOutOfRange, i)
	}
	return h.alloc.Bytes(h.objs[i].ref)
}

// ArrayBytes returns the payload of the array at index i.
func (h *Harness) ArrayBytes(i int) ([]byte, error) {
	if i < 0 || i >= len(h.arrs) {
		return nil, fmt.Errorf("%w: array index %d", ErrIndexOutOfRange, i)
	}
	return h.alloc.Bytes(h.arrs[i].ref)
}

// Stats returns the allocator statistics.
func (h *Harness) Stats() alloc.Stats { return h.alloc.Stats() }

// Verify checks allocator invariants and that every recorded allocation still
// holds the pattern written when it was created.
func (h *Harness) Verify() error {
	if err := h.alloc.Verify(); err != nil {
		return err
	}
	for _, l := range []struct {
		what string
		recs []record
	}{{"object", h.objs}, {"array", h.arrs}} {
		for i, rec := range l.recs {
			data, err := h.alloc.Bytes(rec.ref)
			if err != nil {
				return fmt.Errorf("mtest: %s %d (%s): %w", l.what, i, rec.ref, err)
			}
			for j, b := range data {
				if b != rec.stamp {
					return fmt.Errorf("mtest: %s %d (%s): byte %d is 0x%02x, want 0x%02x",
						l.what, i, rec.ref, j, b, rec.stamp)
				}
			}
		}
	}
	return nil
}

func fill(data []byte, b byte) {
	for i := range data {
		data[i] = b
	}
}
