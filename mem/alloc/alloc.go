package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/pool"
)

// allocatorStats holds cumulative counters.
type allocatorStats struct {
	ObjectAllocs int // NewObject successes
	ObjectFrees  int // DeleteObject successes
	ArrayAllocs  int // NewArray successes
	ArrayFrees   int // DeleteArray successes
	RecycleHits  int // NewArray calls served from a recycle list
	GrowCalls    int // Blocks acquired from the pool
	Failures     int // Allocations that returned ErrOutOfMemory
}

// Allocator serves objects and arrays from blocks of a pool.Pool.
type Allocator struct {
	pool     *pool.Pool
	objSize  int
	slotSize int
	perBlock int // slots per block, set by Reset

	blocks []*blockMeta // parallel to the pool's blocks

	freeHead  Ref
	freeCount int

	recycle map[int]*recycleList

	arrBlock int // index of the current array block, -1 if none
	arrTop   int // next unused slot in the current array block

	liveObjs int
	liveArrs int

	log   *slog.Logger
	stats allocatorStats
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithLogger sets the logger used for growth and failure events.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allocator) {
		if l != nil {
			a.log = l
		}
	}
}

// New creates an allocator for objects of objSize bytes on top of p.
// The pool's minimum block size must hold at least one slot.
// Call Reset before allocating.
func New(p *pool.Pool, objSize int, opts ...Option) (*Allocator, error) {
	if objSize < 1 {
		return nil, fmt.Errorf("%w: object size %d", ErrIllegalSize, objSize)
	}
	slotSize := buf.Align8(objSize)
	if p == nil {
		p = pool.New(slotSize)
	}
	if p.MinSize() < slotSize {
		return nil, fmt.Errorf("%w: pool minimum %d below slot size %d", ErrIllegalSize, p.MinSize(), slotSize)
	}
	a := &Allocator{
		pool:     p,
		objSize:  objSize,
		slotSize: slotSize,
		log:      logger.L,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.clear()
	if p.BlockSize() > 0 {
		a.perBlock = p.BlockSize() / slotSize
	}
	return a, nil
}

// Reset discards every block and all bookkeeping, then sets the block size.
// blockSize 0 keeps the current size. On ErrIllegalSize nothing changes.
func (a *Allocator) Reset(blockSize int) error {
	if blockSize == 0 {
		blockSize = a.pool.BlockSize()
	}
	if int64(blockSize/a.slotSize) > maxSlots {
		return fmt.Errorf("%w: block of %d bytes holds more than %d slots", ErrIllegalSize, blockSize, maxSlots)
	}
	if err := a.pool.Reset(blockSize); err != nil {
		return err
	}
	a.clear()
	a.perBlock = blockSize / a.slotSize
	a.log.Debug("alloc reset", "block_size", blockSize, "slot_size", a.slotSize, "slots_per_block", a.perBlock)
	return nil
}

// Close drops all bookkeeping and releases every block back to its source.
// The allocator must be Reset before it is used again.
func (a *Allocator) Close() error {
	a.clear()
	a.perBlock = 0
	return a.pool.Close()
}

func (a *Allocator) clear() {
	a.blocks = nil
	a.freeHead = NilRef
	a.freeCount = 0
	a.recycle = make(map[int]*recycleList)
	a.arrBlock = -1
	a.arrTop = 0
	a.liveObjs = 0
	a.liveArrs = 0
	a.stats = allocatorStats{}
}

// grow acquires one block from the pool and registers it as kind.
func (a *Allocator) grow(kind Kind) (int, error) {
	return a.growUnits(kind, 1)
}

func (a *Allocator) growUnits(kind Kind, units int) (int, error) {
	b, err := a.pool.GetSpan(units)
	if err != nil {
		a.stats.Failures++
		return -1, err
	}
	if b.Index != len(a.blocks) {
		return -1, fmt.Errorf("alloc: pool block %d out of sequence (have %d)", b.Index, len(a.blocks))
	}
	a.blocks = append(a.blocks, newBlockMeta(b, kind, len(b.Data)/a.slotSize))
	a.stats.GrowCalls++
	a.log.Debug("alloc grow", "kind", kind, "block", b.Index, "units", units)
	return b.Index, nil
}

// NewObject returns one free slot. If the free list is empty a new block is
// partitioned onto it first. The returned bytes are zeroed and are objSize long.
func (a *Allocator) NewObject() (Ref, []byte, error) {
	if a.freeHead == NilRef {
		if err := a.growObjects(); err != nil {
			return NilRef, nil, err
		}
	}

	ref := a.freeHead
	m := a.blocks[ref.Block()]
	slot := ref.Slot()
	a.freeHead = m.next[slot]
	m.next[slot] = NilRef
	a.freeCount--

	m.live.Add(uint32(slot))
	a.liveObjs++
	a.stats.ObjectAllocs++

	data := a.run(m, slot, 1)
	clear(data)
	return ref, data[:a.objSize], nil
}

// growObjects threads every slot of a new block onto the free list.
func (a *Allocator) growObjects() error {
	idx, err := a.grow(KindObject)
	if err != nil {
		return err
	}
	m := a.blocks[idx]
	for i := a.perBlock - 1; i >= 0; i-- {
		m.next[i] = a.freeHead
		a.freeHead = MakeRef(idx, i)
	}
	a.freeCount += a.perBlock
	return nil
}

// DeleteObject returns a slot to the head of the free list.
func (a *Allocator) DeleteObject(ref Ref) error {
	m, slot, err := a.lookup(ref, KindObject)
	if err != nil {
		return err
	}
	m.live.Remove(uint32(slot))
	m.next[slot] = a.freeHead
	a.freeHead = ref
	a.freeCount++
	a.liveObjs--
	a.stats.ObjectFrees++
	return nil
}

// lookup resolves ref to a live allocation of the given kind.
func (a *Allocator) lookup(ref Ref, kind Kind) (*blockMeta, int, error) {
	if ref == NilRef || ref.Block() >= len(a.blocks) {
		return nil, 0, fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	m := a.blocks[ref.Block()]
	slot := ref.Slot()
	if slot >= len(m.next) {
		return nil, 0, fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	if m.kind != kind {
		return nil, 0, fmt.Errorf("%w: %s is in an %s block", ErrWrongKind, ref, m.kind)
	}
	if !m.live.Contains(uint32(slot)) {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotAllocated, ref)
	}
	return m, slot, nil
}

// run returns the bytes of n slots starting at slot.
func (a *Allocator) run(m *blockMeta, slot, n int) []byte {
	start := slot * a.slotSize
	end := start + n*a.slotSize
	return m.block.Data[start:end:end]
}

// Bytes returns the payload of a live object or array. Array element i
// starts at i*SlotSize().
func (a *Allocator) Bytes(ref Ref) ([]byte, error) {
	if ref == NilRef || ref.Block() >= len(a.blocks) {
		return nil, fmt.Errorf("%w: %s", ErrBadRef, ref)
	}
	m := a.blocks[ref.Block()]
	if m.kind == KindArray {
		n, err := a.ArrayLen(ref)
		if err != nil {
			return nil, err
		}
		return a.run(m, ref.Slot(), n), nil
	}
	if _, _, err := a.lookup(ref, KindObject); err != nil {
		return nil, err
	}
	return a.run(m, ref.Slot(), 1)[:a.objSize], nil
}

// ObjectSize returns the requested object size.
func (a *Allocator) ObjectSize() int { return a.objSize }

// SlotSize returns the aligned slot size.
func (a *Allocator) SlotSize() int { return a.slotSize }

// Pool returns the underlying block pool.
func (a *Allocator) Pool() *pool.Pool { return a.pool }
