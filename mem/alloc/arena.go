package alloc

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/buf"
)

// NewArray allocates a run of n contiguous slots as one unit.
//
// Runs are served from the recycle list for n when possible, otherwise they
// are bump-allocated from the current array block. A run longer than a block
// gets a dedicated span of whole blocks; slots past the run go to the recycle
// list for their count. The returned slice covers all n slots (n*SlotSize
// bytes) and is zeroed; element i starts at i*SlotSize.
func (a *Allocator) NewArray(n int) (Ref, []byte, error) {
	if n < 1 {
		return NilRef, nil, fmt.Errorf("%w: array size %d", ErrIllegalSize, n)
	}
	if a.perBlock == 0 {
		return NilRef, nil, ErrNotReset
	}
	size, err := buf.RunBytes(n, a.slotSize)
	if err != nil {
		a.stats.Failures++
		return NilRef, nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	if int64(n) > maxSlots {
		a.stats.Failures++
		return NilRef, nil, fmt.Errorf("%w: array of %d slots exceeds %d", ErrOutOfMemory, n, maxSlots)
	}

	ref, ok := a.popRecycled(n)
	if !ok {
		if n > a.perBlock {
			ref, err = a.span(n, size)
		} else {
			ref, err = a.bump(n)
		}
		if err != nil {
			return NilRef, nil, err
		}
	}

	m := a.blocks[ref.Block()]
	start, end, err := buf.CheckRunBounds(len(m.block.Data), ref.Slot(), n, a.slotSize)
	if err != nil {
		return NilRef, nil, fmt.Errorf("alloc: array %s: %w", ref, err)
	}
	m.live.Add(uint32(ref.Slot()))
	a.liveArrs++
	a.stats.ArrayAllocs++

	data := m.block.Data[start:end:end]
	clear(data)
	return ref, data, nil
}

// bump carves n slots from the current array block, moving to a new block
// when the remainder is too small.
func (a *Allocator) bump(n int) (Ref, error) {
	if a.arrBlock < 0 || a.arrTop+n > a.perBlock {
		if a.arrBlock >= 0 {
			if rem := a.perBlock - a.arrTop; rem > 0 {
				a.blocks[a.arrBlock].runs[uint32(a.arrTop)] = rem
				a.pushRecycled(MakeRef(a.arrBlock, a.arrTop), rem)
			}
			a.arrTop = a.perBlock
		}
		idx, err := a.grow(KindArray)
		if err != nil {
			return NilRef, err
		}
		a.arrBlock = idx
		a.arrTop = 0
	}

	ref := MakeRef(a.arrBlock, a.arrTop)
	a.blocks[a.arrBlock].runs[uint32(a.arrTop)] = n
	a.arrTop += n
	return ref, nil
}

// span acquires a multi-block region holding exactly one run of n slots. The
// current array block is left as it is.
func (a *Allocator) span(n, size int) (Ref, error) {
	bs := a.pool.BlockSize()
	units := size / bs
	if size%bs != 0 {
		units++
	}
	if slots := int64(units) * int64(bs/a.slotSize); slots > maxSlots {
		a.stats.Failures++
		return NilRef, fmt.Errorf("%w: span of %d slots exceeds %d", ErrOutOfMemory, slots, maxSlots)
	}
	a.log.Debug("alloc array spans blocks", "requested", size, "block_size", bs, "units", units)
	idx, err := a.growUnits(KindArray, units)
	if err != nil {
		return NilRef, fmt.Errorf("%w (requested %d bytes, block size %d)", err, size, bs)
	}
	m := a.blocks[idx]
	m.runs[0] = n
	if rem := len(m.next) - n; rem > 0 {
		m.runs[uint32(n)] = rem
		a.pushRecycled(MakeRef(idx, n), rem)
	}
	return MakeRef(idx, 0), nil
}

// DeleteArray releases a run as one unit onto the recycle list for its length.
func (a *Allocator) DeleteArray(ref Ref) error {
	m, slot, err := a.lookup(ref, KindArray)
	if err != nil {
		return err
	}
	n := m.runs[uint32(slot)]
	m.live.Remove(uint32(slot))
	a.pushRecycled(ref, n)
	a.liveArrs--
	a.stats.ArrayFrees++
	return nil
}

// ArrayLen returns the number of slots in a live array.
func (a *Allocator) ArrayLen(ref Ref) (int, error) {
	m, slot, err := a.lookup(ref, KindArray)
	if err != nil {
		return 0, err
	}
	return m.runs[uint32(slot)], nil
}

func (a *Allocator) pushRecycled(ref Ref, n int) {
	rl := a.recycle[n]
	if rl == nil {
		rl = &recycleList{head: NilRef}
		a.recycle[n] = rl
	}
	a.blocks[ref.Block()].next[ref.Slot()] = rl.head
	rl.head = ref
	rl.count++
}

func (a *Allocator) popRecycled(n int) (Ref, bool) {
	rl := a.recycle[n]
	if rl == nil || rl.count == 0 {
		return NilRef, false
	}
	ref := rl.head
	m := a.blocks[ref.Block()]
	rl.head = m.next[ref.Slot()]
	m.next[ref.Slot()] = NilRef
	rl.count--
	a.stats.RecycleHits++
	return ref, true
}
