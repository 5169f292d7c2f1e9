package alloc

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/joshuapare/memkit/internal/report"
)

// Stats is a snapshot of allocator state.
type Stats struct {
	BlockSize     int
	ObjectSize    int
	SlotSize      int
	SlotsPerBlock int

	Blocks       int
	ObjectBlocks int
	ArrayBlocks  int
	Reserved     int64

	LiveObjects int
	FreeObjects int
	LiveArrays  int
	Recycled    map[int]int // array length -> runs on its recycle list
	ArenaFree   int         // bytes left in the current array block

	ObjectAllocs int
	ObjectFrees  int
	ArrayAllocs  int
	ArrayFrees   int
	RecycleHits  int
	GrowCalls    int
	Failures     int
}

// Stats returns a snapshot of the allocator. The Recycled map is a copy.
func (a *Allocator) Stats() Stats {
	s := Stats{
		BlockSize:     a.pool.BlockSize(),
		ObjectSize:    a.objSize,
		SlotSize:      a.slotSize,
		SlotsPerBlock: a.perBlock,
		Blocks:        len(a.blocks),
		Reserved:      a.pool.Reserved(),
		LiveObjects:   a.liveObjs,
		FreeObjects:   a.freeCount,
		LiveArrays:    a.liveArrs,
		Recycled:      make(map[int]int, len(a.recycle)),
		ObjectAllocs:  a.stats.ObjectAllocs,
		ObjectFrees:   a.stats.ObjectFrees,
		ArrayAllocs:   a.stats.ArrayAllocs,
		ArrayFrees:    a.stats.ArrayFrees,
		RecycleHits:   a.stats.RecycleHits,
		GrowCalls:     a.stats.GrowCalls,
		Failures:      a.stats.Failures,
	}
	for _, m := range a.blocks {
		if m.kind == KindObject {
			s.ObjectBlocks++
		} else {
			s.ArrayBlocks++
		}
	}
	for n, rl := range a.recycle {
		if rl.count > 0 {
			s.Recycled[n] = rl.count
		}
	}
	if a.arrBlock >= 0 {
		s.ArenaFree = (a.perBlock - a.arrTop) * a.slotSize
	}
	return s
}

// Verify walks the free list and every recycle list and checks that each
// entry is unallocated, in a block of the right kind, and that the counts
// match the bookkeeping.
func (a *Allocator) Verify() error {
	seen := 0
	for ref := a.freeHead; ref != NilRef; {
		if ref.Block() >= len(a.blocks) || ref.Slot() >= len(a.blocks[ref.Block()].next) {
			return fmt.Errorf("free list: %w: %s", ErrBadRef, ref)
		}
		m := a.blocks[ref.Block()]
		if m.kind != KindObject {
			return fmt.Errorf("free list: %s in %s block", ref, m.kind)
		}
		if m.live.Contains(uint32(ref.Slot())) {
			return fmt.Errorf("free list: %s is live", ref)
		}
		seen++
		if seen > a.freeCount {
			return fmt.Errorf("free list: longer than count %d (cycle?)", a.freeCount)
		}
		ref = m.next[ref.Slot()]
	}
	if seen != a.freeCount {
		return fmt.Errorf("free list: walked %d, count %d", seen, a.freeCount)
	}

	for n, rl := range a.recycle {
		seen = 0
		for ref := rl.head; ref != NilRef; {
			if ref.Block() >= len(a.blocks) || ref.Slot() >= len(a.blocks[ref.Block()].next) {
				return fmt.Errorf("recycle[%d]: %w: %s", n, ErrBadRef, ref)
			}
			m := a.blocks[ref.Block()]
			if m.kind != KindArray {
				return fmt.Errorf("recycle[%d]: %s in %s block", n, ref, m.kind)
			}
			if m.live.Contains(uint32(ref.Slot())) {
				return fmt.Errorf("recycle[%d]: %s is live", n, ref)
			}
			if got := m.runs[uint32(ref.Slot())]; got != n {
				return fmt.Errorf("recycle[%d]: %s has length %d", n, ref, got)
			}
			seen++
			if seen > rl.count {
				return fmt.Errorf("recycle[%d]: longer than count %d (cycle?)", n, rl.count)
			}
			ref = m.next[ref.Slot()]
		}
		if seen != rl.count {
			return fmt.Errorf("recycle[%d]: walked %d, count %d", n, seen, rl.count)
		}
	}

	var liveObjs, liveArrs uint64
	for _, m := range a.blocks {
		if m.kind == KindObject {
			liveObjs += m.live.GetCardinality()
		} else {
			liveArrs += m.live.GetCardinality()
		}
	}
	if int(liveObjs) != a.liveObjs || int(liveArrs) != a.liveArrs {
		return fmt.Errorf("live sets: objects %d/%d arrays %d/%d", liveObjs, a.liveObjs, liveArrs, a.liveArrs)
	}
	return nil
}

const rule = "========================================="

// Print writes the memory manager report.
func (a *Allocator) Print(w io.Writer) error {
	s := a.Stats()
	var b strings.Builder
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "=              Memory Manager           =")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "* Block size            : %s\n", report.BytesExact(int64(s.BlockSize)))
	fmt.Fprintf(&b, "* Object size           : %d Bytes (slot %d)\n", s.ObjectSize, s.SlotSize)
	fmt.Fprintf(&b, "* Number of blocks      : %s (objects %d, arrays %d)\n",
		report.Count(int64(s.Blocks)), s.ObjectBlocks, s.ArrayBlocks)
	fmt.Fprintf(&b, "* Reserved memory       : %s\n", report.BytesExact(s.Reserved))
	fmt.Fprintf(&b, "* Objects used / free   : %s / %s\n",
		report.Count(int64(s.LiveObjects)), report.Count(int64(s.FreeObjects)))
	fmt.Fprintf(&b, "* Arrays used           : %s\n", report.Count(int64(s.LiveArrays)))
	fmt.Fprintf(&b, "* Free mem in last block: %s\n", report.BytesExact(int64(s.ArenaFree)))
	fmt.Fprintln(&b, "* Recycle list          : ")
	lengths := slices.Sorted(maps.Keys(s.Recycled))
	for i, n := range lengths {
		fmt.Fprintf(&b, "[%3d] = %-10d", n, s.Recycled[n])
		if i%4 == 3 || i == len(lengths)-1 {
			b.WriteByte('\n')
		}
	}
	fmt.Fprintln(&b, rule)
	_, err := io.WriteString(w, b.String())
	return err
}
