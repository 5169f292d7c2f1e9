package alloc

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/joshuapare/memkit/mem/pool"
)

// Ref is a handle to a live allocation: block index in the high 32 bits,
// first slot index in the low 32 bits.
type Ref uint64

// NilRef is the invalid handle. It also terminates free and recycle lists.
const NilRef Ref = ^Ref(0)

// maxSlots is the largest slot count a block may hold so that every slot
// index fits the low half of a Ref.
const maxSlots = math.MaxUint32

// MakeRef packs a block and slot index.
func MakeRef(block, slot int) Ref {
	return Ref(uint64(uint32(block))<<32 | uint64(uint32(slot)))
}

// Block returns the block index.
func (r Ref) Block() int { return int(uint64(r) >> 32) }

// Slot returns the first slot index.
func (r Ref) Slot() int { return int(uint32(r)) }

func (r Ref) String() string {
	if r == NilRef {
		return "nil"
	}
	return fmt.Sprintf("%d:%d", r.Block(), r.Slot())
}

// Kind tells which allocation mode owns a block.
type Kind uint8

const (
	KindObject Kind = 1
	KindArray  Kind = 2
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// blockMeta is the allocator's bookkeeping for one pool block.
type blockMeta struct {
	block *pool.Block
	kind  Kind
	next  []Ref           // free/recycle links, valid only for slots on a list
	live  *roaring.Bitmap // first slot of each live allocation
	runs  map[uint32]int  // array run head -> length (live and recycled)
}

func newBlockMeta(b *pool.Block, kind Kind, slots int) *blockMeta {
	m := &blockMeta{
		block: b,
		kind:  kind,
		next:  make([]Ref, slots),
		live:  roaring.New(),
	}
	for i := range m.next {
		m.next[i] = NilRef
	}
	if kind == KindArray {
		m.runs = make(map[uint32]int)
	}
	return m
}

// recycleList is a LIFO list of freed array runs of one length.
type recycleList struct {
	head  Ref
	count int
}
