package alloc

import (
	"errors"

	"github.com/joshuapare/memkit/mem/pool"
)

var (
	// ErrIllegalSize indicates a block, object or array size below the minimum.
	ErrIllegalSize = pool.ErrIllegalSize

	// ErrOutOfMemory indicates that a block could not be acquired or a run
	// cannot fit in any block.
	ErrOutOfMemory = pool.ErrOutOfMemory

	// ErrNotReset indicates an allocation before the first Reset.
	ErrNotReset = pool.ErrNotReset

	// ErrBadRef indicates an invalid or out-of-bounds handle.
	ErrBadRef = errors.New("alloc: bad reference")

	// ErrNotAllocated indicates a free of a slot that is not live.
	ErrNotAllocated = errors.New("alloc: slot not allocated")

	// ErrWrongKind indicates an object handle passed to DeleteArray or the reverse.
	ErrWrongKind = errors.New("alloc: wrong allocation kind")
)
