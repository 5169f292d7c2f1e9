package pool

import "errors"

var (
	// ErrIllegalSize indicates a block size below the minimum viable slot size.
	ErrIllegalSize = errors.New("pool: illegal block size")

	// ErrOutOfMemory indicates that a block could not be acquired.
	ErrOutOfMemory = errors.New("pool: out of memory")
)
