package mtest

import (
	"errors"
	"fmt"

	"github.com/joshuapare/memkit/mem/alloc"
)

var (
	// ErrIllegalSize indicates a size or count below its minimum.
	ErrIllegalSize = alloc.ErrIllegalSize

	// ErrOutOfMemory indicates that the allocator could not obtain memory.
	ErrOutOfMemory = alloc.ErrOutOfMemory

	// ErrIndexOutOfRange indicates a delete index at or beyond the list size.
	ErrIndexOutOfRange = errors.New("mtest: index out of range")

	// ErrEmptyList indicates a deletion against an empty list.
	ErrEmptyList = errors.New("mtest: list is empty")

	// ErrNotReady indicates an operation before the first Reset.
	ErrNotReady = errors.New("mtest: harness not reset")
)

// BatchError reports a batch operation that stopped part way. Items completed
// before the failure are kept.
type BatchError struct {
	Op    string // "new objects", "new arrays", "delete random objects", ...
	Done  int    // items completed before the failure
	Total int    // items requested
	Err   error  // cause
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("mtest: %s: completed %d of %d: %v", e.Op, e.Done, e.Total, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }
