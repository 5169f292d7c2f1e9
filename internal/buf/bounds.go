// Package buf provides overflow-checked size arithmetic for slot runs.
package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on overflow
// or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// Align8 rounds n up to the next multiple of 8.
func Align8(n int) int {
	return (n + 7) &^ 7
}

// RunBytes returns count*slotSize, or an error if the product overflows.
func RunBytes(count, slotSize int) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("negative count: %d", count)
	}
	if slotSize <= 0 {
		return 0, fmt.Errorf("non-positive slot size: %d", slotSize)
	}
	n, ok := MulOverflowSafe(count, slotSize)
	if !ok {
		return 0, fmt.Errorf("overflow: count=%d * slotSize=%d", count, slotSize)
	}
	return n, nil
}

// CheckRunBounds validates that count slots of slotSize bytes starting at slot
// index first fit in a block of blockLen bytes. It returns the byte range
// [start, end) of the run.
//
//	start, end, err := buf.CheckRunBounds(len(block), first, n, slotSize)
//	if err != nil {
//	    return fmt.Errorf("run: %w", err)
//	}
func CheckRunBounds(blockLen, first, count, slotSize int) (int, int, error) {
	if first < 0 {
		return 0, 0, fmt.Errorf("negative slot index: %d", first)
	}
	start, err := RunBytes(first, slotSize)
	if err != nil {
		return 0, 0, err
	}
	size, err := RunBytes(count, slotSize)
	if err != nil {
		return 0, 0, err
	}
	end, ok := AddOverflowSafe(start, size)
	if !ok {
		return 0, 0, fmt.Errorf("overflow: start=%d + size=%d", start, size)
	}
	if end > blockLen {
		return 0, 0, fmt.Errorf("bounds: end=%d > len=%d", end, blockLen)
	}
	return start, end, nil
}
