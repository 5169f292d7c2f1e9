package buf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddOverflowSafe(t *testing.T) {
	sum, ok := AddOverflowSafe(10, 5)
	require.True(t, ok)
	require.Equal(t, 15, sum)

	_, ok = AddOverflowSafe(math.MaxInt, 1)
	require.False(t, ok, "expected overflow when adding to MaxInt")

	_, ok = AddOverflowSafe(math.MinInt, -1)
	require.False(t, ok, "expected underflow when subtracting from MinInt")
}

func TestMulOverflowSafe(t *testing.T) {
	tests := []struct {
		name string
		a, b int
		want int
		ok   bool
	}{
		{"zero", 0, 42, 0, true},
		{"small", 6, 7, 42, true},
		{"max", math.MaxInt, 1, math.MaxInt, true},
		{"overflow", math.MaxInt/2 + 1, 2, 0, false},
		{"negative", -1, 8, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MulOverflowSafe(tt.a, tt.b)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAlign8(t *testing.T) {
	for in, want := range map[int]int{1: 8, 7: 8, 8: 8, 9: 16, 28: 32, 64: 64} {
		assert.Equal(t, want, Align8(in), "Align8(%d)", in)
	}
}

func TestCheckRunBounds(t *testing.T) {
	start, end, err := CheckRunBounds(256, 2, 3, 32)
	require.NoError(t, err)
	require.Equal(t, 64, start)
	require.Equal(t, 160, end)

	_, _, err = CheckRunBounds(256, 6, 3, 32)
	require.ErrorContains(t, err, "bounds")

	_, _, err = CheckRunBounds(256, -1, 1, 32)
	require.Error(t, err)

	_, _, err = CheckRunBounds(256, 0, math.MaxInt/2, 32)
	require.ErrorContains(t, err, "overflow")
}
