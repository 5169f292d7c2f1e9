// Package testutil holds fixtures shared by memkit tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/joshuapare/memkit/mem/mtest"
)

// TestSeed is the fixed seed used by SetupHarness so random deletions are
// reproducible.
const TestSeed = 20071

// SetupHarness builds a harness with a fixed seed and resets it to blockSize.
// Extra options are applied after the defaults. The harness is closed when
// the test ends.
//
// Example:
//
//	h := testutil.SetupHarness(t, 64)
//	require.NoError(t, h.NewObjs(5))
func SetupHarness(t testing.TB, blockSize int, opts ...mtest.Option) *mtest.Harness {
	t.Helper()
	all := append([]mtest.Option{mtest.WithSeed(TestSeed)}, opts...)
	h, err := mtest.New(all...)
	if err != nil {
		t.Fatalf("mtest.New: %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	if err := h.Reset(blockSize); err != nil {
		t.Fatalf("Reset(%d): %v", blockSize, err)
	}
	return h
}

// WriteDofile writes lines to a command file in a temp directory and returns
// its path.
func WriteDofile(t testing.TB, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	var body []byte
	for _, l := range lines {
		body = append(body, l...)
		body = append(body, '\n')
	}
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
