package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memtest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
block_size: 4KiB
object_size: 24
max_blocks: 16
max_bytes: 1MiB
backing: mmap
seed: 7
log_level: debug
log_format: json
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Size(4096), cfg.BlockSize)
	assert.Equal(t, 24, cfg.ObjectSize)
	assert.Equal(t, 16, cfg.MaxBlocks)
	assert.Equal(t, Size(1<<20), cfg.MaxBytes)
	assert.Equal(t, BackingMmap, cfg.Backing)
	assert.Equal(t, uint64(7), cfg.Seed)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "seed: 3\n"))
	require.NoError(t, err)
	assert.Equal(t, Size(DefaultMaxBytes), cfg.MaxBytes)
	assert.Equal(t, Size(DefaultBlockSize), cfg.BlockSize)
	assert.Equal(t, DefaultObjectSize, cfg.ObjectSize)
	assert.Equal(t, BackingHeap, cfg.Backing)
}

func TestLoadRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown key", "blocksize: 10\n"},
		{"block below object", "block_size: 8\nobject_size: 32\n"},
		{"bad backing", "backing: disk\n"},
		{"bad level", "log_level: loud\n"},
		{"bad size", "block_size: lots\n"},
		{"negative blocks", "max_blocks: -1\n"},
		{"block below aligned slot", "object_size: 33\nblock_size: 36\n"},
		{"ceiling below block", "block_size: 64KiB\nmax_bytes: 4KiB\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseSize(t *testing.T) {
	tests := map[string]int{
		"64":     64,
		"64KiB":  65536,
		"1 MiB":  1 << 20,
		"2kb":    2000,
		" 128 ":  128,
	}
	for in, want := range tests {
		got, err := ParseSize(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "-5", "abc"} {
		_, err := ParseSize(bad)
		assert.ErrorIs(t, err, ErrInvalid, bad)
	}
}
