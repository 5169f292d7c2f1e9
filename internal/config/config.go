// Package config loads memtest settings from YAML files.
//
// Example file:
//
//	block_size: 64KiB
//	object_size: 32
//	max_blocks: 1024
//	max_bytes: 256MiB
//	backing: mmap
//	seed: 42
//	log_level: debug
//	log_format: json
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
)

const (
	// DefaultBlockSize is the block size used when none is configured.
	DefaultBlockSize = 65536

	// DefaultObjectSize is the size of one test object in bytes.
	DefaultObjectSize = 32

	// DefaultMaxBytes caps the memory the pool may hold.
	DefaultMaxBytes = 1 << 30

	// BackingHeap allocates blocks on the Go heap.
	BackingHeap = "heap"
	// BackingMmap allocates blocks from anonymous mappings.
	BackingMmap = "mmap"
)

// ErrInvalid is returned (wrapped) for any configuration that fails validation.
var ErrInvalid = errors.New("config: invalid")

// Size is a byte count that accepts plain integers or humanized strings
// such as "64KiB" or "1 MB".
type Size int

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Size) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: size must be a scalar (line %d)", ErrInvalid, value.Line)
	}
	n, err := ParseSize(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*s = Size(n)
	return nil
}

// Config holds harness and CLI settings.
type Config struct {
	BlockSize  Size   `yaml:"block_size"`
	ObjectSize int    `yaml:"object_size"`
	MaxBlocks  int    `yaml:"max_blocks"`
	MaxBytes   Size   `yaml:"max_bytes"`
	Backing    string `yaml:"backing"`
	Seed       uint64 `yaml:"seed"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		BlockSize:  DefaultBlockSize,
		ObjectSize: DefaultObjectSize,
		MaxBytes:   DefaultMaxBytes,
		Backing:    BackingHeap,
		LogLevel:   "info",
		LogFormat:  "text",
	}
}

// Load reads path over the defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()

	d := yaml.NewDecoder(f)
	d.KnownFields(true)
	if err := d.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: decode %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.ObjectSize < 1 {
		return fmt.Errorf("%w: object_size %d < 1", ErrInvalid, c.ObjectSize)
	}
	if slot := buf.Align8(c.ObjectSize); int(c.BlockSize) < slot {
		return fmt.Errorf("%w: block_size %d smaller than the %d-byte slot for object_size %d",
			ErrInvalid, c.BlockSize, slot, c.ObjectSize)
	}
	if c.MaxBlocks < 0 {
		return fmt.Errorf("%w: max_blocks %d < 0", ErrInvalid, c.MaxBlocks)
	}
	if c.MaxBytes < c.BlockSize {
		return fmt.Errorf("%w: max_bytes %d smaller than block_size %d", ErrInvalid, c.MaxBytes, c.BlockSize)
	}
	switch c.Backing {
	case BackingHeap, BackingMmap:
	default:
		return fmt.Errorf("%w: backing %q (want %s or %s)", ErrInvalid, c.Backing, BackingHeap, BackingMmap)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format %q", ErrInvalid, c.LogFormat)
	}
	return nil
}

// ParseSize parses a byte count. Bare integers are taken as bytes.
func ParseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty size", ErrInvalid)
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: negative size %d", ErrInvalid, n)
		}
		return n, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: size %q: %v", ErrInvalid, s, err)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%w: size %q too large", ErrInvalid, s)
	}
	return int(n), nil
}
