package pool

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/memkit/internal/buf"
	"github.com/joshuapare/memkit/internal/logger"
)

// ErrNotReset indicates Get was called before the first Reset.
var ErrNotReset = errors.New("pool: reset not called")

// DefaultMaxBytes is the ceiling on memory held by a pool unless WithMaxBytes
// sets another. Requests past it fail with ErrOutOfMemory before the source
// is asked for memory.
const DefaultMaxBytes int64 = 1 << 30

// Block is a contiguous span of raw memory owned by a Pool.
type Block struct {
	Index int    // Position in acquisition order
	Units int    // Size in multiples of the block size, 1 for Get
	Data  []byte // len(Data) == Units * Pool.BlockSize()
}

// Stats holds cumulative pool counters.
type Stats struct {
	Resets   int // Successful Reset calls
	Acquired int // Blocks acquired since construction
	Failures int // Get calls that returned ErrOutOfMemory
}

// Pool hands out fixed-size blocks and releases them in bulk.
type Pool struct {
	minSize   int
	blockSize int
	blocks    []*Block
	units     int
	source    Source
	maxBlocks int
	maxBytes  int64
	log       *slog.Logger
	stats     Stats
}

// Option configures a Pool.
type Option func(*Pool)

// WithSource sets the memory source. The default is HeapSource.
func WithSource(s Source) Option {
	return func(p *Pool) {
		if s != nil {
			p.source = s
		}
	}
}

// WithMaxBlocks caps the number of block units the pool will hold. Zero means no cap.
func WithMaxBlocks(n int) Option {
	return func(p *Pool) {
		p.maxBlocks = n
	}
}

// WithMaxBytes sets the ceiling on bytes the pool may hold. Values below 1
// keep DefaultMaxBytes.
func WithMaxBytes(n int64) Option {
	return func(p *Pool) {
		if n > 0 {
			p.maxBytes = n
		}
	}
}

// WithLogger sets the logger used for block lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// New creates an empty pool. Blocks cannot be acquired until Reset sets a
// block size of at least minSize bytes.
func New(minSize int, opts ...Option) *Pool {
	if minSize < 1 {
		minSize = 1
	}
	p := &Pool{
		minSize:  minSize,
		source:   HeapSource{},
		maxBytes: DefaultMaxBytes,
		log:      logger.L,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Reset discards every block and sets the size of future blocks.
// A size below the minimum fails with ErrIllegalSize and leaves the pool unchanged.
func (p *Pool) Reset(blockSize int) error {
	if blockSize < p.minSize {
		return fmt.Errorf("%w: %d < minimum %d", ErrIllegalSize, blockSize, p.minSize)
	}
	released := len(p.blocks)
	_ = p.releaseAll() // failures are logged per block
	p.blockSize = blockSize
	p.stats.Resets++
	p.log.Debug("pool reset", "block_size", blockSize, "released", released)
	return nil
}

// Get acquires a fresh block of BlockSize bytes. Failure to acquire memory is
// reported as ErrOutOfMemory and is never retried.
func (p *Pool) Get() (*Block, error) {
	return p.GetSpan(1)
}

// GetSpan acquires one contiguous block of units*BlockSize bytes. It serves
// allocations that do not fit a single block and counts as units blocks
// against the budget.
func (p *Pool) GetSpan(units int) (*Block, error) {
	if p.blockSize == 0 {
		return nil, ErrNotReset
	}
	if units < 1 {
		return nil, fmt.Errorf("%w: span of %d units", ErrIllegalSize, units)
	}
	if p.maxBlocks > 0 && p.units+units > p.maxBlocks {
		p.stats.Failures++
		p.log.Warn("pool block budget exhausted", "max_blocks", p.maxBlocks, "units", units)
		return nil, fmt.Errorf("%w: block budget of %d exhausted", ErrOutOfMemory, p.maxBlocks)
	}
	size, ok := buf.MulOverflowSafe(units, p.blockSize)
	if !ok {
		p.stats.Failures++
		return nil, fmt.Errorf("%w: span of %d blocks overflows", ErrOutOfMemory, units)
	}
	if p.Reserved()+int64(size) > p.maxBytes {
		p.stats.Failures++
		p.log.Warn("pool memory ceiling reached", "max_bytes", p.maxBytes, "reserved", p.Reserved(), "bytes", size)
		return nil, fmt.Errorf("%w: %d bytes would exceed the ceiling of %d", ErrOutOfMemory, size, p.maxBytes)
	}
	data, err := p.source.Acquire(size)
	if err != nil {
		p.stats.Failures++
		p.log.Warn("pool acquire failed", "bytes", size, "err", err)
		return nil, fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	b := &Block{Index: len(p.blocks), Units: units, Data: data}
	p.blocks = append(p.blocks, b)
	p.units += units
	p.stats.Acquired++
	p.log.Debug("pool block acquired", "index", b.Index, "units", units, "bytes", size)
	return b, nil
}

// Close releases all blocks. The pool must be Reset before reuse.
func (p *Pool) Close() error {
	err := p.releaseAll()
	p.blockSize = 0
	return err
}

func (p *Pool) releaseAll() error {
	var errs []error
	for _, b := range p.blocks {
		if err := p.source.Release(b.Data); err != nil {
			p.log.Warn("pool release failed", "index", b.Index, "err", err)
			errs = append(errs, err)
		}
		b.Data = nil
	}
	p.blocks = nil
	p.units = 0
	return errors.Join(errs...)
}

// Block returns the block at index i.
func (p *Pool) Block(i int) (*Block, bool) {
	if i < 0 || i >= len(p.blocks) {
		return nil, false
	}
	return p.blocks[i], true
}

// Len returns the number of blocks currently held.
func (p *Pool) Len() int { return len(p.blocks) }

// Units returns the number of block units currently held.
func (p *Pool) Units() int { return p.units }

// BlockSize returns the configured block size, or 0 before the first Reset.
func (p *Pool) BlockSize() int { return p.blockSize }

// MinSize returns the smallest block size Reset accepts.
func (p *Pool) MinSize() int { return p.minSize }

// MaxBytes returns the ceiling on bytes the pool may hold.
func (p *Pool) MaxBytes() int64 { return p.maxBytes }

// Reserved returns the total bytes held by the pool.
func (p *Pool) Reserved() int64 { return int64(p.units) * int64(p.blockSize) }

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats { return p.stats }
