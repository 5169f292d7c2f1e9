package main

import (
	"fmt"

	"github.com/joshuapare/memkit/internal/config"
	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/internal/mmap"
	"github.com/joshuapare/memkit/mem/mtest"
	"github.com/joshuapare/memkit/mem/pool"
)

// newHarness builds a harness from the resolved configuration and resets it
// to the configured block size, so scripts may start allocating right away.
func (g *globalOptions) newHarness() (*mtest.Harness, error) {
	cfg := g.cfg
	opts := []mtest.Option{
		mtest.WithObjectSize(cfg.ObjectSize),
		mtest.WithBlockSize(int(cfg.BlockSize)),
		mtest.WithMaxBlocks(cfg.MaxBlocks),
		mtest.WithMaxBytes(int64(cfg.MaxBytes)),
		mtest.WithLogger(logger.L),
	}
	if cfg.Seed != 0 {
		opts = append(opts, mtest.WithSeed(cfg.Seed))
	}
	if cfg.Backing == config.BackingMmap {
		if !mmap.Supported {
			logger.Warn("mmap backing is not available on this platform, blocks come from the heap")
		}
		opts = append(opts, mtest.WithSource(pool.MmapSource{}))
	}

	h, err := mtest.New(opts...)
	if err != nil {
		return nil, err
	}
	if err := h.Reset(0); err != nil {
		return nil, fmt.Errorf("initial reset: %w", err)
	}
	return h, nil
}
