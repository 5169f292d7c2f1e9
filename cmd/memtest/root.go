package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/config"
	"github.com/joshuapare/memkit/internal/logger"
)

// globalOptions holds the persistent flags and the configuration resolved
// from them before any subcommand runs.
type globalOptions struct {
	configPath string
	verbose    bool
	quiet      bool
	logFile    string
	seed       uint64
	backing    string
	maxBlocks  int
	maxBytes   string
	objSize    int
	blockSize  string

	cfg      config.Config
	closeLog func() error
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{closeLog: func() error { return nil }}
	cmd := &cobra.Command{
		Use:   "memtest",
		Short: "Exercise the memkit memory manager with MT* test commands",
		Long: `memtest drives a block pool and object allocator through the MT* test
commands (MTReset, MTNew, MTDelete, MTPrint). Commands come from dofiles,
standard input, or the command line.

Settings are read from an optional YAML file (--config) and may be
overridden by flags.`,
		Version:            version,
		SilenceUsage:       true,
		PersistentPreRunE:  func(cmd *cobra.Command, args []string) error { return g.setup(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return g.teardown() },
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.configPath, "config", "", "YAML config file")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	pf.BoolVarP(&g.quiet, "quiet", "q", false, "Suppress all output except errors")
	pf.StringVar(&g.logFile, "log-file", "", "Append logs to this file")
	pf.Uint64Var(&g.seed, "seed", 0, "Seed for random deletion (0 picks one from the clock)")
	pf.StringVar(&g.backing, "backing", config.BackingHeap, "Block memory: heap or mmap")
	pf.IntVar(&g.maxBlocks, "max-blocks", 0, "Maximum blocks the pool may hold (0 for no limit)")
	pf.StringVar(&g.maxBytes, "max-bytes", "", "Ceiling on memory the pool may hold, e.g. 256MiB (default 1GiB)")
	pf.IntVar(&g.objSize, "obj-size", config.DefaultObjectSize, "Test object size in bytes")
	pf.StringVar(&g.blockSize, "block-size", "", "Initial block size, e.g. 4096 or 64KiB")

	cmd.AddCommand(newRunCmd(g), newExecCmd(g), newVersionCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup resolves the configuration (defaults, then file, then flags) and
// initializes logging.
func (g *globalOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = g.seed
	}
	if f.Changed("backing") {
		cfg.Backing = g.backing
	}
	if f.Changed("max-blocks") {
		cfg.MaxBlocks = g.maxBlocks
	}
	if f.Changed("max-bytes") {
		n, err := config.ParseSize(g.maxBytes)
		if err != nil {
			return fmt.Errorf("--max-bytes: %w", err)
		}
		cfg.MaxBytes = config.Size(n)
	}
	if f.Changed("obj-size") {
		cfg.ObjectSize = g.objSize
	}
	if f.Changed("block-size") {
		n, err := config.ParseSize(g.blockSize)
		if err != nil {
			return fmt.Errorf("--block-size: %w", err)
		}
		cfg.BlockSize = config.Size(n)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if g.verbose {
		level = slog.LevelDebug
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: !g.quiet && (g.verbose || g.logFile != ""),
		Output:  cmd.ErrOrStderr(),
		File:    g.logFile,
		JSON:    cfg.LogFormat == "json",
		Level:   level,
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	g.cfg = cfg
	g.closeLog = closeFn
	logger.Debug("memtest config", "block_size", int(cfg.BlockSize), "object_size", cfg.ObjectSize,
		"backing", cfg.Backing, "max_blocks", cfg.MaxBlocks, "max_bytes", int(cfg.MaxBytes))
	return nil
}

func (g *globalOptions) teardown() error {
	err := g.closeLog()
	_, _ = logger.Init(logger.Options{})
	return err
}

// stdout is where reports go; quiet mode drops them.
func (g *globalOptions) stdout(cmd *cobra.Command) io.Writer {
	if g.quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}

// printVerbose prints a verbose message if verbose mode is enabled
func (g *globalOptions) printVerbose(cmd *cobra.Command, format string, args ...any) {
	if g.verbose && !g.quiet {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}
