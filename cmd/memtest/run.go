package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/internal/report"
	"github.com/joshuapare/memkit/mem/mtcmd"
)

func newRunCmd(g *globalOptions) *cobra.Command {
	var echo bool
	cmd := &cobra.Command{
		Use:   "run [dofile...]",
		Short: "Run MT* commands from dofiles or standard input",
		Long: `The run command executes MT* command lines against one harness. Files are
run in order; with no files, commands are read from standard input.

Lines starting with // and blank lines are skipped. A failed command is
reported and the script continues; Quit stops everything.

Example:
  memtest run tests/do1
  memtest run --echo --block-size 4096 setup.do churn.do
  echo "mtn 10; mtp" | tr ';' '\n' | memtest run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.runScripts(cmd, args, echo)
		},
	}
	cmd.Flags().BoolVar(&echo, "echo", false, "Echo each command after the mtest> prompt")
	return cmd
}

func (g *globalOptions) runScripts(cmd *cobra.Command, files []string, echo bool) error {
	h, err := g.newHarness()
	if err != nil {
		return err
	}
	defer h.Close()

	sh := mtcmd.New(h, g.stdout(cmd),
		mtcmd.WithErrorOutput(cmd.ErrOrStderr()),
		mtcmd.WithLogger(logger.L))

	if len(files) == 0 {
		if err := sh.Run(cmd.Context(), cmd.InOrStdin(), echo); err != nil {
			return fmt.Errorf("stdin: %w", err)
		}
	}
	for _, path := range files {
		if sh.Stopped() {
			break
		}
		g.printVerbose(cmd, "Running dofile: %s\n", path)
		if err := runFile(cmd, sh, path, echo); err != nil {
			logger.Error("memtest run aborted", "path", path, "err", err)
			return err
		}
	}

	st := sh.Stats()
	logger.Info("memtest run finished", "files", len(files), "commands", st.Commands, "failed", st.Errors)
	g.printVerbose(cmd, "Executed %s commands, %s failed\n",
		report.Count(int64(st.Commands)), report.Count(int64(st.Errors)))
	return nil
}

func runFile(cmd *cobra.Command, sh *mtcmd.Shell, path string, echo bool) error {
	f, err := os.Open(path)
	if err != nil {
		logger.Error("dofile open failed", "path", path, "err", err)
		return fmt.Errorf("failed to open dofile: %w", err)
	}
	defer f.Close()
	if err := sh.Run(cmd.Context(), f, echo); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
