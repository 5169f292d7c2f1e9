package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/mtcmd"
)

func newExecCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <commands>",
		Short: "Run ';'-separated MT* commands",
		Long: `The exec command runs MT* commands given on the command line, separated by
';', against one harness. Quote the commands so their options are not taken
as memtest flags. The exit status is non-zero if any command failed.

Example:
  memtest exec "mtr 4096; mtn 10 -a 3; mtd -r 2 -a; mtp"
  memtest exec --seed 7 -- mtn 100 ';' mtd -r 50 ';' mtp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.execCommands(cmd, args)
		},
	}
}

func (g *globalOptions) execCommands(cmd *cobra.Command, args []string) error {
	h, err := g.newHarness()
	if err != nil {
		return err
	}
	defer h.Close()

	sh := mtcmd.New(h, g.stdout(cmd), mtcmd.WithLogger(logger.L))
	for _, line := range strings.Split(strings.Join(args, " "), ";") {
		st, err := sh.Exec(line)
		if err != nil {
			logger.Warn("memtest command failed", "line", strings.TrimSpace(line), "err", err)
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
		if st == mtcmd.Quit {
			break
		}
	}

	if st := sh.Stats(); st.Errors > 0 {
		return fmt.Errorf("%d command(s) failed", st.Errors)
	}
	return nil
}
