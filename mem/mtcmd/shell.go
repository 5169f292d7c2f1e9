// Package mtcmd is the line-oriented command shell for the memory test
// harness. It understands MTReset, MTNew, MTDelete and MTPrint plus the HELp
// and Quit built-ins. Command names may be abbreviated down to their
// capitalized prefix and options down to a dash and one letter, in any case.
//
// Example:
//
//	sh := mtcmd.New(h, os.Stdout)
//	if _, err := sh.Exec("mtn 10 -a 4"); err != nil {
//	    fmt.Fprintln(os.Stderr, "Error:", err)
//	}
package mtcmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/joshuapare/memkit/internal/logger"
	"github.com/joshuapare/memkit/mem/mtest"
)

// Status is the outcome of one command line.
type Status int

const (
	// Done means the command ran, or the line was blank or a comment.
	Done Status = iota
	// Error means the command was rejected or failed; the shell keeps going.
	Error
	// Quit means the script asked to stop.
	Quit
)

func (s Status) String() string {
	switch s {
	case Done:
		return "done"
	case Error:
		return "error"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

var errQuit = errors.New("quit")

type command struct {
	name   string
	minLen int
	usage  string
	help   string
	exec   func(s *Shell, args []string) error
}

// Stats counts executed lines.
type Stats struct {
	Commands int // lines that named a command
	Errors   int // lines that ended with Status Error
}

// Shell runs command lines against one harness.
type Shell struct {
	h      *mtest.Harness
	out    io.Writer
	errOut io.Writer
	cmds   []command
	log    *slog.Logger
	stats  Stats
	quit   bool
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger for executed commands.
func WithLogger(l *slog.Logger) Option {
	return func(s *Shell) {
		if l != nil {
			s.log = l
		}
	}
}

// WithErrorOutput sets where Run reports failed lines. The default is the
// shell's output.
func WithErrorOutput(w io.Writer) Option {
	return func(s *Shell) {
		if w != nil {
			s.errOut = w
		}
	}
}

// New creates a shell writing reports to out.
func New(h *mtest.Harness, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		h:      h,
		out:    out,
		errOut: out,
		log:    logger.L,
	}
	s.cmds = []command{
		{CmdReset, CmdPrefixLen, "Usage: MTReset [(size_t blockSize)]", "(memory test) reset memory manager", (*Shell).resetCmd},
		{CmdNew, CmdPrefixLen, "Usage: MTNew <(size_t numObjects)> [-Array (size_t arraySize)]", "(memory test) new objects", (*Shell).newCmd},
		{CmdDelete, CmdPrefixLen, "Usage: MTDelete <-Index (size_t objId) | -Random (size_t numRandId)> [-Array]", "(memory test) delete objects", (*Shell).deleteCmd},
		{CmdPrint, CmdPrefixLen, "Usage: MTPrint", "(memory test) print memory manager info", (*Shell).printCmd},
		{CmdHelp, 3, "Usage: HELp [(string cmd)]", "print this help message", (*Shell).helpCmd},
		{CmdQuit, 1, "Usage: Quit", "quit the execution", (*Shell).quitCmd},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Harness returns the harness the shell drives.
func (s *Shell) Harness() *mtest.Harness { return s.h }

// Stopped reports whether a Quit command has run. Run returns at once after that.
func (s *Shell) Stopped() bool { return s.quit }

// Stats returns the line counters.
func (s *Shell) Stats() Stats { return s.stats }

func (s *Shell) lookup(word string) *command {
	for i := range s.cmds {
		if matchAbbrev(word, s.cmds[i].name, s.cmds[i].minLen) {
			return &s.cmds[i]
		}
	}
	return nil
}

// Exec runs one command line. Blank lines and // comments are Done with no
// effect. On Error the returned error is an *OptionError for a bad token, or
// wraps the harness error that made the command fail.
func (s *Shell) Exec(line string) (Status, error) {
	words := lex(line)
	if len(words) == 0 {
		return Done, nil
	}
	c := s.lookup(words[0])
	if c == nil {
		s.stats.Errors++
		return Error, fmt.Errorf("%w: %q", ErrUnknownCommand, words[0])
	}
	s.stats.Commands++
	err := c.exec(s, words[1:])
	switch {
	case err == nil:
		s.log.Debug("mtcmd exec", "cmd", c.name, "args", words[1:])
		return Done, nil
	case errors.Is(err, errQuit):
		s.quit = true
		return Quit, nil
	default:
		s.stats.Errors++
		s.log.Debug("mtcmd exec failed", "cmd", c.name, "args", words[1:], "err", err)
		return Error, err
	}
}

// Run executes every line of r. Failed lines are reported as "Error: ..." and
// do not stop the script; Quit does. The returned error is only set for read
// failures or when ctx is done.
func (s *Shell) Run(ctx context.Context, r io.Reader, echo bool) error {
	sc := bufio.NewScanner(r)
	for !s.quit && sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Text()
		if echo && len(lex(line)) > 0 {
			fmt.Fprintf(s.out, "%s%s\n", Prompt, line)
		}
		st, err := s.Exec(line)
		if err != nil {
			fmt.Fprintf(s.errOut, "Error: %v\n", err)
		}
		if st == Quit {
			return nil
		}
	}
	if s.quit {
		return nil
	}
	return sc.Err()
}
