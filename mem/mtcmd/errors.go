package mtcmd

import (
	"errors"
	"fmt"
)

// ErrUnknownCommand indicates a line whose first word matches no command.
var ErrUnknownCommand = errors.New("mtcmd: unknown command")

// OptKind classifies a command-line option error.
type OptKind int

const (
	// OptMissing means a required option or value is absent.
	OptMissing OptKind = iota
	// OptIllegal means a token is malformed or out of range.
	OptIllegal
	// OptExtra means a token is not expected at all.
	OptExtra
)

func (k OptKind) String() string {
	switch k {
	case OptMissing:
		return "missing"
	case OptIllegal:
		return "illegal"
	case OptExtra:
		return "extra"
	default:
		return fmt.Sprintf("OptKind(%d)", int(k))
	}
}

// OptionError reports a bad token on a command line. Err, when set, is the
// harness error that made the token illegal.
type OptionError struct {
	Kind  OptKind
	Token string
	Err   error
}

func (e *OptionError) Error() string {
	switch e.Kind {
	case OptMissing:
		if e.Token == "" {
			return "Missing option!!"
		}
		return fmt.Sprintf("Missing option after (%s)!!", e.Token)
	case OptIllegal:
		if e.Err != nil {
			return fmt.Sprintf("Illegal option!! (%s): %v", e.Token, e.Err)
		}
		return fmt.Sprintf("Illegal option!! (%s)", e.Token)
	default:
		return fmt.Sprintf("Extra option!! (%s)", e.Token)
	}
}

func (e *OptionError) Unwrap() error { return e.Err }

func missing(tok string) error { return &OptionError{Kind: OptMissing, Token: tok} }

func illegal(tok string, cause error) error {
	return &OptionError{Kind: OptIllegal, Token: tok, Err: cause}
}

func extra(tok string) error { return &OptionError{Kind: OptExtra, Token: tok} }
