package mtcmd

import (
	"errors"
	"fmt"

	"github.com/joshuapare/memkit/mem/mtest"
)

// MTReset [(size_t blockSize)]
func (s *Shell) resetCmd(args []string) error {
	if len(args) > 1 {
		return extra(args[1])
	}
	if len(args) == 0 {
		return s.run(CmdReset, s.h.Reset(0))
	}
	n, ok := parseInt(args[0])
	if !ok || n < 1 {
		return illegal(args[0], nil)
	}
	if err := s.h.Reset(n); err != nil {
		if errors.Is(err, mtest.ErrIllegalSize) {
			return illegal(args[0], err)
		}
		return s.run(CmdReset, err)
	}
	return nil
}

// MTNew <(size_t numObjects)> [-Array (size_t arraySize)]
//
// The -Array option and its value may come before or after the count.
func (s *Shell) newCmd(args []string) error {
	if len(args) == 0 {
		return missing("")
	}
	arr := -1
	for i, a := range args {
		if matchAbbrev(a, OptArray, OptPrefixLen) {
			if arr >= 0 {
				return extra(a)
			}
			arr = i
		}
	}

	if arr < 0 {
		if len(args) > 1 {
			return extra(args[1])
		}
		n, ok := parseInt(args[0])
		if !ok || n < 1 {
			return illegal(args[0], nil)
		}
		return s.run(CmdNew, s.h.NewObjs(n))
	}

	if arr == len(args)-1 {
		return missing(args[arr])
	}
	sizeTok := args[arr+1]
	rest := make([]string, 0, len(args)-2)
	rest = append(rest, args[:arr]...)
	rest = append(rest, args[arr+2:]...)
	switch {
	case len(rest) == 0:
		return missing("")
	case len(rest) > 1:
		return extra(rest[1])
	}
	n, ok := parseInt(rest[0])
	if !ok || n < 1 {
		return illegal(rest[0], nil)
	}
	size, ok := parseInt(sizeTok)
	if !ok || size < 1 {
		return illegal(sizeTok, nil)
	}
	return s.run(CmdNew, s.h.NewArrs(n, size))
}

// MTDelete <-Index (size_t objId) | -Random (size_t numRandId)> [-Array]
func (s *Shell) deleteCmd(args []string) error {
	if len(args) == 0 {
		return missing("")
	}
	var (
		arrays          bool
		random          bool
		modeTok, valTok string
	)
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case matchAbbrev(a, OptArray, OptPrefixLen):
			if arrays {
				return illegal(a, nil)
			}
			arrays = true
		case matchAbbrev(a, OptIndex, OptPrefixLen), matchAbbrev(a, OptRandom, OptPrefixLen):
			// A second mode is Extra for -Index and Illegal for -Random.
			if modeTok != "" {
				if matchAbbrev(a, OptRandom, OptPrefixLen) {
					return illegal(a, nil)
				}
				return extra(a)
			}
			if i+1 == len(args) || isOption(args[i+1]) {
				return missing(a)
			}
			modeTok, valTok = a, args[i+1]
			random = matchAbbrev(a, OptRandom, OptPrefixLen)
			i++
		default:
			return extra(a)
		}
	}
	if modeTok == "" {
		return missing("")
	}

	v, ok := parseInt(valTok)
	if !ok || v < 0 || (random && v == 0) {
		return illegal(valTok, nil)
	}
	size := s.h.ObjListSize()
	if arrays {
		size = s.h.ArrListSize()
	}
	if size == 0 {
		return illegal(modeTok, mtest.ErrEmptyList)
	}

	var err error
	switch {
	case random && arrays:
		err = s.h.DeleteRandomArrs(v)
	case random:
		err = s.h.DeleteRandomObjs(v)
	case arrays:
		err = s.h.DeleteArr(v)
	default:
		err = s.h.DeleteObj(v)
	}
	if errors.Is(err, mtest.ErrIndexOutOfRange) {
		return illegal(valTok, err)
	}
	return s.run(CmdDelete, err)
}

// MTPrint
func (s *Shell) printCmd(args []string) error {
	if len(args) > 0 {
		return extra(args[0])
	}
	return s.run(CmdPrint, s.h.Print(s.out))
}

// HELp [(string cmd)]
func (s *Shell) helpCmd(args []string) error {
	switch len(args) {
	case 0:
		for _, c := range s.cmds {
			fmt.Fprintf(s.out, "%-15s%s\n", c.name+": ", c.help)
		}
		return nil
	case 1:
		c := s.lookup(args[0])
		if c == nil {
			return illegal(args[0], ErrUnknownCommand)
		}
		fmt.Fprintln(s.out, c.usage)
		return nil
	default:
		return extra(args[1])
	}
}

// Quit
func (s *Shell) quitCmd(args []string) error {
	if len(args) > 0 {
		return extra(args[0])
	}
	return errQuit
}

// run wraps a harness error with the command name.
func (s *Shell) run(name string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, err)
}
