package mtcmd

import (
	"strconv"
	"strings"
)

// lex splits a command line into words. Blank lines and comments yield nil.
func lex(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, CommentPrefix) {
		return nil
	}
	return strings.Fields(line)
}

// matchAbbrev reports whether tok abbreviates name: it must be at least min
// characters long, no longer than name, and equal to name's prefix ignoring case.
func matchAbbrev(tok, name string, minLen int) bool {
	if len(tok) < minLen || len(tok) > len(name) {
		return false
	}
	return strings.EqualFold(tok, name[:len(tok)])
}

// isOption reports whether tok abbreviates one of the known options.
func isOption(tok string) bool {
	return matchAbbrev(tok, OptArray, OptPrefixLen) ||
		matchAbbrev(tok, OptIndex, OptPrefixLen) ||
		matchAbbrev(tok, OptRandom, OptPrefixLen)
}

// parseInt parses a decimal integer token.
func parseInt(tok string) (int, bool) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, false
	}
	return n, true
}
