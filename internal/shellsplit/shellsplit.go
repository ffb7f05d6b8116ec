// Package shellsplit tokenizes a job's command string into argv words the
// way a shell would, without ever invoking a shell (spec.md §4.6.1:
// commands are executed directly via exec, not through /bin/sh). It is a
// small equivalent of Python's shlex.split.
package shellsplit

import (
	"fmt"
)

// ErrUnterminatedQuote is returned when a command string ends inside an
// open single or double quote, or ends with an unescaped backslash.
var ErrUnterminatedQuote = fmt.Errorf("unterminated quote in command")

// Split tokenizes s into words, honoring single quotes, double quotes, and
// backslash escapes outside of single quotes, matching POSIX shell word
// splitting semantics closely enough for job commands (no globbing,
// variable expansion, or pipelines: those are out of scope per spec.md's
// "commands are opaque strings").
func Split(s string) ([]string, error) {
	var words []string
	var current []rune
	hasCurrent := false

	runes := []rune(s)
	i := 0
	for i < len(runes) {
		c := runes[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			if hasCurrent {
				words = append(words, string(current))
				current = nil
				hasCurrent = false
			}
			i++
		case c == '\'':
			hasCurrent = true
			i++
			for i < len(runes) && runes[i] != '\'' {
				current = append(current, runes[i])
				i++
			}
			if i >= len(runes) {
				return nil, ErrUnterminatedQuote
			}
			i++ // consume closing quote
		case c == '"':
			hasCurrent = true
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' && i+1 < len(runes) && isDoubleQuoteEscapable(runes[i+1]) {
					current = append(current, runes[i+1])
					i += 2
					continue
				}
				current = append(current, runes[i])
				i++
			}
			if i >= len(runes) {
				return nil, ErrUnterminatedQuote
			}
			i++ // consume closing quote
		case c == '\\':
			hasCurrent = true
			if i+1 < len(runes) {
				current = append(current, runes[i+1])
				i += 2
			} else {
				return nil, ErrUnterminatedQuote
			}
		default:
			hasCurrent = true
			current = append(current, c)
			i++
		}
	}
	if hasCurrent {
		words = append(words, string(current))
	}
	return words, nil
}

func isDoubleQuoteEscapable(c rune) bool {
	switch c {
	case '\\', '"', '$', '`':
		return true
	default:
		return false
	}
}
