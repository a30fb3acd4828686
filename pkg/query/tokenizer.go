package query

import "strings"

// token is one raw clause unit plus where it started in the input.
type token struct {
	text string
	pos  int
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// tokenize splits a raw query on ASCII whitespace, except inside double
// quotes and inside /regex/ spans, where whitespace is preserved. Quotes and
// slashes stay in the token text; the value parser strips them. A backslash
// escapes the next byte so `\"`, `\/` and `\|` can appear in values.
func tokenize(input string) ([]token, *ParseError) {
	var (
		toks    []token
		b       strings.Builder
		start   = -1
		inQuote bool
		inRegex bool
		escaped bool
	)
	flush := func() {
		if start >= 0 {
			toks = append(toks, token{text: b.String(), pos: start})
			b.Reset()
			start = -1
		}
	}
	for i := 0; i < len(input); i++ {
		c := input[i]
		if start < 0 && !isSpace(c) {
			start = i
		}
		switch {
		case escaped:
			b.WriteByte(c)
			escaped = false
		case c == '\\':
			b.WriteByte(c)
			escaped = true
		case c == '"' && !inRegex:
			inQuote = !inQuote
			b.WriteByte(c)
		case c == '/' && !inQuote:
			inRegex = !inRegex
			b.WriteByte(c)
		case isSpace(c) && !inQuote && !inRegex:
			flush()
		default:
			b.WriteByte(c)
		}
	}
	if inQuote || inRegex {
		return nil, perr(ErrUnterminatedLiteral, b.String(), start)
	}
	flush()
	return toks, nil
}
