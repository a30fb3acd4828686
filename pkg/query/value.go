package query

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Operator is one of the comparison operators a clause can carry.
// The ordered operators are only valid on Numeric fields.
type Operator int

const (
	Eq Operator = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op Operator) ordered() bool { return op >= Lt }

// String returns the canonical lexeme. Eq renders as ":" because that is the
// form every alias of it (":", "=", "==") normalizes to.
func (op Operator) String() string {
	switch op {
	case Eq:
		return ":"
	case Ne:
		return "!="
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("Operator(%d)", int(op))
	}
}

// Value is the tagged union of things a clause can compare against.
type Value interface {
	fmt.Stringer
	isValue()
}

// IntValue is a signed integer literal.
type IntValue int64

func (IntValue) isValue() {}

func (v IntValue) String() string { return strconv.FormatInt(int64(v), 10) }

// TextValue is a lower-cased string literal. "?" on a numeric field means
// "stat unknown" and is carried as text.
type TextValue string

func (TextValue) isValue() {}

func (v TextValue) String() string {
	s := string(v)
	if s != "" && !strings.ContainsAny(s, " \t\n\r\"|/\\") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// SetValue is a pipe-delimited alternation; members are all IntValue or all
// TextValue. Only legal under Eq/Ne.
type SetValue []Value

func (SetValue) isValue() {}

func (v SetValue) String() string {
	parts := make([]string, len(v))
	for i, m := range v {
		parts[i] = m.String()
	}
	return strings.Join(parts, "|")
}

// RegexValue is a compiled, always case-insensitive pattern. The pattern text
// is kept verbatim (including backslash escapes) so it serializes back to the
// exact input form.
type RegexValue struct {
	Pattern string
	Re      *regexp.Regexp
}

func (RegexValue) isValue() {}

func (v RegexValue) String() string { return "/" + v.Pattern + "/" }

// Compiled patterns are memoized for the process lifetime: the same query is
// typically evaluated against tens of thousands of cards.
var regexCache sync.Map // pattern -> *regexp.Regexp

func compileRegex(pattern string) (*regexp.Regexp, error) {
	if cached, ok := regexCache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, err
	}
	regexCache.Store(pattern, re)
	return re, nil
}

// splitUnescaped splits s on sep, ignoring separators that are backslash
// escaped or inside double quotes.
func splitUnescaped(s string, sep byte) []string {
	var (
		parts   []string
		start   int
		inQuote bool
		escaped bool
	)
	for i := 0; i < len(s); i++ {
		switch {
		case escaped:
			escaped = false
		case s[i] == '\\':
			escaped = true
		case s[i] == '"':
			inQuote = !inQuote
		case s[i] == sep && !inQuote:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// unescape drops the backslash from every escape sequence.
func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	escaped := false
	for i := 0; i < len(s); i++ {
		if !escaped && s[i] == '\\' {
			escaped = true
			continue
		}
		escaped = false
		b.WriteByte(s[i])
	}
	return b.String()
}

func containsSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			return true
		}
	}
	return false
}

// parseValue turns the raw suffix of a clause into a Value appropriate for
// the field kind. pos is the clause's offset, used for error reporting.
func parseValue(raw string, spec *FieldSpec, op Operator, pos int) (Value, *ParseError) {
	if strings.HasPrefix(raw, "/") {
		return parseRegexValue(raw, spec, pos)
	}
	if parts := splitUnescaped(raw, '|'); len(parts) > 1 {
		if op.ordered() {
			return nil, perr(ErrOperatorFieldMismatch, raw, pos)
		}
		set := make(SetValue, 0, len(parts))
		for _, part := range parts {
			if part == "" {
				return nil, perr(ErrEmptyAlternative, raw, pos)
			}
			v, err := parseSingleValue(part, spec, op, pos)
			if err != nil {
				return nil, err
			}
			set = append(set, v)
		}
		return set, nil
	}
	return parseSingleValue(raw, spec, op, pos)
}

func parseRegexValue(raw string, spec *FieldSpec, pos int) (Value, *ParseError) {
	if spec.Kind != Text {
		return nil, perr(ErrOperatorFieldMismatch, raw, pos)
	}
	end := -1
	escaped := false
	for i := 1; i < len(raw); i++ {
		switch {
		case escaped:
			escaped = false
		case raw[i] == '\\':
			escaped = true
		case raw[i] == '/':
			end = i
		}
		if end >= 0 {
			break
		}
	}
	// No flags accepted: anything after the closing slash is junk.
	if end != len(raw)-1 {
		return nil, perr(ErrInvalidRegex, raw, pos)
	}
	pattern := raw[1:end]
	re, err := compileRegex(pattern)
	if err != nil {
		return nil, perr(ErrInvalidRegex, pattern, pos)
	}
	return RegexValue{Pattern: pattern, Re: re}, nil
}

func parseSingleValue(raw string, spec *FieldSpec, op Operator, pos int) (Value, *ParseError) {
	if raw == "" {
		return nil, perr(ErrEmptyAlternative, raw, pos)
	}
	if spec.Kind == Numeric {
		if raw == "?" {
			// Unknown-stat query (atk:?). Only sensible under Eq/Ne.
			if op.ordered() {
				return nil, perr(ErrNotANumber, raw, pos)
			}
			return TextValue("?"), nil
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, perr(ErrNotANumber, raw, pos)
		}
		return IntValue(n), nil
	}
	return parseTextLiteral(raw, pos)
}

// parseTextLiteral strips wrapping quotes and lower-cases. Literals with
// whitespace must be quoted; whitespace can only survive tokenization inside
// a quoted or regex span, so an unwrapped spaced literal here means the
// quotes were misplaced.
func parseTextLiteral(raw string, pos int) (Value, *ParseError) {
	wrapped := len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"'
	if wrapped {
		raw = raw[1 : len(raw)-1]
	} else if containsSpace(raw) {
		return nil, perr(ErrUnquotedSpaces, raw, pos)
	}
	s := unescape(raw)
	if s == "" {
		return nil, perr(ErrEmptyAlternative, raw, pos)
	}
	return TextValue(strings.ToLower(s)), nil
}
