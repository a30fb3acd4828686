package query

import "fmt"

// ErrorKind classifies everything that can go wrong while parsing a query.
// Evaluation has no error channel: a missing field on a card simply does not
// match.
type ErrorKind int

const (
	ErrUnterminatedLiteral ErrorKind = iota
	ErrUnknownField
	ErrOperatorFieldMismatch
	ErrInvalidRegex
	ErrEmptyAlternative
	ErrNotANumber
	ErrUnquotedSpaces
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnterminatedLiteral:
		return "unterminated literal"
	case ErrUnknownField:
		return "unknown field"
	case ErrOperatorFieldMismatch:
		return "operator not valid for field"
	case ErrInvalidRegex:
		return "invalid regex"
	case ErrEmptyAlternative:
		return "empty alternative"
	case ErrNotANumber:
		return "not a number"
	case ErrUnquotedSpaces:
		return "unquoted spaces"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ParseError is the single terminal failure for a query: the first offending
// token aborts the whole parse, there is no clause-level recovery.
type ParseError struct {
	Kind  ErrorKind
	Token string // the offending token or value text
	Pos   int    // byte offset of the token in the raw query
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("%s at offset %d", e.Kind, e.Pos)
	}
	return fmt.Sprintf("%s at offset %d: %q", e.Kind, e.Pos, e.Token)
}

func perr(kind ErrorKind, token string, pos int) *ParseError {
	return &ParseError{Kind: kind, Token: token, Pos: pos}
}
