package query

import "strings"

// Clause is one field/operator/value unit. A bare term becomes an implicit
// name clause.
type Clause struct {
	Field *FieldSpec
	Op    Operator
	Value Value
}

// String renders the canonical form of the clause. Parsing the result yields
// an equivalent clause.
func (c Clause) String() string {
	if c.Field.Name == FieldName && c.Op == Eq {
		if tv, ok := c.Value.(TextValue); ok && bareSafe(string(tv)) {
			return string(tv)
		}
	}
	return c.Field.Name + c.Op.String() + c.Value.String()
}

// bareSafe reports whether a name term can be emitted without the explicit
// name: prefix, i.e. re-tokenizing it cannot split it or find an operator.
func bareSafe(s string) bool {
	return s != "" && !strings.ContainsAny(s, " \t\n\r\"|/\\=<>!:")
}

// Query is a conjunction of clauses. The zero value matches everything.
type Query struct {
	Clauses []Clause
}

// String returns the canonical serialization, clauses joined by single
// spaces.
func (q Query) String() string {
	parts := make([]string, len(q.Clauses))
	for i, c := range q.Clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

// opLexemes in longest-match-first order, so "=" never shadows "==", "<="
// or ">=".
var opLexemes = []struct {
	lex string
	op  Operator
}{
	{"==", Eq},
	{"!=", Ne},
	{"<=", Le},
	{">=", Ge},
	{"=", Eq},
	{"<", Lt},
	{">", Gt},
	{":", Eq},
}

// splitOperator finds the first operator lexeme outside quoted and regex
// spans and splits the token around it.
func splitOperator(tok string) (field string, op Operator, value string, found bool) {
	var inQuote, inRegex, escaped bool
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		switch {
		case escaped:
			escaped = false
			continue
		case c == '\\':
			escaped = true
			continue
		case c == '"' && !inRegex:
			inQuote = !inQuote
			continue
		case c == '/' && !inQuote:
			inRegex = !inRegex
			continue
		}
		if inQuote || inRegex {
			continue
		}
		for _, cand := range opLexemes {
			if strings.HasPrefix(tok[i:], cand.lex) {
				return tok[:i], cand.op, tok[i+len(cand.lex):], true
			}
		}
	}
	return "", 0, "", false
}

// Parse builds a Query from raw user input using the given registry. The
// first offending token aborts the parse; the returned error is always a
// *ParseError.
func Parse(reg *Registry, input string) (Query, error) {
	toks, terr := tokenize(input)
	if terr != nil {
		return Query{}, terr
	}
	clauses := make([]Clause, 0, len(toks))
	for _, tok := range toks {
		c, err := parseClause(reg, tok)
		if err != nil {
			return Query{}, err
		}
		clauses = append(clauses, c)
	}
	return Query{Clauses: clauses}, nil
}

func parseClause(reg *Registry, tok token) (Clause, *ParseError) {
	alias, op, rawValue, found := splitOperator(tok.text)
	if !found {
		// Bare term: implicit name search. The term still goes through the
		// value parser so quoted and /regex/ terms work.
		v, err := parseValue(tok.text, reg.name(), Eq, tok.pos)
		if err != nil {
			return Clause{}, err
		}
		return Clause{Field: reg.name(), Op: Eq, Value: v}, nil
	}
	spec, ok := reg.Resolve(alias)
	if !ok {
		return Clause{}, perr(ErrUnknownField, alias, tok.pos)
	}
	if op.ordered() && spec.Kind != Numeric {
		return Clause{}, perr(ErrOperatorFieldMismatch, tok.text, tok.pos)
	}
	v, err := parseValue(rawValue, spec, op, tok.pos)
	if err != nil {
		return Clause{}, err
	}
	return Clause{Field: spec, Op: op, Value: v}, nil
}
