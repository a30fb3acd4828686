package engine

import (
	"strings"

	"github.com/PhucNguyen204/cardsearch/pkg/cards"
	"github.com/PhucNguyen204/cardsearch/pkg/query"
)

type predicate func(*cards.SearchCard) bool

// Matcher is a compiled query: one predicate per clause plus a literal
// prefilter. Read-only after Compile, safe for concurrent use.
type Matcher struct {
	query query.Query
	preds []predicate
	pf    *prefilter
}

// Compile turns a parsed query into an executable matcher. Parsing already
// validated every field/operator/value combination, so compilation is total.
func Compile(q query.Query) *Matcher {
	m := &Matcher{query: q}
	for _, c := range q.Clauses {
		m.preds = append(m.preds, compileClause(c))
	}
	m.pf = newPrefilter(requiredLiterals(q))
	return m
}

// Query returns the query this matcher was compiled from.
func (m *Matcher) Query() query.Query { return m.query }

// Matches reports whether every clause hits the card. The empty query
// matches everything.
func (m *Matcher) Matches(sc *cards.SearchCard) bool {
	for _, p := range m.preds {
		if !p(sc) {
			return false
		}
	}
	return true
}

func compileClause(c query.Clause) predicate {
	field := c.Field.Name
	switch c.Field.Kind {
	case query.Numeric:
		return compileNumeric(field, c.Op, c.Value)
	case query.Text:
		eq := textEq(field, c.Value)
		if c.Op == query.Ne {
			return negate(eq)
		}
		return eq
	case query.EnumLike:
		eq := enumEq(field, c.Value)
		if c.Op == query.Ne {
			return negate(eq)
		}
		return eq
	case query.MultiToken:
		eq := setEq(c.Value)
		if c.Op == query.Ne {
			return negate(eq)
		}
		return eq
	default:
		return func(*cards.SearchCard) bool { return false }
	}
}

func negate(p predicate) predicate {
	return func(sc *cards.SearchCard) bool { return !p(sc) }
}

// ---- Numeric ----

func cmpInt(op query.Operator, a, b int64) bool {
	switch op {
	case query.Eq:
		return a == b
	case query.Ne:
		return a != b
	case query.Lt:
		return a < b
	case query.Le:
		return a <= b
	case query.Gt:
		return a > b
	case query.Ge:
		return a >= b
	default:
		return false
	}
}

// compileNumeric compares against every value the card carries for the
// field (printings contribute several years). A card without the field
// never matches, not even under Ne.
func compileNumeric(field string, op query.Operator, val query.Value) predicate {
	switch v := val.(type) {
	case query.IntValue:
		n := int64(v)
		if op == query.Ne {
			return func(sc *cards.SearchCard) bool {
				vals := sc.Ints(field)
				if len(vals) == 0 {
					return false
				}
				for _, a := range vals {
					if a == n {
						return false
					}
				}
				return true
			}
		}
		return func(sc *cards.SearchCard) bool {
			for _, a := range sc.Ints(field) {
				if cmpInt(op, a, n) {
					return true
				}
			}
			return false
		}
	case query.SetValue:
		ns := make([]int64, 0, len(v))
		var unknown bool // "?" is the only text member the parser admits
		for _, member := range v {
			switch mv := member.(type) {
			case query.IntValue:
				ns = append(ns, int64(mv))
			case query.TextValue:
				unknown = true
			}
		}
		member := func(a int64) bool {
			for _, n := range ns {
				if a == n {
					return true
				}
			}
			return false
		}
		if op == query.Ne {
			return func(sc *cards.SearchCard) bool {
				if unknown && sc.StatUnknown(field) {
					return false
				}
				vals := sc.Ints(field)
				if len(ns) > 0 && len(vals) == 0 {
					return false
				}
				for _, a := range vals {
					if member(a) {
						return false
					}
				}
				return true
			}
		}
		return func(sc *cards.SearchCard) bool {
			if unknown && sc.StatUnknown(field) {
				return true
			}
			for _, a := range sc.Ints(field) {
				if member(a) {
					return true
				}
			}
			return false
		}
	case query.TextValue:
		// "?": the printed stat is unknown.
		unknown := func(sc *cards.SearchCard) bool { return sc.StatUnknown(field) }
		if op == query.Ne {
			return negate(unknown)
		}
		return unknown
	default:
		return func(*cards.SearchCard) bool { return false }
	}
}

// ---- Text ----

// textEq matches if any record string contains the value (or, for regexes,
// the pattern finds a match anywhere in it). Both sides are already
// lower-cased, record side at build time and query side at parse time.
func textEq(field string, val query.Value) predicate {
	switch v := val.(type) {
	case query.TextValue:
		needle := string(v)
		return func(sc *cards.SearchCard) bool {
			return anyContains(sc.Strings(field), needle)
		}
	case query.RegexValue:
		re := v.Re
		return func(sc *cards.SearchCard) bool {
			for _, s := range sc.Strings(field) {
				if re.MatchString(s) {
					return true
				}
			}
			return false
		}
	case query.SetValue:
		needles := textMembers(v)
		return func(sc *cards.SearchCard) bool {
			for _, needle := range needles {
				if anyContains(sc.Strings(field), needle) {
					return true
				}
			}
			return false
		}
	default:
		return func(*cards.SearchCard) bool { return false }
	}
}

func anyContains(haystacks []string, needle string) bool {
	for _, s := range haystacks {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}

func textMembers(set query.SetValue) []string {
	out := make([]string, 0, len(set))
	for _, m := range set {
		if tv, ok := m.(query.TextValue); ok {
			out = append(out, string(tv))
		}
	}
	return out
}

// ---- EnumLike ----

// enumEq matches by exact tag equality against any of the card's tags.
func enumEq(field string, val query.Value) predicate {
	switch v := val.(type) {
	case query.TextValue:
		tag := string(v)
		return func(sc *cards.SearchCard) bool {
			return anyEquals(sc.Strings(field), tag)
		}
	case query.SetValue:
		tags := textMembers(v)
		return func(sc *cards.SearchCard) bool {
			for _, tag := range tags {
				if anyEquals(sc.Strings(field), tag) {
					return true
				}
			}
			return false
		}
	default:
		return func(*cards.SearchCard) bool { return false }
	}
}

func anyEquals(vals []string, want string) bool {
	for _, s := range vals {
		if s == want {
			return true
		}
	}
	return false
}

// ---- MultiToken (set field) ----

// setEq matches a printing by exact set code or by substring of the set
// name, over all printings.
func setEq(val query.Value) predicate {
	one := func(sc *cards.SearchCard, want string) bool {
		return anyEquals(sc.SetCodes, want) || anyContains(sc.SetNames, want)
	}
	switch v := val.(type) {
	case query.TextValue:
		want := string(v)
		return func(sc *cards.SearchCard) bool { return one(sc, want) }
	case query.SetValue:
		wants := textMembers(v)
		return func(sc *cards.SearchCard) bool {
			for _, want := range wants {
				if one(sc, want) {
					return true
				}
			}
			return false
		}
	default:
		return func(*cards.SearchCard) bool { return false }
	}
}
