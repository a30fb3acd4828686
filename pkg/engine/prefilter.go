package engine

import (
	"strings"

	ac "github.com/petar-dambovaliev/aho-corasick"

	"github.com/PhucNguyen204/cardsearch/pkg/cards"
	"github.com/PhucNguyen204/cardsearch/pkg/query"
)

// prefilter rejects cards that cannot match before any clause predicate
// runs. Every plain name/text literal of an AND query must appear somewhere
// in the card's name or text, so one multi-pattern scan over the haystack is
// a sound necessary condition.
type prefilter struct {
	ac       *ac.AhoCorasick
	patterns int
}

// requiredLiterals collects the literal substrings every matching card must
// contain: TextValue clauses on Text-kind fields under Eq. Sets are OR
// alternations and regexes have no fixed literal, so neither contributes.
func requiredLiterals(q query.Query) []string {
	var pats []string
	seen := map[string]struct{}{}
	for _, c := range q.Clauses {
		if c.Field.Kind != query.Text || c.Op != query.Eq {
			continue
		}
		tv, ok := c.Value.(query.TextValue)
		if !ok {
			continue
		}
		lit := string(tv)
		if _, dup := seen[lit]; dup {
			continue
		}
		seen[lit] = struct{}{}
		pats = append(pats, lit)
	}
	return pats
}

// newPrefilter builds the automaton; nil when the query has no required
// literals. StandardMatch plus the overlapping iterator so shadowed patterns
// still get reported - with all-of semantics a dropped overlap would be a
// false rejection.
func newPrefilter(patterns []string) *prefilter {
	if len(patterns) == 0 {
		return nil
	}
	builder := ac.NewAhoCorasickBuilder(ac.Opts{
		AsciiCaseInsensitive: true,
		MatchKind:            ac.StandardMatch,
	})
	automaton := builder.Build(patterns)
	return &prefilter{ac: &automaton, patterns: len(patterns)}
}

// admit reports whether the card still has a chance of matching.
func (p *prefilter) admit(sc *cards.SearchCard) bool {
	if p == nil {
		return true
	}
	var b strings.Builder
	b.WriteString(sc.Name)
	for _, t := range sc.Texts {
		b.WriteByte('\n')
		b.WriteString(t)
	}
	found := map[int]struct{}{}
	iter := p.ac.IterOverlapping(b.String())
	for m := iter.Next(); m != nil; m = iter.Next() {
		found[m.Pattern()] = struct{}{}
		if len(found) == p.patterns {
			return true
		}
	}
	return len(found) == p.patterns
}
