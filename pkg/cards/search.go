package cards

import (
	"regexp"
	"strings"

	"github.com/PhucNguyen204/cardsearch/pkg/query"
)

// pendulumSeparator splits a pendulum card's text into its pendulum and
// monster halves, same separator the upstream dump uses.
var pendulumSeparator = regexp.MustCompile(`(?i)(\n-+)?\n\[\s?(Monster Effect|Flavor Text)\s?\]\n?`)

// SearchCard is the search-normalized projection of a Card: everything the
// evaluator reads, lower-cased once at build time so per-query folding stays
// in the parser.
type SearchCard struct {
	ID   int
	Name string

	// Texts holds the effect text halves; pendulum cards carry two.
	Texts []string

	// TypeTags are the tags the merged type/class field matches against:
	// the type line plus the words of the frame type ("fusion", "monster",
	// "spell", ...) plus the full frame type string.
	TypeTags []string

	// AttributeTags is empty for spells and traps.
	AttributeTags []string

	SetCodes []string
	SetNames []string

	Atk        *int64
	Def        *int64
	Level      *int64
	LinkRating *int64
	Copies     int64
	PriceCents *int64 // lowest printing price
	Years      []int64

	// isMonster gates the ? stat queries.
	isMonster bool
	hasLink   bool
}

func i64(p *int) *int64 {
	if p == nil {
		return nil
	}
	v := int64(*p)
	return &v
}

// NewSearchCard builds the search projection. sets supplies release dates by
// lower-cased set name and may be nil.
func NewSearchCard(c *Card, sets map[string]Set) SearchCard {
	frame := strings.ToLower(c.CardType)
	sc := SearchCard{
		ID:         c.ID,
		Name:       strings.ToLower(c.Name),
		Atk:        i64(c.Atk),
		Def:        i64(c.Def),
		Level:      i64(c.Level),
		LinkRating: i64(c.LinkRating),
		Copies:     int64(c.Copies()),
		isMonster:  strings.Contains(frame, "monster"),
		hasLink:    c.LinkRating != nil,
	}

	text := strings.ReplaceAll(strings.ToLower(c.Text), "\r", "")
	for _, half := range pendulumSeparator.Split(text, 2) {
		if half = strings.TrimSpace(half); half != "" {
			sc.Texts = append(sc.Texts, half)
		}
	}

	if c.TypeLine != "" {
		sc.TypeTags = append(sc.TypeTags, strings.ToLower(c.TypeLine))
	}
	if frame != "" {
		sc.TypeTags = append(sc.TypeTags, frame)
		for _, word := range strings.Fields(frame) {
			if word != frame {
				sc.TypeTags = append(sc.TypeTags, word)
			}
		}
	}
	if c.Attribute != "" {
		sc.AttributeTags = append(sc.AttributeTags, strings.ToLower(c.Attribute))
	}

	for _, pr := range c.Printings {
		sc.SetCodes = append(sc.SetCodes, strings.ToLower(pr.SetCode))
		sc.SetNames = append(sc.SetNames, strings.ToLower(pr.SetName))
		if cents, ok := pr.PriceCents(); ok {
			if sc.PriceCents == nil || cents < *sc.PriceCents {
				v := cents
				sc.PriceCents = &v
			}
		}
		if set, ok := sets[strings.ToLower(pr.SetName)]; ok {
			if y := set.Year(); y > 0 {
				sc.Years = append(sc.Years, int64(y))
			}
		}
	}
	return sc
}

// NewSearchCards builds projections for a whole card list.
func NewSearchCards(list []Card, sets map[string]Set) []SearchCard {
	out := make([]SearchCard, len(list))
	for i := range list {
		out[i] = NewSearchCard(&list[i], sets)
	}
	return out
}

// Ints returns the numeric values a card carries for a canonical field.
// Absent fields return nil and never match.
func (sc *SearchCard) Ints(field string) []int64 {
	one := func(p *int64) []int64 {
		if p == nil {
			return nil
		}
		return []int64{*p}
	}
	switch field {
	case query.FieldAtk:
		return one(sc.Atk)
	case query.FieldDef:
		return one(sc.Def)
	case query.FieldLevel:
		return one(sc.Level)
	case query.FieldLinkRating:
		return one(sc.LinkRating)
	case query.FieldCopies:
		return []int64{sc.Copies}
	case query.FieldPrice:
		return one(sc.PriceCents)
	case query.FieldYear:
		return sc.Years
	default:
		return nil
	}
}

// Strings returns the text or tag values for a canonical field.
func (sc *SearchCard) Strings(field string) []string {
	switch field {
	case query.FieldName:
		return []string{sc.Name}
	case query.FieldText:
		return sc.Texts
	case query.FieldType:
		return sc.TypeTags
	case query.FieldAttribute:
		return sc.AttributeTags
	default:
		return nil
	}
}

// StatUnknown reports whether a ? stat query hits this card: monsters whose
// printed value is unknown. Link monsters have no DEF at all, which is not
// the same as an unknown one.
func (sc *SearchCard) StatUnknown(field string) bool {
	switch field {
	case query.FieldAtk:
		return sc.Atk == nil && sc.isMonster
	case query.FieldDef:
		return sc.Def == nil && !sc.hasLink && sc.isMonster
	default:
		return false
	}
}
