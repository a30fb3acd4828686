package engine

import (
	"testing"

	"github.com/PhucNguyen204/cardsearch/pkg/cards"
	"github.com/PhucNguyen204/cardsearch/pkg/query"
)

func ip(n int) *int { return &n }

func monster() cards.SearchCard {
	c := cards.Card{
		ID:        1,
		Name:      "Des Lacooda",
		CardType:  "Effect Monster",
		TypeLine:  "Zombie",
		Attribute: "EARTH",
		Text:      "Once per turn: You can change this card to face-down Defense Position. When this card is Flip Summoned: Draw 1 card.",
		Atk:       ip(500),
		Def:       ip(600),
		Level:     ip(3),
	}
	return cards.NewSearchCard(&c, nil)
}

func fusion() cards.SearchCard {
	c := cards.Card{
		ID:        2,
		Name:      "Blue-Eyes Ultimate Dragon",
		CardType:  "Fusion Monster",
		TypeLine:  "Dragon",
		Attribute: "LIGHT",
		Text:      `"Blue-Eyes White Dragon" + "Blue-Eyes White Dragon" + "Blue-Eyes White Dragon"`,
		Atk:       ip(4500),
		Def:       ip(3800),
		Level:     ip(12),
	}
	return cards.NewSearchCard(&c, nil)
}

func spell() cards.SearchCard {
	c := cards.Card{
		ID:       3,
		Name:     "The Cheerful Coffin",
		CardType: "Spell Card",
		TypeLine: "Normal",
		Text:     "Discard up to 3 Monster Cards from your hand to the Graveyard.",
	}
	return cards.NewSearchCard(&c, nil)
}

func matches(t *testing.T, input string, sc cards.SearchCard) bool {
	t.Helper()
	q, err := query.Parse(query.NewRegistry(), input)
	if err != nil {
		t.Fatalf("Parse(%q): %v", input, err)
	}
	return Compile(q).Matches(&sc)
}

func TestNumericOperators(t *testing.T) {
	m := monster()
	tests := []struct {
		q    string
		want bool
	}{
		{"atk:500", true},
		{"atk=500", true},
		{"atk:501", false},
		{"atk>=500", true},
		{"atk>500", false},
		{"atk<600", true},
		{"atk<=499", false},
		{"l!=12", true},
		{"l!=3", false},
		{"def:600", true},
	}
	for _, tc := range tests {
		if got := matches(t, tc.q, m); got != tc.want {
			t.Fatalf("%q vs monster: want %v, got %v", tc.q, tc.want, got)
		}
	}
}

func TestNumericMissingFieldNeverMatches(t *testing.T) {
	s := spell()
	for _, q := range []string{"atk:0", "atk>=0", "atk!=500", "l<5", "lr:2"} {
		if matches(t, q, s) {
			t.Fatalf("%q should not match a spell", q)
		}
	}
}

func TestSetMembershipLaw(t *testing.T) {
	m := monster() // level 3
	if !matches(t, "level:3|6|9", m) {
		t.Fatal("level:3|6|9 should match level 3")
	}
	if matches(t, "level:4|6|9", m) {
		t.Fatal("level:4|6|9 should not match level 3")
	}
	if matches(t, "level!=3|6|9", m) {
		t.Fatal("level!=3|6|9 should reject level 3")
	}
	if !matches(t, "level!=4|6|9", m) {
		t.Fatal("level!=4|6|9 should match level 3")
	}
}

func TestTextContainment(t *testing.T) {
	m := monster()
	if !matches(t, `o:"draw 1 card"`, m) {
		t.Fatal("text containment failed")
	}
	if !matches(t, `o:"DRAW 1 CARD"`, m) {
		t.Fatal("text containment must be case-insensitive")
	}
	if matches(t, `o:"draw 2 cards"`, m) {
		t.Fatal("unexpected text match")
	}
	if !matches(t, `o!="draw 2 cards"`, m) {
		t.Fatal("negated containment failed")
	}
}

func TestTextRegex(t *testing.T) {
	m := monster()
	if !matches(t, `o:/draw \d+ card/`, m) {
		t.Fatal("regex containment failed")
	}
	if matches(t, `o:/draw \d{2,} card/`, m) {
		t.Fatal("unexpected regex match")
	}
	if !matches(t, `o!=/draw \d{2,} card/`, m) {
		t.Fatal("negated regex failed")
	}
}

func TestEnumExactEquality(t *testing.T) {
	m := monster()
	if !matches(t, "t:zombie", m) || !matches(t, "type:ZOMBIE", m) {
		t.Fatal("type tag equality failed")
	}
	// enum matching is exact, not substring
	if matches(t, "t:zomb", m) {
		t.Fatal("enum match must not be substring")
	}
	if !matches(t, "c:effect", m) || !matches(t, "class:monster", m) {
		t.Fatal("class alias over frame tags failed")
	}
	if !matches(t, "a:earth", m) {
		t.Fatal("attribute equality failed")
	}
	if matches(t, "a:fire", m) {
		t.Fatal("unexpected attribute match")
	}
	if !matches(t, "a:fire|earth", m) {
		t.Fatal("attribute set failed")
	}
	if !matches(t, "a!=fire", m) {
		t.Fatal("attribute negation failed")
	}
}

func TestNameSearch(t *testing.T) {
	f := fusion()
	if !matches(t, "blue-eyes", f) {
		t.Fatal("bare term name search failed")
	}
	if !matches(t, "BLUE-Eyes", f) {
		t.Fatal("name search must be case-insensitive")
	}
	if !matches(t, "name:ultimate", f) {
		t.Fatal("explicit name field failed")
	}
	if matches(t, "red-eyes", f) {
		t.Fatal("unexpected name match")
	}
}

func TestStatUnknownQuery(t *testing.T) {
	c := cards.Card{ID: 9, Name: "Slifer", CardType: "Effect Monster", TypeLine: "Divine-Beast"}
	sc := cards.NewSearchCard(&c, nil)
	if !matches(t, "atk:?", sc) {
		t.Fatal("atk:? should match an unknown stat")
	}
	if matches(t, "atk:?", monster()) {
		t.Fatal("atk:? should not match a printed stat")
	}
	if matches(t, "atk:?", spell()) {
		t.Fatal("atk:? should not match spells")
	}
	if !matches(t, "atk!=?", monster()) {
		t.Fatal("atk!=? should match printed stats")
	}
}

// ? keeps its unknown-stat meaning as an alternation member.
func TestStatUnknownInAlternation(t *testing.T) {
	c := cards.Card{ID: 9, Name: "Slifer", CardType: "Effect Monster", TypeLine: "Divine-Beast"}
	sc := cards.NewSearchCard(&c, nil)
	if !matches(t, "atk:?|500", sc) {
		t.Fatal("atk:?|500 should match a card whose atk is unknown")
	}
	if !matches(t, "atk:?|500", monster()) {
		t.Fatal("atk:?|500 should match atk 500")
	}
	if matches(t, "atk:?|500", fusion()) {
		t.Fatal("atk:?|500 should not match atk 4500")
	}
	if matches(t, "atk:?|500", spell()) {
		t.Fatal("atk:?|500 should not match spells")
	}
	if matches(t, "atk!=?|500", sc) {
		t.Fatal("atk!=?|500 should not match an unknown stat")
	}
	if matches(t, "atk!=?|500", monster()) {
		t.Fatal("atk!=?|500 should not match atk 500")
	}
	if !matches(t, "atk!=?|500", fusion()) {
		t.Fatal("atk!=?|500 should match atk 4500")
	}
	if matches(t, "atk!=?|500", spell()) {
		t.Fatal("atk!=?|500 should not match a card without the stat")
	}
}

// End-to-end examples from the documented behavior.
func TestConjunction(t *testing.T) {
	fire200 := cards.Card{ID: 10, Name: "X", CardType: "Effect Monster", TypeLine: "Pyro", Attribute: "FIRE", Def: ip(200)}
	fire300 := cards.Card{ID: 11, Name: "Y", CardType: "Effect Monster", TypeLine: "Pyro", Attribute: "FIRE", Def: ip(300)}
	a := cards.NewSearchCard(&fire200, nil)
	b := cards.NewSearchCard(&fire300, nil)

	if !matches(t, "a:fire def:200", a) {
		t.Fatal("a:fire def:200 should match the 200 DEF card")
	}
	if matches(t, "a:fire def:200", b) {
		t.Fatal("a:fire def:200 should reject the 300 DEF card")
	}

	f := fusion()
	if matches(t, "c:fusion l!=12 blue-eyes", f) {
		t.Fatal("level 12 must fail the l!=12 clause")
	}
	if !matches(t, "c:fusion l:12 blue-eyes", f) {
		t.Fatal("all three clauses should hold")
	}
	if matches(t, "c:fusion l:12 red-eyes", f) {
		t.Fatal("name clause should fail")
	}
	if matches(t, "c:xyz l:12 blue-eyes", f) {
		t.Fatal("class clause should fail")
	}
}

func TestEmptyQueryMatchesEverything(t *testing.T) {
	for _, sc := range []cards.SearchCard{monster(), fusion(), spell()} {
		if !matches(t, "", sc) {
			t.Fatal("empty query must match everything")
		}
	}
}

func TestSetFieldMatching(t *testing.T) {
	c := cards.Card{
		ID: 12, Name: "Z", CardType: "Spell Card", TypeLine: "Normal",
		Printings: []cards.Printing{
			{SetName: "Metal Raiders", SetCode: "MRD-059"},
			{SetName: "Dark Beginning 1", SetCode: "DB1-EN167"},
		},
	}
	sc := cards.NewSearchCard(&c, nil)
	if !matches(t, "s:mrd-059", sc) {
		t.Fatal("exact set code match failed")
	}
	if matches(t, "s:mrd-0", sc) {
		t.Fatal("set codes match exactly, not by prefix")
	}
	if !matches(t, `s:"metal raiders"`, sc) {
		t.Fatal("set name containment failed")
	}
	if !matches(t, "s:raiders", sc) {
		t.Fatal("set name substring failed")
	}
	if !matches(t, "s:mrd-059|lob-001", sc) {
		t.Fatal("set alternation failed")
	}
	if !matches(t, "s!=lob-001", sc) {
		t.Fatal("set negation failed")
	}
}

func TestMultiValuedTextAnyHit(t *testing.T) {
	text := "Pendulum half mentions banish.\n[ Monster Effect ]\nMonster half mentions draw."
	c := cards.Card{ID: 13, Name: "Pend", CardType: "Pendulum Effect Monster", TypeLine: "Dragon", Text: text}
	sc := cards.NewSearchCard(&c, nil)
	if !matches(t, "o:banish", sc) || !matches(t, "o:draw", sc) {
		t.Fatal("either text half should count as a field hit")
	}
	if matches(t, "o:discard", sc) {
		t.Fatal("unexpected text hit")
	}
}
