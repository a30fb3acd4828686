package cards

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Card mirrors one entry of the upstream cards.json dump. Consumers treat it
// as read-only.
type Card struct {
	ID         int          `json:"id"`
	CardType   string       `json:"type"` // "Effect Monster", "Spell Card", ...
	Name       string       `json:"name"`
	Text       string       `json:"desc"`
	Atk        *int         `json:"atk"` // nil for ? stats and non-monsters
	Def        *int         `json:"def"`
	Attribute  string       `json:"attribute"`
	TypeLine   string       `json:"race"` // Zombie, Warrior, Continuous, ...
	Level      *int         `json:"level"` // also holds XYZ rank
	LinkRating *int         `json:"linkval"`
	LinkArrows []string     `json:"linkmarkers"`
	Printings  []Printing   `json:"card_sets"`
	Banlist    *BanlistInfo `json:"banlist_info"`
}

// Printing is one appearance of a card in a set.
type Printing struct {
	SetName string `json:"set_name"`
	SetCode string `json:"set_code"`
	Rarity  string `json:"set_rarity"`
	Price   string `json:"set_price"` // decimal string from upstream, "0" when unknown
}

// PriceCents parses the upstream decimal price into cents. ok is false when
// the price is missing or zero.
func (p Printing) PriceCents() (int64, bool) {
	s := strings.TrimSpace(p.Price)
	if s == "" {
		return 0, false
	}
	whole, frac, _ := strings.Cut(s, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, false
	}
	cents := n * 100
	if frac != "" {
		if len(frac) > 2 {
			frac = frac[:2]
		}
		for len(frac) < 2 {
			frac += "0"
		}
		f, err := strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return 0, false
		}
		cents += f
	}
	if cents == 0 {
		return 0, false
	}
	return cents, true
}

type BanlistInfo struct {
	BanTCG BanlistStatus `json:"ban_tcg"`
}

// BanlistStatus is the number of copies a deck may run.
type BanlistStatus int

const (
	Banned      BanlistStatus = 0
	Limited     BanlistStatus = 1
	SemiLimited BanlistStatus = 2
	Unlimited   BanlistStatus = 3
)

func (b *BanlistStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Banned":
		*b = Banned
	case "Limited":
		*b = Limited
	case "Semi-Limited":
		*b = SemiLimited
	default:
		*b = Unlimited
	}
	return nil
}

// MarshalJSON writes the upstream string form so stored payloads decode the
// same way the dump does.
func (b BanlistStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b BanlistStatus) String() string {
	switch b {
	case Banned:
		return "Banned"
	case Limited:
		return "Limited"
	case SemiLimited:
		return "Semi-Limited"
	default:
		return "Unlimited"
	}
}

// Copies returns the allowed copy count for a card, Unlimited (3) when it has
// no banlist entry.
func (c *Card) Copies() int {
	if c.Banlist == nil {
		return int(Unlimited)
	}
	return int(c.Banlist.BanTCG)
}

// Set is one entry of sets.json, keyed by name in the set index.
type Set struct {
	Name    string `json:"set_name"`
	TCGDate string `json:"tcg_date"` // ISO date, empty when unknown
}

// Year returns the release year, 0 when unknown.
func (s Set) Year() int {
	if len(s.TCGDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(s.TCGDate[:4])
	if err != nil {
		return 0
	}
	return y
}
