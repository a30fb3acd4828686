package cards

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// cardInfo is the wrapper object of the upstream dump.
type cardInfo struct {
	Data []Card `json:"data"`
}

// LoadCards reads a cards.json dump.
func LoadCards(path string) ([]Card, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info cardInfo
	if err := json.Unmarshal(b, &info); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return info.Data, nil
}

// LoadSets reads sets.json and indexes the sets by lower-cased name.
func LoadSets(path string) (map[string]Set, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var list []Set
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	out := make(map[string]Set, len(list))
	for _, s := range list {
		out[strings.ToLower(s.Name)] = s
	}
	return out, nil
}

// SortPrintings orders every card's printings by release date, oldest first.
// Unknown dates sort last. ISO dates compare correctly as strings.
func SortPrintings(list []Card, sets map[string]Set) {
	dateOf := func(p Printing) string {
		if s, ok := sets[strings.ToLower(p.SetName)]; ok && s.TCGDate != "" {
			return s.TCGDate
		}
		return "9999-99-99"
	}
	for i := range list {
		prs := list[i].Printings
		sort.SliceStable(prs, func(a, b int) bool {
			return dateOf(prs[a]) < dateOf(prs[b])
		})
	}
}
