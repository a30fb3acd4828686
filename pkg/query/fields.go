package query

import (
	"fmt"
	"strings"
)

// Kind decides which comparison semantics apply to a field.
type Kind int

const (
	// Numeric fields support the full operator set and compare as integers.
	Numeric Kind = iota
	// Text fields match by case-insensitive substring (or regex) containment.
	Text
	// EnumLike fields match by case-insensitive exact tag equality.
	EnumLike
	// MultiToken fields hold several tokens per card (set codes/names) and
	// match if any of them hits.
	MultiToken
)

func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case EnumLike:
		return "enum"
	case MultiToken:
		return "multi"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// FieldSpec describes one canonical searchable field and its aliases.
// Specs are process-wide constants; the registry never mutates after New.
type FieldSpec struct {
	Name    string
	Aliases []string
	Kind    Kind
}

// Canonical field names. The evaluator switches on these.
const (
	FieldAtk        = "atk"
	FieldDef        = "def"
	FieldLevel      = "level"
	FieldLinkRating = "linkrating"
	FieldType       = "type"
	FieldAttribute  = "attribute"
	FieldText       = "text"
	FieldName       = "name"
	FieldSet        = "set"
	FieldYear       = "year"
	FieldCopies     = "copies"
	FieldPrice      = "price"
)

// defaultSpecs encodes the documented alias groups. "class"/"c" are legacy
// aliases of the merged type field; "legal" is a legacy alias of copies.
var defaultSpecs = []FieldSpec{
	{Name: FieldAtk, Aliases: []string{"atk"}, Kind: Numeric},
	{Name: FieldDef, Aliases: []string{"def"}, Kind: Numeric},
	{Name: FieldLevel, Aliases: []string{"level", "l"}, Kind: Numeric},
	{Name: FieldLinkRating, Aliases: []string{"linkrating", "lr"}, Kind: Numeric},
	{Name: FieldType, Aliases: []string{"type", "t", "class", "c"}, Kind: EnumLike},
	{Name: FieldAttribute, Aliases: []string{"attribute", "attr", "a"}, Kind: EnumLike},
	{Name: FieldText, Aliases: []string{"text", "effect", "eff", "e", "o"}, Kind: Text},
	{Name: FieldName, Aliases: []string{"name"}, Kind: Text},
	{Name: FieldSet, Aliases: []string{"set", "s"}, Kind: MultiToken},
	{Name: FieldYear, Aliases: []string{"year", "y"}, Kind: Numeric},
	{Name: FieldCopies, Aliases: []string{"copies", "legal"}, Kind: Numeric},
	{Name: FieldPrice, Aliases: []string{"price", "p"}, Kind: Numeric},
}

// Registry resolves aliases to field specs, case-insensitively.
type Registry struct {
	byAlias map[string]*FieldSpec
	specs   []FieldSpec
}

// NewRegistry builds the registry from the documented alias table.
func NewRegistry() *Registry {
	return newRegistry(defaultSpecs)
}

func newRegistry(specs []FieldSpec) *Registry {
	r := &Registry{byAlias: make(map[string]*FieldSpec), specs: specs}
	for i := range r.specs {
		spec := &r.specs[i]
		for _, a := range spec.Aliases {
			key := strings.ToLower(a)
			if _, dup := r.byAlias[key]; dup {
				// Alias sets must be disjoint; this is a table bug, not input.
				panic(fmt.Sprintf("query: alias %q maps to two fields", key))
			}
			r.byAlias[key] = spec
		}
	}
	return r
}

// Resolve looks up a field alias. A miss means the token is not a field
// clause at all.
func (r *Registry) Resolve(alias string) (*FieldSpec, bool) {
	spec, ok := r.byAlias[strings.ToLower(alias)]
	return spec, ok
}

// Specs returns the spec table, for help/syntax listings.
func (r *Registry) Specs() []FieldSpec {
	return r.specs
}

// name returns the implicit field used for bare terms.
func (r *Registry) name() *FieldSpec {
	spec, _ := r.Resolve(FieldName)
	return spec
}
