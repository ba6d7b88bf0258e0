package guest

import (
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Collation orders guest names for display using the rules of one language.
// The zero value sorts with Spanish rules.
type Collation struct {
	tag language.Tag
}

// DefaultCollation is used by the package-level Search and GroupByTable.
var DefaultCollation = Collation{tag: language.Spanish}

// NewCollation returns the collation for a BCP 47 locale such as "es" or
// "es-PE". Unparseable locales fall back to Spanish.
func NewCollation(locale string) Collation {
	tag, err := language.Parse(locale)
	if err != nil || tag == language.Und {
		return DefaultCollation
	}
	return Collation{tag: tag}
}

// Locale returns the language the collation sorts by.
func (c Collation) Locale() string {
	return c.tagOrDefault().String()
}

func (c Collation) tagOrDefault() language.Tag {
	if c.tag == language.Und {
		return language.Spanish
	}
	return c.tag
}

// sortByName sorts gs in place by name. Collators keep internal buffers, so a
// fresh one is built per call.
func (c Collation) sortByName(gs []Guest) {
	col := collate.New(c.tagOrDefault())
	slices.SortStableFunc(gs, func(a, b Guest) int {
		return col.CompareString(a.Name, b.Name)
	})
}
