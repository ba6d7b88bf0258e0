package guest

import "strings"

// Search returns every guest whose name contains query, ignoring case and
// accents, sorted by name. An empty query means no search is active and
// yields no guests.
func Search(l List, query string) List {
	return DefaultCollation.Search(l, query)
}

// Search is Search with names ordered by c.
func (c Collation) Search(l List, query string) List {
	if query == "" {
		return List{}
	}
	q := Normalize(query)
	out := List{}
	for _, g := range l {
		if strings.Contains(Normalize(g.Name), q) {
			out = append(out, g)
		}
	}
	c.sortByName(out)
	return out
}
