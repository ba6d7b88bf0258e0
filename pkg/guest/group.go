package guest

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Group is one table of the seating chart.
type Group struct {
	Table  string `json:"table"`
	Guests List   `json:"guests"`
}

// GroupByTable partitions l by exact table identifier. Numeric tables come
// first in ascending numeric order; tables that do not parse as a finite
// number follow in byte order. Guests within a table are sorted by name.
func GroupByTable(l List) []Group {
	return DefaultCollation.GroupByTable(l)
}

// GroupByTable is GroupByTable with names ordered by c.
func (c Collation) GroupByTable(l List) []Group {
	byTable := make(map[string]List)
	var tables []string
	for _, g := range l {
		if _, ok := byTable[g.Table]; !ok {
			tables = append(tables, g.Table)
		}
		byTable[g.Table] = append(byTable[g.Table], g)
	}

	slices.SortFunc(tables, compareTables)

	groups := make([]Group, 0, len(tables))
	for _, t := range tables {
		members := byTable[t]
		c.sortByName(members)
		groups = append(groups, Group{Table: t, Guests: members})
	}
	return groups
}

// compareTables orders numeric identifiers before non-numeric ones. Ties
// between equal numbers ("2" and "02") and between non-numeric identifiers
// are broken by byte order so the result is always deterministic.
func compareTables(a, b string) int {
	na, okA := tableNumber(a)
	nb, okB := tableNumber(b)
	switch {
	case okA && okB:
		if na < nb {
			return -1
		}
		if na > nb {
			return 1
		}
	case okA:
		return -1
	case okB:
		return 1
	}
	return strings.Compare(a, b)
}

func tableNumber(t string) (float64, bool) {
	s := strings.TrimSpace(t)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
