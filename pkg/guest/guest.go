// Package guest holds the seating chart: the guest list, name search,
// the per-table view, and the comma-separated import/export format.
package guest

// Guest is one seat assignment.
type Guest struct {
	Name  string `json:"name" yaml:"name"`
	Table string `json:"table" yaml:"table"`
}

// List is an ordered guest list. It is replaced wholesale, never edited in place.
type List []Guest

// Clone returns a copy of l that shares no backing array with it.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Default returns the list shipped with the tool.
func Default() List {
	return List{
		{Name: "Carolina Barrios", Table: "1"},
		{Name: "Luis Rodríguez", Table: "1"},
		{Name: "Rafael Rodríguez", Table: "2"},
		{Name: "María Fernanda", Table: "2"},
		{Name: "Javier Ugarte", Table: "3"},
		{Name: "Ana Lucía", Table: "3"},
		{Name: "Marcelo Wong", Table: "4"},
		{Name: "Sofía Pérez", Table: "4"},
		{Name: "Rodrigo Silva", Table: "5"},
		{Name: "Valeria Torres", Table: "5"},
		{Name: "Cecilia González", Table: "6"},
		{Name: "Tomás Herrera", Table: "6"},
	}
}
