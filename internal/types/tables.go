package types

import "github.com/noot-app/ingredient-analyzer/internal/reference"

// ReferenceTables is the view of the loaded reference tables
type ReferenceTables struct {
	Allergens []string                  `json:"allergens"`
	Additives []reference.AdditiveEntry `json:"additives"`
}

// FromTables converts reference tables to their view, preserving table order
func FromTables(t *reference.Tables) ReferenceTables {
	return ReferenceTables{
		Allergens: t.Allergens.Names(),
		Additives: t.Additives.Entries(),
	}
}
