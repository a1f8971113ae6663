package models

// Category splits entrants into independent brackets.
type Category string

const (
	CategoryMen   Category = "M"
	CategoryWomen Category = "F"
)

// Categories returns every category in bracket order.
func Categories() []Category {
	return []Category{CategoryMen, CategoryWomen}
}

func (c Category) IsValid() bool {
	switch c {
	case CategoryMen, CategoryWomen:
		return true
	default:
		return false
	}
}

// Entrant is a tournament player. ID is stable across edits; Name is not part of identity.
type Entrant struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
}

// EntrantsByCategory returns entrants of the given category, preserving order.
func EntrantsByCategory(entrants []Entrant, category Category) []Entrant {
	filtered := make([]Entrant, 0, len(entrants))
	for _, e := range entrants {
		if e.Category == category {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
