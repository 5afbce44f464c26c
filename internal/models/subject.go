package models

// Subject is a catalog subject grouped by category.
type Subject struct {
	ID       string `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Category string `db:"category" json:"category"`
	Icon     string `db:"icon" json:"icon"`
}

// Subject categories.
const (
	CategoryAll      = "Todas"
	CategoryExact    = "Exatas"
	CategoryHumanity = "Humanas"
	CategoryBusiness = "Negócios"
)

// Categories lists the category filter options in display order.
var Categories = []string{CategoryAll, CategoryExact, CategoryHumanity, CategoryBusiness}

// IsCategory reports whether name is a known category.
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
