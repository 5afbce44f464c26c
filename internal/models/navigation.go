package models

// Route is a client navigation entry.
type Route struct {
	Path  string `json:"path"`
	Name  string `json:"name"`
	Label string `json:"label"`
}
