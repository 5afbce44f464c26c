package dto

import "github.com/noah-isme/discipulus-api/internal/models"

// TeacherListMeta describes how a catalog listing was computed.
type TeacherListMeta struct {
	Count            int      `json:"count"`
	Category         string   `json:"category"`
	VisibleSubjects  []string `json:"visible_subjects"`
	SelectedSubjects []string `json:"selected_subjects"`
	SortBy           string   `json:"sort_by,omitempty"`
	CacheHit         bool     `json:"cache_hit"`
}

// TeacherListResult is the filtered catalog plus its metadata.
type TeacherListResult struct {
	Teachers []models.Teacher `json:"teachers"`
	Meta     TeacherListMeta  `json:"meta"`
}

// CatalogSnapshot is the cached source table.
type CatalogSnapshot struct {
	Teachers []models.Teacher `json:"teachers"`
	Subjects []models.Subject `json:"subjects"`
}
