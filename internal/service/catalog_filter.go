package service

import (
	"sort"
	"strings"

	"github.com/noah-isme/discipulus-api/internal/models"
)

// VisibleSubjects returns the subject names offered for a category. The
// "Todas" category and an empty category show every subject.
func VisibleSubjects(subjects []models.Subject, category string) []string {
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		if category == "" || category == models.CategoryAll || s.Category == category {
			out = append(out, s.Name)
		}
	}
	return out
}

// NormalizeSelection keeps only selected subjects that are visible,
// preserving the selection order and dropping duplicates.
func NormalizeSelection(selected, visible []string) []string {
	allowed := make(map[string]struct{}, len(visible))
	for _, v := range visible {
		allowed[v] = struct{}{}
	}
	seen := make(map[string]struct{}, len(selected))
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		s = strings.TrimSpace(s)
		if _, ok := allowed[s]; !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// FilterTeachers applies the text query, the subject selection and the sort
// key. The input slice is never modified.
func FilterTeachers(teachers []models.Teacher, search string, selected []string, sortBy string) []models.Teacher {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]models.Teacher, 0, len(teachers))
	for _, t := range teachers {
		if !matchesSearch(t, needle) || !matchesSelection(t, selected) {
			continue
		}
		out = append(out, t)
	}

	switch sortBy {
	case models.SortByRating:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case models.SortByPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourlyRate < out[j].HourlyRate })
	case models.SortByPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].HourlyRate > out[j].HourlyRate })
	case models.SortByReviews:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ReviewCount > out[j].ReviewCount })
	}
	return out
}

func matchesSearch(t models.Teacher, needle string) bool {
	if needle == "" {
		return true
	}
	if strings.Contains(strings.ToLower(t.Name), needle) {
		return true
	}
	for _, s := range t.Subjects {
		if strings.Contains(strings.ToLower(s), needle) {
			return true
		}
	}
	return false
}

func matchesSelection(t models.Teacher, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if t.HasSubject(s) {
			return true
		}
	}
	return false
}
