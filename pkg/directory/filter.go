package directory

import (
	"strings"

	"clinichat/pkg/models"
)

// Categorical filters accepted by Visible.
const (
	FilterAll       = "all"
	FilterUnread    = "unread"
	FilterStaff     = models.CategoryStaff
	FilterReception = models.CategoryReception
)

// Visible returns the subset of the directory matching the free-text query
// and the categorical filter. Text match is a case-insensitive substring
// match against name OR role; both predicates are ANDed. Pure function.
func Visible(list []models.Contact, query, filter string) []models.Contact {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.Contact, 0, len(list))
	for _, c := range list {
		if !matchQuery(c, q) {
			continue
		}
		if !matchFilter(c, filter) {
			continue
		}
		out = append(out, c)
	}
	return out
}

func matchQuery(c models.Contact, q string) bool {
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Role), q)
}

func matchFilter(c models.Contact, filter string) bool {
	switch filter {
	case FilterUnread:
		return c.Unread > 0
	case FilterStaff, FilterReception:
		return c.Category == filter
	default:
		// "all" and unknown filters are unconditional
		return true
	}
}
