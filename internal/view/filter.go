// Package view holds the pure stages of the employee list pipeline:
// filtering, ordering and windowing of an in-memory record set.
package view

import (
	"strings"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

// Filter returns the records matching every criterion, preserving input order.
func Filter(records []domain.Employee, c domain.FilterCriteria) []domain.Employee {
	out := make([]domain.Employee, 0, len(records))
	for _, e := range records {
		if matches(e, c) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e domain.Employee, c domain.FilterCriteria) bool {
	return matchesSearch(e, c.Search) &&
		(c.Department == "" || e.Department == c.Department) &&
		(c.Status == "" || e.Status == c.Status) &&
		matchesDateRange(e, c.DateRange) &&
		matchesArchive(e, c.ShowArchived)
}

// matchesSearch does a case-insensitive substring match. The term is not trimmed.
func matchesSearch(e domain.Employee, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, field := range []string{e.Name, string(e.Department), e.Role, string(e.Status)} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// Unparseable joining dates never match a set range.
func matchesDateRange(e domain.Employee, r *domain.DateRange) bool {
	if r == nil {
		return true
	}
	d, err := domain.ParseDate(e.JoiningDate)
	if err != nil {
		return false
	}
	return r.Contains(d)
}

func matchesArchive(e domain.Employee, showArchived bool) bool {
	return e.IsArchived() == showArchived
}
