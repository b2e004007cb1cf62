package domain

import (
	"fmt"
	"time"
)

// DateLayout is the wire format of Employee.JoiningDate.
const DateLayout = "2006-01-02"

// ==================== EMPLOYEE ====================

type Department string

const (
	DepartmentEngineering Department = "Engineering"
	DepartmentHR          Department = "HR"
	DepartmentFinance     Department = "Finance"
)

// Departments lists the closed set offered by the edit form and the filters.
var Departments = []Department{DepartmentEngineering, DepartmentHR, DepartmentFinance}

type Status string

const (
	StatusActive   Status = "Active"
	StatusOnLeave  Status = "On Leave"
	StatusResigned Status = "Resigned"
	StatusArchived Status = "Archived"
	StatusInactive Status = "Inactive"
)

// FormStatuses are the statuses an edit session may assign.
// Archived is reserved for the archive action.
var FormStatuses = []Status{StatusActive, StatusOnLeave, StatusResigned}

// Employee represents a record of the remote /employees resource
type Employee struct {
	ID               *int       `json:"id,omitempty"`
	Name             string     `json:"name"`
	Department       Department `json:"department"`
	Role             string     `json:"role"`
	JoiningDate      string     `json:"joiningDate"`
	Status           Status     `json:"status"`
	PerformanceScore int        `json:"performanceScore"`
}

// HasID reports whether the record has been persisted.
func (e Employee) HasID() bool {
	return e.ID != nil
}

// IDValue returns the id or 0 for unsaved records.
func (e Employee) IDValue() int {
	if e.ID == nil {
		return 0
	}
	return *e.ID
}

// IsArchived reports whether the record was soft-deleted.
func (e Employee) IsArchived() bool {
	return e.Status == StatusArchived
}

// Clone returns a copy that shares no pointers with e.
func (e Employee) Clone() Employee {
	if e.ID != nil {
		id := *e.ID
		e.ID = &id
	}
	return e
}

// IntPtr is a small helper for building records with ids.
func IntPtr(v int) *int {
	return &v
}

// ParseDate parses an ISO calendar date into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}

// FormatDate renders the calendar date of t in ISO form.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ==================== PRESENTATION HINTS ====================

// ScoreBand classifies a performance score for progress rendering.
func ScoreBand(score int) string {
	switch {
	case score >= 80:
		return "success"
	case score >= 60:
		return "normal"
	default:
		return "exception"
	}
}

// StatusColor returns the tag colour used for a status.
func StatusColor(s Status) string {
	switch s {
	case StatusActive:
		return "green"
	case StatusOnLeave:
		return "orange"
	case StatusArchived:
		return "default"
	case StatusInactive:
		return "gray"
	default:
		return "red"
	}
}
