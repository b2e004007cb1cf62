package domain

import "time"

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange parses two ISO dates into a range.
func NewDateRange(start, end string) (*DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return nil, err
	}
	return &DateRange{Start: s, End: e}, nil
}

// Contains reports whether the calendar date t lies within the range.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// FilterCriteria narrows the visible subset of the record set.
// Zero values mean "no restriction", except ShowArchived which
// switches between the active and the archived view.
type FilterCriteria struct {
	Search       string
	Department   Department
	Status       Status
	DateRange    *DateRange
	ShowArchived bool
}

type SortOrder string

const (
	SortAscend  SortOrder = "ascend"
	SortDescend SortOrder = "descend"
)

// Sortable column keys.
const (
	ColumnName             = "name"
	ColumnDepartment       = "department"
	ColumnRole             = "role"
	ColumnJoiningDate      = "joiningDate"
	ColumnStatus           = "status"
	ColumnPerformanceScore = "performanceScore"
)

// SortPreference is the persisted table sort descriptor.
type SortPreference struct {
	ColumnKey string    `json:"columnKey,omitempty"`
	Order     SortOrder `json:"order,omitempty"`
}

// Active reports whether the descriptor actually orders anything.
func (p SortPreference) Active() bool {
	return p.ColumnKey != "" && (p.Order == SortAscend || p.Order == SortDescend)
}

type ViewMode string

const (
	ViewModeTable ViewMode = "table"
	ViewModeCard  ViewMode = "card"
)

// DefaultPageSize and PageSizeOptions mirror the pagination control.
const DefaultPageSize = 5

var PageSizeOptions = []int{5, 10, 20, 50}
