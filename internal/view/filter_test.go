package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

func sampleEmployees() []domain.Employee {
	return []domain.Employee{
		{ID: domain.IntPtr(1), Name: "Alice Nguyen", Department: domain.DepartmentEngineering, Role: "Backend Engineer", JoiningDate: "2021-03-15", Status: domain.StatusActive, PerformanceScore: 90},
		{ID: domain.IntPtr(2), Name: "Bob Tran", Department: domain.DepartmentHR, Role: "Recruiter", JoiningDate: "2019-07-01", Status: domain.StatusOnLeave, PerformanceScore: 10},
		{ID: domain.IntPtr(3), Name: "Carol Le", Department: domain.DepartmentFinance, Role: "Analyst", JoiningDate: "2023-01-10", Status: domain.StatusArchived, PerformanceScore: 55},
		{ID: domain.IntPtr(4), Name: "Dave Pham", Department: domain.DepartmentEngineering, Role: "QA", JoiningDate: "2022-11-30", Status: domain.StatusResigned, PerformanceScore: 70},
		{ID: domain.IntPtr(5), Name: "Eve Vo", Department: domain.DepartmentFinance, Role: "Controller", JoiningDate: "2020-05-05", Status: domain.StatusArchived, PerformanceScore: 65},
		{ID: domain.IntPtr(6), Name: "Frank Do", Department: domain.DepartmentHR, Role: "HR Partner", JoiningDate: "bad-date", Status: domain.StatusInactive, PerformanceScore: 40},
	}
}

func ids(records []domain.Employee) []int {
	out := make([]int, 0, len(records))
	for _, e := range records {
		out = append(out, e.IDValue())
	}
	return out
}

func mustRange(t *testing.T, start, end string) *domain.DateRange {
	t.Helper()
	r, err := domain.NewDateRange(start, end)
	require.NoError(t, err)
	return r
}

func TestFilter(t *testing.T) {
	records := sampleEmployees()

	tests := []struct {
		name     string
		criteria domain.FilterCriteria
		want     []int
	}{
		{"Empty criteria hides archived", domain.FilterCriteria{}, []int{1, 2, 4, 6}},
		{"Archived view only shows archived", domain.FilterCriteria{ShowArchived: true}, []int{3, 5}},
		{"Search is case insensitive on name", domain.FilterCriteria{Search: "ALICE"}, []int{1}},
		{"Search matches department", domain.FilterCriteria{Search: "hr"}, []int{2, 6}},
		{"Search matches role", domain.FilterCriteria{Search: "engineer"}, []int{1, 4}},
		{"Search matches status", domain.FilterCriteria{Search: "leave"}, []int{2}},
		{"Search is not trimmed", domain.FilterCriteria{Search: " tran"}, []int{2}},
		{"Trailing whitespace is significant", domain.FilterCriteria{Search: "tran "}, []int{}},
		{"Department exact", domain.FilterCriteria{Department: domain.DepartmentEngineering}, []int{1, 4}},
		{"Status exact", domain.FilterCriteria{Status: domain.StatusResigned}, []int{4}},
		{"Status archived in active view is empty", domain.FilterCriteria{Status: domain.StatusArchived}, []int{}},
		{"Date range inclusive", domain.FilterCriteria{DateRange: mustRange(t, "2019-07-01", "2021-03-15")}, []int{1, 2}},
		{"Bad dates never match a range", domain.FilterCriteria{DateRange: mustRange(t, "1900-01-01", "2100-01-01")}, []int{1, 2, 4}},
		{"Criteria combine with AND", domain.FilterCriteria{Department: domain.DepartmentFinance, ShowArchived: true, Search: "eve"}, []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Filter(records, tt.criteria)))
		})
	}
}

func TestFilterProperties(t *testing.T) {
	records := sampleEmployees()
	criteria := []domain.FilterCriteria{
		{},
		{ShowArchived: true},
		{Search: "e"},
		{Department: domain.DepartmentHR, Search: "r"},
		{DateRange: mustRange(t, "2020-01-01", "2023-12-31")},
	}

	for _, c := range criteria {
		once := Filter(records, c)
		assert.Equal(t, once, Filter(once, c), "filter must be idempotent")

		// output is an order-preserving subsequence of the input
		pos := 0
		for _, e := range once {
			for pos < len(records) && records[pos].IDValue() != e.IDValue() {
				pos++
			}
			require.Less(t, pos, len(records), "record %d out of order or not in input", e.IDValue())
			pos++
		}

		for _, e := range once {
			assert.Equal(t, c.ShowArchived, e.IsArchived())
		}
	}
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	records := sampleEmployees()
	before := ids(records)
	_ = Filter(records, domain.FilterCriteria{Search: "a"})
	assert.Equal(t, before, ids(records))
}
