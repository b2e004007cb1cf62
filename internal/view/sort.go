package view

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

// Page is one window of the filtered, ordered record set.
type Page struct {
	Items    []domain.Employee
	Total    int
	Page     int
	PageSize int
}

type compareFunc func(a, b domain.Employee) int

// comparators returns the column comparators. String columns use a
// collator so that ordering follows the user's locale rather than byte order.
func comparators() map[string]compareFunc {
	col := collate.New(language.English)
	str := func(get func(domain.Employee) string) compareFunc {
		return func(a, b domain.Employee) int {
			return col.CompareString(get(a), get(b))
		}
	}
	return map[string]compareFunc{
		domain.ColumnName:       str(func(e domain.Employee) string { return e.Name }),
		domain.ColumnDepartment: str(func(e domain.Employee) string { return string(e.Department) }),
		domain.ColumnRole:       str(func(e domain.Employee) string { return e.Role }),
		domain.ColumnStatus:     str(func(e domain.Employee) string { return string(e.Status) }),
		domain.ColumnJoiningDate: func(a, b domain.Employee) int {
			// unparseable dates compare as the zero time and sort first
			da, _ := domain.ParseDate(a.JoiningDate)
			db, _ := domain.ParseDate(b.JoiningDate)
			return da.Compare(db)
		},
		domain.ColumnPerformanceScore: func(a, b domain.Employee) int {
			return a.PerformanceScore - b.PerformanceScore
		},
	}
}

// IsSortableColumn reports whether key names a sortable column.
func IsSortableColumn(key string) bool {
	_, ok := comparators()[key]
	return ok
}

// Sort returns a stably ordered copy of records. An inactive or unknown
// descriptor leaves the input order unchanged.
func Sort(records []domain.Employee, pref domain.SortPreference) []domain.Employee {
	out := make([]domain.Employee, len(records))
	copy(out, records)
	if !pref.Active() {
		return out
	}
	cmp, ok := comparators()[pref.ColumnKey]
	if !ok {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		if pref.Order == domain.SortDescend {
			return cmp(out[j], out[i]) < 0
		}
		return cmp(out[i], out[j]) < 0
	})
	return out
}

// LastPage returns the last valid 1-based page for total items.
func LastPage(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, LastPage(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := LastPage(total, pageSize); page > last {
		return last
	}
	return page
}

// Paginate windows records. Total is always len(records).
func Paginate(records []domain.Employee, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	page = ClampPage(page, len(records), pageSize)

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(records) {
		start = len(records)
	}
	if end > len(records) {
		end = len(records)
	}

	items := make([]domain.Employee, end-start)
	copy(items, records[start:end])
	return Page{
		Items:    items,
		Total:    len(records),
		Page:     page,
		PageSize: pageSize,
	}
}

// Apply runs the full pipeline: filter, sort, paginate.
func Apply(records []domain.Employee, c domain.FilterCriteria, pref domain.SortPreference, page, pageSize int) Page {
	return Paginate(Sort(Filter(records, c), pref), page, pageSize)
}
