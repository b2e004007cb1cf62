package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/console/internal/controller"
	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/view"
)

type filterOptions struct {
	search     string
	department string
	status     string
	from       string
	to         string
	archived   bool
	sort       string
}

func (o *filterOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.search, "search", "s", "", "Search name, role or department")
	cmd.Flags().StringVar(&o.department, "department", "", "Only this department (Engineering|HR|Finance)")
	cmd.Flags().StringVar(&o.status, "status", "", "Only this status")
	cmd.Flags().StringVar(&o.from, "from", "", "Joined on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.to, "to", "", "Joined on or before (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&o.archived, "archived", false, "Show archived employees instead of the active ones")
	cmd.Flags().StringVar(&o.sort, "sort", "", "Sort as column[:ascend|descend], or none; the choice is remembered")
}

func parseDepartment(s string) (domain.Department, error) {
	for _, d := range domain.Departments {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown department %q", s)
}

func parseStatus(s string) (domain.Status, error) {
	all := []domain.Status{domain.StatusActive, domain.StatusOnLeave, domain.StatusResigned, domain.StatusArchived, domain.StatusInactive}
	for _, st := range all {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// parseSort reads "column[:order]". "none" clears the sort.
func parseSort(s string) (domain.SortPreference, error) {
	if s == "" || strings.EqualFold(s, "none") {
		return domain.SortPreference{}, nil
	}
	column, order, _ := strings.Cut(s, ":")
	if !view.IsSortableColumn(column) {
		return domain.SortPreference{}, fmt.Errorf("column %q is not sortable", column)
	}
	pref := domain.SortPreference{ColumnKey: column, Order: domain.SortAscend}
	switch strings.ToLower(order) {
	case "", "asc", "ascend":
	case "desc", "descend":
		pref.Order = domain.SortDescend
	default:
		return domain.SortPreference{}, fmt.Errorf("unknown sort order %q", order)
	}
	return pref, nil
}

// apply pushes the flags into the controller. The search term bypasses the
// debounce since there is no typing to wait for.
func (o *filterOptions) apply(ctx context.Context, cmd *cobra.Command, ctrl *controller.CollectionController) error {
	if o.search != "" {
		ctrl.SetSearchTerm(o.search)
		ctrl.FlushSearch()
	}
	if o.department != "" {
		d, err := parseDepartment(o.department)
		if err != nil {
			return withCode(exitUsage, err)
		}
		ctrl.SetDepartment(d)
	}
	if o.status != "" {
		st, err := parseStatus(o.status)
		if err != nil {
			return withCode(exitUsage, err)
		}
		ctrl.SetStatus(st)
	}
	if o.from != "" || o.to != "" {
		if o.from == "" || o.to == "" {
			return withCode(exitUsage, fmt.Errorf("--from and --to must be given together"))
		}
		r, err := domain.NewDateRange(o.from, o.to)
		if err != nil {
			return withCode(exitUsage, err)
		}
		ctrl.SetDateRange(r)
	}
	ctrl.SetShowArchived(o.archived)

	if cmd.Flags().Changed("sort") {
		pref, err := parseSort(o.sort)
		if err != nil {
			return withCode(exitUsage, err)
		}
		ctrl.SetSort(ctx, pref)
	}
	return nil
}
