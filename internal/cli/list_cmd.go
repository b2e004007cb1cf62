package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/console/internal/bootstrap"
	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

type listOptions struct {
	filters  filterOptions
	page     int
	pageSize int
	view     string
}

func newListCmd(factory AppFactory) *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show a page of employees",
		RunE: withApp(factory, func(cmd *cobra.Command, app *bootstrap.App, _ []string) error {
			return runList(cmd, app, opts)
		}),
	}

	opts.filters.bind(cmd)
	cmd.Flags().IntVarP(&opts.page, "page", "p", 1, "Page number")
	cmd.Flags().IntVar(&opts.pageSize, "page-size", 0, "Rows per page (5|10|20|50)")
	cmd.Flags().StringVar(&opts.view, "view", string(domain.ViewModeTable), "Layout (table|card)")
	return cmd
}

func validPageSize(n int) bool {
	for _, opt := range domain.PageSizeOptions {
		if opt == n {
			return true
		}
	}
	return false
}

func runList(cmd *cobra.Command, app *bootstrap.App, opts listOptions) error {
	ctx := cmd.Context()

	mode := domain.ViewMode(strings.ToLower(opts.view))
	if mode != domain.ViewModeTable && mode != domain.ViewModeCard {
		return withCode(exitUsage, fmt.Errorf("unknown view %q", opts.view))
	}
	if opts.pageSize != 0 && !validPageSize(opts.pageSize) {
		return withCode(exitUsage, fmt.Errorf("page size must be one of %v", domain.PageSizeOptions))
	}

	if err := refresh(ctx, app); err != nil {
		return err
	}

	ctrl := app.Controller
	if err := opts.filters.apply(ctx, cmd, ctrl); err != nil {
		return err
	}
	ctrl.SetViewMode(mode)
	ctrl.SetPagination(opts.page, opts.pageSize)

	RenderView(app.Out, ctrl.View())
	return nil
}
