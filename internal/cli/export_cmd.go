package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/console/internal/bootstrap"
	"github.com/locvowork/employee_management_sample/console/internal/report"
	"github.com/locvowork/employee_management_sample/console/pkg/simpleexcel"
)

type exportOptions struct {
	filters  filterOptions
	output   string
	format   string
	template string
	stream   bool
}

func newExportCmd(factory AppFactory) *cobra.Command {
	var opts exportOptions

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every employee matching the filters to a spreadsheet",
		RunE: withApp(factory, func(cmd *cobra.Command, app *bootstrap.App, _ []string) error {
			return runExport(cmd, app, opts)
		}),
	}

	opts.filters.bind(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (required)")
	cmd.Flags().StringVar(&opts.format, "format", "", "xlsx or csv; defaults to the output extension")
	cmd.Flags().StringVar(&opts.template, "template", "", "YAML report layout; defaults to the built-in one")
	cmd.Flags().BoolVar(&opts.stream, "stream", false, "Stream xlsx rows in batches, for very large directories")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func exportFormat(opts exportOptions) (string, error) {
	format := strings.ToLower(opts.format)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), ".")
	}
	switch format {
	case "xlsx", "csv":
		return format, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (expected xlsx|csv)", format)
	}
}

func runExport(cmd *cobra.Command, app *bootstrap.App, opts exportOptions) error {
	ctx := cmd.Context()

	format, err := exportFormat(opts)
	if err != nil {
		return withCode(exitUsage, err)
	}
	template := ""
	if opts.template != "" {
		raw, err := os.ReadFile(opts.template)
		if err != nil {
			return withCode(exitUsage, fmt.Errorf("read template: %w", err))
		}
		template = string(raw)
	}

	if err := refresh(ctx, app); err != nil {
		return err
	}
	if err := opts.filters.apply(ctx, cmd, app.Controller); err != nil {
		return err
	}

	employees := app.Controller.Visible()
	switch {
	case opts.stream && format == "xlsx":
		err = writeFile(opts.output, func(w io.Writer) error {
			return report.Stream(w, employees, template)
		})
	case format == "csv":
		err = writeFile(opts.output, func(w io.Writer) error {
			exporter, err := report.Build(employees, template)
			if err != nil {
				return err
			}
			return exporter.ToCSV(w)
		})
	default:
		var exporter *simpleexcel.DataExporter
		if exporter, err = report.Build(employees, template); err == nil {
			err = exporter.ExportToExcel(ctx, opts.output)
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(app.Out, "Exported %d employees to %s\n", len(employees), opts.output)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
