package cli

import (
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/console/internal/bootstrap"
	"github.com/locvowork/employee_management_sample/console/internal/domain"
	"github.com/locvowork/employee_management_sample/console/internal/session"
)

type formOptions struct {
	name        string
	department  string
	role        string
	joiningDate string
	status      string
	score       int
	keepOpen    bool
}

func (o *formOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.name, "name", "", "Full name")
	cmd.Flags().StringVar(&o.department, "department", "", "Department (Engineering|HR|Finance)")
	cmd.Flags().StringVar(&o.role, "role", "", "Role")
	cmd.Flags().StringVar(&o.joiningDate, "joining-date", "", "Joining date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&o.status, "status", "", "Status (Active|On Leave|Resigned)")
	cmd.Flags().IntVar(&o.score, "score", session.DefaultPerformanceScore, "Performance score (1-100)")
	cmd.Flags().BoolVar(&o.keepOpen, "keep-open", false, "Keep editing the saved record and print it")
}

// merge overwrites the form fields whose flags were given.
func (o *formOptions) merge(cmd *cobra.Command, form session.FormValues) (session.FormValues, error) {
	flags := cmd.Flags()
	if flags.Changed("name") {
		form.Name = o.name
	}
	if flags.Changed("department") {
		form.Department = o.department
	}
	if flags.Changed("role") {
		form.Role = o.role
	}
	if flags.Changed("status") {
		form.Status = o.status
	}
	if flags.Changed("joining-date") {
		if o.joiningDate == "" {
			form.JoiningDate = nil
		} else {
			t, err := domain.ParseDate(o.joiningDate)
			if err != nil {
				return form, withCode(exitUsage, err)
			}
			form.JoiningDate = &t
		}
	}
	if flags.Changed("score") {
		score := o.score
		form.PerformanceScore = &score
	}
	return form, nil
}

func newAddCmd(factory AppFactory) *cobra.Command {
	var opts formOptions

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an employee",
		RunE: withApp(factory, func(cmd *cobra.Command, app *bootstrap.App, _ []string) error {
			if err := app.Session.Open(nil); err != nil {
				return err
			}
			defer app.Session.Cancel()

			score := opts.score
			form := session.FormValues{Status: string(domain.StatusActive), PerformanceScore: &score}
			return submitForm(cmd, app, &opts, form)
		}),
	}
	opts.bind(cmd)
	return cmd
}

func newEditCmd(factory AppFactory) *cobra.Command {
	var opts formOptions

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an employee; unspecified fields keep their value",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(factory, func(cmd *cobra.Command, app *bootstrap.App, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid id %q", args[0]))
			}
			if err := refresh(cmd.Context(), app); err != nil {
				return err
			}

			record, ok := findRecord(app.Controller.Records(), id)
			if !ok {
				return withCode(exitUsage, &domain.NotFoundError{ID: id})
			}
			if err := app.Session.Open(&record); err != nil {
				return withCode(exitUsage, err)
			}
			defer app.Session.Cancel()

			return submitForm(cmd, app, &opts, app.Session.Form())
		}),
	}
	opts.bind(cmd)
	return cmd
}

func findRecord(records []domain.Employee, id int) (domain.Employee, bool) {
	for _, e := range records {
		if e.IDValue() == id {
			return e, true
		}
	}
	return domain.Employee{}, false
}

func submitForm(cmd *cobra.Command, app *bootstrap.App, opts *formOptions, form session.FormValues) error {
	form, err := opts.merge(cmd, form)
	if err != nil {
		return err
	}
	if err := app.Session.SetForm(form); err != nil {
		return err
	}

	saved, err := app.Session.Submit(cmd.Context(), opts.keepOpen)
	if err != nil {
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			printFieldErrors(cmd, ve)
		}
		return err
	}

	if opts.keepOpen {
		fmt.Fprintf(app.Out, "Editing #%d (%s)\n", saved.IDValue(), app.Session.State())
		renderCards(app.Out, []domain.Employee{saved})
	}
	return nil
}

func printFieldErrors(cmd *cobra.Command, ve *domain.ValidationError) {
	fields := make([]string, 0, len(ve.Fields))
	for f := range ve.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f, ve.Fields[f])
	}
}
