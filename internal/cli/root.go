// Package cli exposes the employee directory console as cobra commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/console/internal/bootstrap"
)

// AppFactory builds the application the commands run against. out receives
// rendered views and notifications.
type AppFactory func(ctx context.Context, out io.Writer) (*bootstrap.App, error)

// DefaultAppFactory loads the environment and initializes a full App.
func DefaultAppFactory(ctx context.Context, out io.Writer) (*bootstrap.App, error) {
	app := bootstrap.NewApp(out)
	if err := app.Initialize(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

func NewRootCmd(factory AppFactory) *cobra.Command {
	if factory == nil {
		factory = DefaultAppFactory
	}

	cmd := &cobra.Command{
		Use:           "employee-console",
		Short:         "Browse and maintain the employee directory",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newListCmd(factory))
	cmd.AddCommand(newAddCmd(factory))
	cmd.AddCommand(newEditCmd(factory))
	cmd.AddCommand(newArchiveCmd(factory))
	cmd.AddCommand(newExportCmd(factory))
	return cmd
}

// withApp builds the app for the duration of one command run.
func withApp(factory AppFactory, run func(cmd *cobra.Command, app *bootstrap.App, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := factory(cmd.Context(), cmd.OutOrStdout())
		if err != nil {
			return err
		}
		defer func() {
			if cerr := app.Close(); cerr != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), cerr)
			}
		}()
		return run(cmd, app, args)
	}
}

// refresh loads the record set, which every command needs first.
func refresh(ctx context.Context, app *bootstrap.App) error {
	if err := app.Controller.Refresh(ctx); err != nil {
		return withCode(exitGateway, err)
	}
	return nil
}

func Execute() {
	if err := NewRootCmd(nil).ExecuteContext(context.Background()); err != nil {
		code := ExitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}
