package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/locvowork/employee_management_sample/console/internal/bootstrap"
)

func newArchiveCmd(factory AppFactory) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive <id>",
		Short: "Move an employee to the archived view",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(factory, func(cmd *cobra.Command, app *bootstrap.App, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return withCode(exitUsage, fmt.Errorf("invalid id %q", args[0]))
			}
			if err := refresh(cmd.Context(), app); err != nil {
				return err
			}
			return app.Controller.Archive(cmd.Context(), id)
		}),
	}
	return cmd
}
