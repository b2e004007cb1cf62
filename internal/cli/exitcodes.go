package cli

import (
	"errors"

	"github.com/locvowork/employee_management_sample/console/internal/domain"
)

type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string {
	return e.err.Error()
}

func (e *cliError) Unwrap() error {
	return e.err
}

const (
	exitOK         = 0
	exitFailure    = 1
	exitValidation = 2
	exitUsage      = 3
	exitGateway    = 4
)

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &cliError{code: code, err: err}
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return exitValidation
	}
	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		return exitGateway
	}
	return exitFailure
}
