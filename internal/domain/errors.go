package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrFetchSuperseded marks a fetch whose result was discarded because a
	// newer refresh was issued. It is never shown to the user.
	ErrFetchSuperseded = errors.New("fetch superseded by a newer refresh")
	// ErrSessionClosed is returned when submitting a closed edit session.
	ErrSessionClosed = errors.New("edit session is closed")
	// ErrArchivedReadOnly is returned when opening an archived record for edit.
	ErrArchivedReadOnly = errors.New("archived employees cannot be edited")
)

// ValidationError holds field-scoped messages keyed by json field name.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field returns the message for a field, or "".
func (e *ValidationError) Field(name string) string {
	return e.Fields[name]
}

// NotFoundError is returned when an archive target is missing locally.
type NotFoundError struct {
	ID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("employee %d not found", e.ID)
}

// GatewayError describes a failed CRUD gateway call.
type GatewayError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Message != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return e.Op + ": gateway error"
	}
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// AsGatewayError wraps err into a GatewayError unless it already is one.
func AsGatewayError(op string, err error) error {
	if err == nil {
		return nil
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return err
	}
	return &GatewayError{Op: op, Err: err}
}
