package cli

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var argErr *domain.InvalidArgumentError
	if errors.As(err, &argErr) {
		return NewCLIError(
			argErr.Error(),
			fmt.Sprintf("Check the '%s' argument — run with --help for accepted values", argErr.Field),
			err,
		)
	}

	var itemErr *domain.MalformedItemError
	if errors.As(err, &itemErr) {
		return NewCLIError(
			itemErr.Error(),
			"Fix the payload data for this item, or remove it from the export",
			err,
		)
	}

	switch {
	case errors.Is(err, domain.ErrNoDataSource):
		return NewCLIError("no data source configured", "Add a provider to sprintlens.yaml or set provider: synthetic to try the tool", err)
	case errors.Is(err, domain.ErrEmptyInput):
		return NewCLIError("no data to analyze", "The provider returned nothing — check the project or sprint ID", err)
	}

	return err
}
