package domain

import (
	"errors"
	"fmt"
)

// ErrNoDataSource indicates no provider is configured. Service operations
// resolve it by returning an empty ChartResponse with a message, so callers
// only see it when they bypass the service layer.
var ErrNoDataSource = errors.New("no data source configured")

// ErrEmptyInput indicates a calculator received no qualifying items.
// Calculators resolve it internally by returning zeroed results; it exists
// for collaborators that need to distinguish "empty" from "failed".
var ErrEmptyInput = errors.New("no qualifying items")

// InvalidArgumentError reports a structurally invalid request, such as an
// unknown distribution dimension or scope type. These are the only data
// conditions surfaced to callers as errors.
type InvalidArgumentError struct {
	Field string
	Value string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// NewInvalidArgument creates an InvalidArgumentError for a request field.
func NewInvalidArgument(field, value string) *InvalidArgumentError {
	return &InvalidArgumentError{Field: field, Value: value}
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// MalformedItemError reports a single raw item that failed normalization.
// Batch normalization skips the item and records the error instead of
// aborting.
type MalformedItemError struct {
	ItemID string
	Reason string
}

func (e *MalformedItemError) Error() string {
	if e.ItemID == "" {
		return fmt.Sprintf("malformed item: %s", e.Reason)
	}
	return fmt.Sprintf("malformed item %s: %s", e.ItemID, e.Reason)
}
