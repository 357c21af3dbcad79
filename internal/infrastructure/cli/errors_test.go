package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/sprintlens/pkg/domain"
)

func TestMapError_InvalidArgument(t *testing.T) {
	err := MapError(domain.NewInvalidArgument("dimension", "moon_phase"))

	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected a CLIError, got %T", err)
	}
	if !strings.Contains(cliErr.Hint, "dimension") {
		t.Errorf("expected hint to name the field, got %q", cliErr.Hint)
	}
	if cliErr.ExitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", cliErr.ExitCode)
	}
}

func TestMapError_NoDataSource(t *testing.T) {
	err := MapError(domain.ErrNoDataSource)

	var cliErr *CLIError
	if !errors.As(err, &cliErr) {
		t.Fatalf("expected a CLIError, got %T", err)
	}
	if !strings.Contains(cliErr.Hint, "sprintlens.yaml") {
		t.Errorf("expected hint to mention sprintlens.yaml, got %q", cliErr.Hint)
	}
}

func TestMapError_PassesThroughUnknown(t *testing.T) {
	sentinel := errors.New("boom")
	if got := MapError(sentinel); got != sentinel {
		t.Errorf("expected unmapped error to pass through, got %v", got)
	}
}

func TestMapError_Nil(t *testing.T) {
	if got := MapError(nil); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}
