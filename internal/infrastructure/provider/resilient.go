package provider

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/felixgeelhaar/sprintlens/pkg/application"
	"github.com/felixgeelhaar/sprintlens/pkg/domain"
	"github.com/felixgeelhaar/sprintlens/pkg/domain/normalize"
)

const resilientTimeout = 30 * time.Second

// ResilientSource wraps a DataSource with retry and timeout policies, for
// providers that cross the network. File and synthetic providers do not
// need it.
type ResilientSource struct {
	inner application.DataSource
}

// NewResilientSource decorates a source.
func NewResilientSource(inner application.DataSource) *ResilientSource {
	return &ResilientSource{inner: inner}
}

func (r *ResilientSource) FetchSprint(ctx context.Context, sprintID string) (*normalize.SprintPayload, error) {
	return execute(ctx, func(ctx context.Context) (*normalize.SprintPayload, error) {
		return r.inner.FetchSprint(ctx, sprintID)
	})
}

func (r *ResilientSource) FetchSprintHistory(ctx context.Context, projectID string, limit int) ([]domain.SprintSummary, error) {
	return execute(ctx, func(ctx context.Context) ([]domain.SprintSummary, error) {
		return r.inner.FetchSprintHistory(ctx, projectID, limit)
	})
}

func (r *ResilientSource) FetchWorkItems(ctx context.Context, projectID string) ([]map[string]any, error) {
	return execute(ctx, func(ctx context.Context) ([]map[string]any, error) {
		return r.inner.FetchWorkItems(ctx, projectID)
	})
}

// execute runs fn under a bounded timeout with exponential-backoff
// retries inside it.
func execute[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	r := retry.New[T](retry.Config{
		MaxAttempts:   3,
		InitialDelay:  500 * time.Millisecond,
		BackoffPolicy: retry.BackoffExponential,
	})
	t := timeout.New[T](timeout.Config{
		DefaultTimeout: resilientTimeout,
	})

	return t.Execute(ctx, resilientTimeout, func(ctx context.Context) (T, error) {
		return r.Do(ctx, fn)
	})
}
