package di

import (
	"context"
	"fmt"
)

// MustResolve looks up and gets a bean in one step, panics on error.
// Use this in wiring code where a missing bean is a programming error.
//
// Example:
//
//	repo := di.MustResolve[Repository](ctx, m, di.Key("repository"))
func MustResolve[R any](ctx context.Context, m *Manager, name Name) R {
	r, err := Resolve[R](ctx, m, name)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", name, err))
	}
	return r
}

// Resolve looks up and gets a bean in one step. Prefer Lookup when the
// reference is kept, so that replacements stay visible.
//
// Example:
//
//	repo, err := di.Resolve[Repository](ctx, m, di.Key("repository"))
//	if err != nil {
//	    return fmt.Errorf("failed to get repository: %w", err)
//	}
func Resolve[R any](ctx context.Context, m *Manager, name Name) (R, error) {
	a, err := Lookup[R](ctx, m, name)
	if err != nil {
		var zero R
		return zero, err
	}
	return a.Get(ctx)
}

// TryResolve resolves a bean, returns the zero value and false on any
// failure. Use this when a dependency is optional.
//
// Example:
//
//	if metrics, ok := di.TryResolve[MetricsClient](ctx, m, di.Key("metrics")); ok {
//	    metrics.RecordEvent(...)
//	}
func TryResolve[R any](ctx context.Context, m *Manager, name Name) (R, bool) {
	r, err := Resolve[R](ctx, m, name)
	return r, err == nil
}
