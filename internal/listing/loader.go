// Package listing loads a full backend collection for a list page.
package listing

import (
	"context"
	"net/http"
	"sync"

	"libadmin/internal/api"
	"libadmin/internal/page"
)

// Loader fetches one collection and keeps the last result.
//
// There is no paging, filtering or caching: each Load requests the full list
// and replaces whatever was held before, in the order the backend returned.
type Loader[T any] struct {
	caller *api.Caller
	scope  *page.Scope
	path   string
	label  string

	mu      sync.Mutex
	records []T
}

// NewLoader creates a loader for the collection at path. label is the
// diagnostic text logged on failure.
func NewLoader[T any](caller *api.Caller, scope *page.Scope, path, label string) *Loader[T] {
	if scope == nil {
		scope = page.NewScope()
	}
	return &Loader[T]{caller: caller, scope: scope, path: path, label: label}
}

// Load fetches the collection and replaces the held records with it. A
// failed fetch leaves the held records untouched; on 401/403 the caller has
// already navigated to login.
func (l *Loader[T]) Load(ctx context.Context) error {
	token := l.scope.Token()
	var fetched []T
	err := l.caller.JSON(ctx, api.Call{Method: http.MethodGet, Path: l.path, Label: l.label}, &fetched)
	if err != nil {
		return err
	}
	return l.scope.Apply(token, func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.records = fetched
	})
}

// Records returns a copy of the held records.
func (l *Loader[T]) Records() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]T, len(l.records))
	copy(out, l.records)
	return out
}

// Len returns the number of held records.
func (l *Loader[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}
