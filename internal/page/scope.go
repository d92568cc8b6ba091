// Package page tracks whether a page is still mounted when its fetches resolve.
package page

import (
	"context"
	"errors"
	"sync"
)

// ErrUnmounted is returned when a fetch resolved after its page went away.
var ErrUnmounted = errors.New("page unmounted before fetch resolved")

// Token identifies the mount generation a fetch was started in.
type Token uint64

// Scope is a generation counter owned by one page.
//
// A fetch captures a Token before suspending and applies its result only if
// the Scope is still on that generation.
type Scope struct {
	mu      sync.Mutex
	gen     uint64
	stopped bool
}

// NewScope returns a mounted scope.
func NewScope() *Scope {
	return &Scope{}
}

// Token captures the current generation.
func (s *Scope) Token() Token {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Token(s.gen)
}

// Unmount invalidates every outstanding token.
func (s *Scope) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.stopped = true
}

// Mounted reports whether the scope has not been unmounted.
func (s *Scope) Mounted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.stopped
}

// BindContext unmounts the scope when ctx ends. The returned func detaches
// the binding without unmounting.
func (s *Scope) BindContext(ctx context.Context) (stop func() bool) {
	return context.AfterFunc(ctx, s.Unmount)
}

// Apply runs fn under the scope lock if t is still live.
func (s *Scope) Apply(t Token, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped || Token(s.gen) != t {
		return ErrUnmounted
	}
	fn()
	return nil
}
