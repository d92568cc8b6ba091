package page

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScopeApplyWhileMounted(t *testing.T) {
	s := NewScope()
	token := s.Token()
	applied := false
	if err := s.Apply(token, func() { applied = true }); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !applied {
		t.Error("fn not run on a live token")
	}
}

func TestScopeDiscardsAfterUnmount(t *testing.T) {
	s := NewScope()
	token := s.Token()
	s.Unmount()

	if s.Mounted() {
		t.Fatal("scope still mounted after Unmount")
	}
	err := s.Apply(token, func() { t.Error("fn run after unmount") })
	if !errors.Is(err, ErrUnmounted) {
		t.Errorf("Apply() error = %v, want ErrUnmounted", err)
	}
}

func TestScopeTokenAfterUnmountIsStale(t *testing.T) {
	s := NewScope()
	s.Unmount()
	late := s.Token()
	if err := s.Apply(late, func() { t.Error("fn run on an unmounted scope") }); !errors.Is(err, ErrUnmounted) {
		t.Errorf("Apply() error = %v, want ErrUnmounted", err)
	}
}

func TestScopeBindContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScope()
	s.BindContext(ctx)
	cancel()

	deadline := time.Now().Add(time.Second)
	for s.Mounted() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if s.Mounted() {
		t.Fatal("scope still mounted after context ended")
	}
}

func TestScopeBindContextStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScope()
	stop := s.BindContext(ctx)
	if !stop() {
		t.Fatal("stop() = false on an active binding")
	}
	cancel()
	time.Sleep(10 * time.Millisecond)
	if !s.Mounted() {
		t.Error("detached scope unmounted by its context")
	}
}
