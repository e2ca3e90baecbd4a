package bolt

import (
	"context"
	"path/filepath"
	"testing"
)

func TestLocalStorage_RoundTripAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "portal.db")
	ctx := context.Background()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := s.Scope("session/abc").Set(ctx, "assignment-system-user", []byte(`{"id":"2"}`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer s.Close()

	if err := s.Ping(); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
	v, found, err := s.Scope("session/abc").Get(ctx, "assignment-system-user")
	if err != nil || !found || string(v) != `{"id":"2"}` {
		t.Fatalf("unexpected Get result %q %v %v", v, found, err)
	}
	if _, found, _ := s.Scope("session/other").Get(ctx, "assignment-system-user"); found {
		t.Fatal("expected scopes to be isolated")
	}
}

func TestLocalStorage_Remove(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()
	ctx := context.Background()
	st := s.Scope("student/2")

	if err := st.Set(ctx, "completed-submissions", []byte(`["q1"]`)); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := st.Remove(ctx, "completed-submissions"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, found, _ := st.Get(ctx, "completed-submissions"); found {
		t.Fatal("expected key to be removed")
	}
	if err := st.Remove(ctx, "missing"); err != nil {
		t.Fatalf("removing a missing key should succeed, got %v", err)
	}
}

func TestLocalStorage_CanceledContext(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "portal.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Scope("x").Set(ctx, "k", []byte("v")); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
