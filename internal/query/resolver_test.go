package query

import (
	"context"
	"testing"

	"github.com/ent0n29/genie/internal/history"
)

func TestResolveReturnsRequestedIDUnchanged(t *testing.T) {
	store, err := history.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	r := NewResolver(store)

	got, err := r.Resolve(context.Background(), "u1", "chat_7")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "chat_7" {
		t.Fatalf("Resolve() = %q, want %q", got, "chat_7")
	}
}

func TestResolveMintsNumberedID(t *testing.T) {
	store, err := history.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()
	r := NewResolver(store)

	got, err := r.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "chat_1" {
		t.Fatalf("Resolve() = %q, want chat_1 for fresh user", got)
	}

	if err := store.Save(ctx, "u1", "chat_1", nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save(ctx, "u1", "chat_2", nil); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err = r.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got != "chat_3" {
		t.Fatalf("Resolve() = %q, want chat_3", got)
	}
}

func TestResolveHasNoSideEffects(t *testing.T) {
	store, err := history.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	ctx := context.Background()
	r := NewResolver(store)

	first, err := r.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	second, err := r.Resolve(ctx, "u1", "")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if first != second {
		t.Fatalf("consecutive Resolve() = %q then %q, want identical candidates", first, second)
	}

	sessions, err := store.ListSessions(ctx, "u1")
	if err != nil {
		t.Fatalf("ListSessions() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Fatalf("ListSessions() = %v, resolution alone must not create sessions", sessions)
	}
}
