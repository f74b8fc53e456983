package store

import (
	"context"
	"errors"
	"testing"

	"github.com/callsift/callsift/internal/model"
	"github.com/callsift/callsift/internal/repository"
)

func TestMemoryStoreDedup(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	exists, err := m.ExistsByPath(ctx, "/drop/a.txt")
	if err != nil || exists {
		t.Fatalf("expected miss on empty store, got exists=%v err=%v", exists, err)
	}

	rec := &model.Transcript{ID: "r1", Filename: "a.txt", Filepath: "/drop/a.txt", RawContent: "hi"}
	if err := m.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	exists, _ = m.ExistsByPath(ctx, "/drop/a.txt")
	if !exists {
		t.Fatalf("expected hit after create")
	}

	dup := &model.Transcript{ID: "r2", Filename: "a.txt", Filepath: "/drop/a.txt"}
	if err := m.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicatePath) {
		t.Fatalf("expected ErrDuplicatePath, got %v", err)
	}
}

func TestMemoryStoreGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	rec := &model.Transcript{ID: "r1", Filename: "a.txt", Filepath: "/drop/a.txt", RawContent: "hi"}
	if err := m.Create(ctx, rec); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := m.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.RawContent != "hi" {
		t.Fatalf("unexpected content %q", got.RawContent)
	}
	// Mutating the copy must not leak into the store.
	got.RawContent = "changed"
	again, _ := m.Get(ctx, "r1")
	if again.RawContent != "hi" {
		t.Fatalf("store mutated through returned copy")
	}

	if _, err := m.Get(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
