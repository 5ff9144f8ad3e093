package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/glabrego/gaufre-cli/internal/gopher"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "gaufre.db"))
	if err != nil {
		t.Fatalf("NewRepository returned error: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	return repo
}

func TestRepository_SaveAndListBookmarks(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := gopher.Address{Host: "example.org", Port: 70, Selector: "/", Type: gopher.Submenu}
	second := gopher.Address{Host: "example.org", Port: 70, Selector: "/about.txt", Type: gopher.Text}

	if _, err := repo.SaveBookmark(ctx, "Home", first); err != nil {
		t.Fatalf("SaveBookmark returned error: %v", err)
	}
	saved, err := repo.SaveBookmark(ctx, "About", second)
	if err != nil {
		t.Fatalf("SaveBookmark returned error: %v", err)
	}
	if saved.ID == 0 || saved.Address != second {
		t.Fatalf("unexpected saved bookmark: %+v", saved)
	}

	listed, err := repo.ListBookmarks(ctx)
	if err != nil {
		t.Fatalf("ListBookmarks returned error: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 bookmarks, got %d", len(listed))
	}
	if listed[0].Title != "Home" || listed[0].Address != first {
		t.Fatalf("unexpected first bookmark: %+v", listed[0])
	}
}

func TestRepository_SaveBookmark_Upserts(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	addr := gopher.Address{Host: "example.org", Port: 70, Type: gopher.Submenu}

	a, err := repo.SaveBookmark(ctx, "Old title", addr)
	if err != nil {
		t.Fatalf("SaveBookmark returned error: %v", err)
	}
	b, err := repo.SaveBookmark(ctx, "New title", addr)
	if err != nil {
		t.Fatalf("SaveBookmark returned error: %v", err)
	}
	if a.ID != b.ID || b.Title != "New title" {
		t.Fatalf("expected upsert, got %+v then %+v", a, b)
	}
}

func TestRepository_DeleteBookmark(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	saved, err := repo.SaveBookmark(ctx, "Home", gopher.Address{Host: "h", Port: 70, Type: gopher.Submenu})
	if err != nil {
		t.Fatalf("SaveBookmark returned error: %v", err)
	}
	if err := repo.DeleteBookmark(ctx, saved.ID); err != nil {
		t.Fatalf("DeleteBookmark returned error: %v", err)
	}
	if err := repo.DeleteBookmark(ctx, saved.ID); !errors.Is(err, ErrBookmarkNotFound) {
		t.Fatalf("expected ErrBookmarkNotFound, got %v", err)
	}
}

func TestRepository_UIPreferences(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	defaults := UIPreferences{ShowNumbers: true, WrapWidth: 0}

	prefs, err := repo.LoadUIPreferences(ctx, defaults)
	if err != nil {
		t.Fatalf("LoadUIPreferences returned error: %v", err)
	}
	if prefs != defaults {
		t.Fatalf("expected defaults, got %+v", prefs)
	}

	want := UIPreferences{ShowNumbers: false, WrapWidth: 72}
	if err := repo.SaveUIPreferences(ctx, want); err != nil {
		t.Fatalf("SaveUIPreferences returned error: %v", err)
	}
	prefs, err = repo.LoadUIPreferences(ctx, defaults)
	if err != nil {
		t.Fatalf("LoadUIPreferences returned error: %v", err)
	}
	if prefs != want {
		t.Fatalf("expected %+v, got %+v", want, prefs)
	}
}
