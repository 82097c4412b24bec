package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/mmynk/tabkeeper/internal/models"
	"github.com/mmynk/tabkeeper/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "nested", "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Preferences(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("GetPreferences returns ErrNotFound when empty", func(t *testing.T) {
		_, err := store.GetPreferences(ctx)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("SavePreferences then GetPreferences", func(t *testing.T) {
		want := models.Preferences{Theme: models.ThemeDark, FontSize: 24}
		if err := store.SavePreferences(ctx, want); err != nil {
			t.Fatalf("SavePreferences failed: %v", err)
		}

		got, err := store.GetPreferences(ctx)
		if err != nil {
			t.Fatalf("GetPreferences failed: %v", err)
		}
		if *got != want {
			t.Errorf("Preferences mismatch: got %+v, want %+v", *got, want)
		}
	})

	t.Run("SavePreferences overwrites", func(t *testing.T) {
		want := models.Preferences{Theme: models.ThemeLight, FontSize: 14}
		if err := store.SavePreferences(ctx, want); err != nil {
			t.Fatalf("SavePreferences failed: %v", err)
		}

		got, err := store.GetPreferences(ctx)
		if err != nil {
			t.Fatalf("GetPreferences failed: %v", err)
		}
		if *got != want {
			t.Errorf("Preferences mismatch: got %+v, want %+v", *got, want)
		}
	})
}

func TestSQLiteStore_Token(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.GetToken(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	for _, token := range []string{"first", "second"} {
		if err := store.SaveToken(ctx, token); err != nil {
			t.Fatalf("SaveToken failed: %v", err)
		}
		got, err := store.GetToken(ctx)
		if err != nil {
			t.Fatalf("GetToken failed: %v", err)
		}
		if got != token {
			t.Errorf("Token mismatch: got %q, want %q", got, token)
		}
	}

	if err := store.DeleteToken(ctx); err != nil {
		t.Fatalf("DeleteToken failed: %v", err)
	}
	if _, err := store.GetToken(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteToken(ctx); err != nil {
		t.Errorf("Deleting a missing token should succeed, got %v", err)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	ctx := context.Background()

	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := store.SavePreferences(ctx, models.Preferences{Theme: models.ThemeDark, FontSize: 18}); err != nil {
		t.Fatalf("SavePreferences failed: %v", err)
	}
	if err := store.SaveToken(ctx, "tok"); err != nil {
		t.Fatalf("SaveToken failed: %v", err)
	}
	store.Close()

	reopened, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer reopened.Close()

	prefs, err := reopened.GetPreferences(ctx)
	if err != nil {
		t.Fatalf("GetPreferences failed: %v", err)
	}
	if prefs.Theme != models.ThemeDark || prefs.FontSize != 18 {
		t.Errorf("Preferences not persisted: %+v", prefs)
	}
	token, err := reopened.GetToken(ctx)
	if err != nil || token != "tok" {
		t.Errorf("Token not persisted: %q, %v", token, err)
	}
}
