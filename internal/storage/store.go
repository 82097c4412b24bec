// Package storage provides abstractions for data kept on the device.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/tabkeeper/internal/models"
)

// ErrNotFound is returned when nothing has been stored yet.
var ErrNotFound = errors.New("not found")

// PreferencesStore persists the display preferences of this device.
type PreferencesStore interface {
	// GetPreferences returns the saved preferences.
	// Returns ErrNotFound if none were saved yet.
	GetPreferences(ctx context.Context) (*models.Preferences, error)

	// SavePreferences replaces the saved preferences.
	SavePreferences(ctx context.Context, prefs models.Preferences) error
}

// TokenStore persists the session token between runs.
type TokenStore interface {
	// GetToken returns the saved token.
	// Returns ErrNotFound if the user is signed out.
	GetToken(ctx context.Context) (string, error)

	// SaveToken replaces the saved token.
	SaveToken(ctx context.Context, token string) error

	// DeleteToken removes the saved token. Deleting a missing token is not
	// an error.
	DeleteToken(ctx context.Context) error
}

// Store is everything the app keeps locally.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	PreferencesStore
	TokenStore

	// Close releases any resources held by the store.
	Close() error
}
