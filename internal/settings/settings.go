// Package settings owns the display preferences of the app. There is one
// Manager per process, created at startup and passed to whoever needs it.
package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/tabkeeper/internal/models"
	"github.com/mmynk/tabkeeper/internal/storage"
)

const (
	DefaultFontSize = 20
	MinFontSize     = 12
	MaxFontSize     = 30
	FontSizeStep    = 2
)

var (
	ErrInvalidTheme    = errors.New("invalid theme")
	ErrInvalidFontSize = errors.New("invalid font size")
)

// Defaults returns the preferences used before anything is saved.
func Defaults() models.Preferences {
	return models.Preferences{Theme: models.ThemeLight, FontSize: DefaultFontSize}
}

// FontSizes lists the selectable font sizes in ascending order.
func FontSizes() []int {
	sizes := make([]int, 0, (MaxFontSize-MinFontSize)/FontSizeStep+1)
	for s := MinFontSize; s <= MaxFontSize; s += FontSizeStep {
		sizes = append(sizes, s)
	}
	return sizes
}

// Validate checks a preferences value.
func Validate(p models.Preferences) error {
	if p.Theme != models.ThemeLight && p.Theme != models.ThemeDark {
		return fmt.Errorf("%w: %q", ErrInvalidTheme, p.Theme)
	}
	if p.FontSize < MinFontSize || p.FontSize > MaxFontSize || (p.FontSize-MinFontSize)%FontSizeStep != 0 {
		return fmt.Errorf("%w: %d (allowed %d-%d in steps of %d)",
			ErrInvalidFontSize, p.FontSize, MinFontSize, MaxFontSize, FontSizeStep)
	}
	return nil
}

// Manager holds the current preferences. Safe for concurrent use.
type Manager struct {
	mu      sync.RWMutex
	store   storage.PreferencesStore
	current models.Preferences
}

// Load reads saved preferences from store. Missing or invalid saved values
// fall back to Defaults.
func Load(ctx context.Context, store storage.PreferencesStore) (*Manager, error) {
	m := &Manager{store: store, current: Defaults()}

	saved, err := store.GetPreferences(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.Debug("No saved preferences, using defaults")
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load preferences: %w", err)
	}

	if err := Validate(*saved); err != nil {
		slog.Warn("Ignoring invalid saved preferences", "error", err)
		return m, nil
	}
	m.current = *saved
	return m, nil
}

// Current returns a copy of the current preferences.
func (m *Manager) Current() models.Preferences {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Update applies fn to a copy of the current preferences, validates the
// result and persists it. On any failure the current value is unchanged.
func (m *Manager) Update(ctx context.Context, fn func(*models.Preferences)) (models.Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current
	fn(&next)
	if err := Validate(next); err != nil {
		return m.current, err
	}
	if next == m.current {
		return m.current, nil
	}
	if err := m.store.SavePreferences(ctx, next); err != nil {
		return m.current, fmt.Errorf("failed to save preferences: %w", err)
	}

	slog.Debug("Preferences updated", "theme", next.Theme, "font_size", next.FontSize)
	m.current = next
	return next, nil
}

// ToggleTheme switches between light and dark.
func (m *Manager) ToggleTheme(ctx context.Context) (models.Preferences, error) {
	return m.Update(ctx, func(p *models.Preferences) {
		if p.Theme == models.ThemeDark {
			p.Theme = models.ThemeLight
		} else {
			p.Theme = models.ThemeDark
		}
	})
}

// SetFontSize changes the font size.
func (m *Manager) SetFontSize(ctx context.Context, size int) (models.Preferences, error) {
	return m.Update(ctx, func(p *models.Preferences) {
		p.FontSize = size
	})
}
