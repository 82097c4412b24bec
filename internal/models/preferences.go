package models

// Theme is the color scheme of the app.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences holds the display settings chosen on this device.
// They are stored locally and never sent to the backend.
type Preferences struct {
	Theme    Theme
	FontSize int
}
