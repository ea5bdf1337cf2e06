// Package domain contains core domain types for the character chat application.
package domain

// Theme is a UI color theme preference.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether the theme is one of the supported values.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// User is the single local profile record. It is created at login,
// updated by profile edits and removed entirely at logout. There is at
// most one User per store.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Theme Theme  `json:"theme"`
}
