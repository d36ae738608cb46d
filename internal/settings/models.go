package settings

import (
	"errors"
	"regexp"
)

const (
	DefaultTheme = "fresh-harvest"
	DarkTheme    = "modern-bistro"

	primaryVar     = "--color-primary"
	primarySoftVar = "--color-primary-soft"
)

var (
	ErrInvalidTheme = errors.New("theme must be a lowercase slug")
	ErrInvalidVar   = errors.New("css variable must start with --")
	ErrInvalidColor = errors.New("color must be a hex value like #1a2b3c")
)

var (
	themePattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	varPattern   = regexp.MustCompile(`^--[a-zA-Z0-9-]+$`)
	colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)
)

// Overrides maps theme id -> css variable -> color.
type Overrides map[string]map[string]string

// ThemeResponse is the response for GET /v1/settings/theme
type ThemeResponse struct {
	Theme     string            `json:"theme"`
	Overrides map[string]string `json:"overrides"`
}

// SetThemeRequest is the body of PUT /v1/settings/theme
type SetThemeRequest struct {
	Theme string `json:"theme"`
}

// OverrideRequest is the body of PUT /v1/settings/theme/overrides
type OverrideRequest struct {
	Theme string `json:"theme"`
	Var   string `json:"var"`
	Color string `json:"color"`
}

func (r OverrideRequest) Validate() error {
	if !themePattern.MatchString(r.Theme) {
		return ErrInvalidTheme
	}
	if !varPattern.MatchString(r.Var) {
		return ErrInvalidVar
	}
	if !colorPattern.MatchString(r.Color) {
		return ErrInvalidColor
	}
	return nil
}

// themeFromLegacy maps the old light/dark preference onto a theme id.
func themeFromLegacy(legacy string) string {
	if legacy == "dark" {
		return DarkTheme
	}
	return DefaultTheme
}
