// Package prefs reads and writes a visitor's display preferences in their
// persisted key-value namespace.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/appshelf/internal/domain"
	"github.com/MrSnakeDoc/appshelf/internal/localstate"
	"github.com/MrSnakeDoc/appshelf/internal/logger"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ErrInvalidTheme is returned by ParseTheme.
var ErrInvalidTheme = errors.New("invalid theme")

// ParseTheme accepts light, dark and system. Empty means system.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark:
		return Theme(s), nil
	case ThemeSystem, "":
		return ThemeSystem, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidTheme, s)
	}
}

// Preferences is the persisted display state of one visitor.
type Preferences struct {
	PageSize     domain.PageSize
	Theme        Theme
	FavoritesTab string
	LastVisit    time.Time
}

// Load reads the preferences. Missing or unreadable values fall back to
// defaults (defaultSize for the page size) and are logged, never returned.
func Load(ctx context.Context, kv localstate.KV, defaultSize domain.PageSize, log logger.Logger) Preferences {
	p := Preferences{
		PageSize: defaultSize,
		Theme:    ThemeSystem,
	}

	if raw, ok := read(ctx, kv, localstate.KeyPageSize, log); ok {
		if size, err := domain.ParsePageSize(raw); err == nil {
			p.PageSize = size
		} else {
			log.Warn("ignoring stored page size", logger.String("value", raw))
		}
	}

	if raw, ok := read(ctx, kv, localstate.KeyTheme, log); ok {
		if theme, err := ParseTheme(raw); err == nil {
			p.Theme = theme
		} else {
			log.Warn("ignoring stored theme", logger.String("value", raw))
		}
	}

	if raw, ok := read(ctx, kv, localstate.KeyFavoritesTab, log); ok {
		p.FavoritesTab = raw
	}

	if raw, ok := read(ctx, kv, localstate.KeyLastVisit, log); ok {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			p.LastVisit = time.UnixMilli(ms)
		}
	}

	return p
}

func read(ctx context.Context, kv localstate.KV, key string, log logger.Logger) (string, bool) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, localstate.ErrNotFound) {
			log.Warn("failed to read preference", logger.String("key", key), logger.Error(err))
		}
		return "", false
	}
	return raw, true
}

// SavePageSize persists the page size.
func SavePageSize(ctx context.Context, kv localstate.KV, size domain.PageSize) error {
	return kv.Set(ctx, localstate.KeyPageSize, size.String())
}

// SaveTheme persists the theme. The system theme is stored as an absent key.
func SaveTheme(ctx context.Context, kv localstate.KV, theme Theme) error {
	if theme == ThemeSystem {
		return kv.Delete(ctx, localstate.KeyTheme)
	}
	return kv.Set(ctx, localstate.KeyTheme, string(theme))
}

// SaveFavoritesTab persists the active favorites category. Empty clears it.
func SaveFavoritesTab(ctx context.Context, kv localstate.KV, tab string) error {
	if tab == "" {
		return kv.Delete(ctx, localstate.KeyFavoritesTab)
	}
	return kv.Set(ctx, localstate.KeyFavoritesTab, tab)
}

// TouchLastVisit stores now as the last visit.
func TouchLastVisit(ctx context.Context, kv localstate.KV, now time.Time) error {
	return kv.Set(ctx, localstate.KeyLastVisit, strconv.FormatInt(now.UnixMilli(), 10))
}
