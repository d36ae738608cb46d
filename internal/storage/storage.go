package storage

import (
	"context"
	"errors"
)

// Ключи хранилища. Каждый store владеет ровно одним ключом и не читает чужие.
const (
	KeyBookmarks      = "cookbook-bookmarks"
	KeyCollections    = "cookbook-collections"
	KeyCookHistory    = "cookbook-cook-history"
	KeyMealPlans      = "cookbook-meal-plans"
	KeyCustomRecipes  = "cookbook-custom-recipes"
	KeyTheme          = "cookbook-theme"
	KeyThemeOverrides = "cookbook-theme-overrides"

	// KeyLegacyTheme - ключ старой версии приложения (light|dark)
	KeyLegacyTheme = "theme"
)

// ErrMalformed marks a persisted value that could not be decoded.
var ErrMalformed = errors.New("malformed persisted data")

// KV - key-value слой с get/set семантикой строк.
// Между разными ключами транзакционных гарантий нет.
type KV interface {
	// Get возвращает значение ключа; found=false если ключа нет
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set перезаписывает значение ключа целиком
	Set(ctx context.Context, key string, value string) error

	// Delete удаляет ключ (no-op если ключа нет)
	Delete(ctx context.Context, key string) error

	// Close закрывает соединение (для SQLite/Postgres)
	Close() error
}
