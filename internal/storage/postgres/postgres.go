package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	getValueSQL = `
		SELECT value
		FROM kv_store
		WHERE key = $1
	`

	upsertValueSQL = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    updated_at = now()
	`

	deleteValueSQL = `DELETE FROM kv_store WHERE key = $1`
)

// PostgresStorage - Postgres реализация storage.KV (таблица kv_store)
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// New подключается к Postgres и проверяет соединение.
// Схема создаётся миграциями (cmd/migrate или RUN_MIGRATIONS_ON_STARTUP).
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{pool: pool}, nil
}

func (s *PostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.pool.QueryRow(ctx, getValueSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStorage) Set(ctx context.Context, key string, value string) error {
	if _, err := s.pool.Exec(ctx, upsertValueSQL, key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStorage) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, deleteValueSQL, key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close закрывает пул соединений
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
