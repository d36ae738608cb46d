package dbmigrate

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Run applies a goose command against dbURL. An empty migrationsDir uses the
// migrations embedded in the binary; otherwise files are read from disk.
func Run(command string, dbURL string, migrationsDir string) error {
	if dbURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	dir := DefaultMigrationsDir
	if migrationsDir == "" {
		goose.SetBaseFS(embeddedMigrations)
	} else {
		goose.SetBaseFS(nil)
		dir = migrationsDir
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	if err := goose.Run(command, db, dir); err != nil {
		return fmt.Errorf("goose %s failed: %w", command, err)
	}

	return nil
}

// EmbeddedMigrations lists the migration files bundled into the binary.
func EmbeddedMigrations() ([]string, error) {
	entries, err := embeddedMigrations.ReadDir(DefaultMigrationsDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}
