package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/cookbook/internal/config"
	"github.com/fdg312/cookbook/internal/dbmigrate"
	"github.com/fdg312/cookbook/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)

	if len(os.Args) < 2 {
		logger.Fatal().Msg("usage: go run ./cmd/migrate [up|status|down]")
	}

	command := os.Args[1]
	switch command {
	case "up", "status", "down":
	default:
		logger.Fatal().Str("command", command).Msg("unsupported command (allowed: up, status, down)")
	}

	dbURL, source, warning, err := dbmigrate.SelectDatabaseURL(cfg, false)
	if err != nil {
		logger.Fatal().Err(err).Msg("migrate: no database")
	}

	if warning != "" {
		logger.Warn().Msg("migrate: " + warning)
	}
	logger.Info().Str("command", command).Str("using", source).Msg("migrate: starting")

	if err := dbmigrate.Run(command, dbURL, ""); err != nil {
		logger.Fatal().Err(err).Msg("migrate: failed")
	}

	logger.Info().Str("command", command).Msg("migrate: completed successfully")
}
