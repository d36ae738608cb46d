package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/fdg312/cookbook/internal/config"
	"github.com/fdg312/cookbook/internal/dbmigrate"
	"github.com/fdg312/cookbook/internal/httpserver"
	"github.com/fdg312/cookbook/internal/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.Env)

	printStartupBanner(logger, cfg)

	if cfg.RunMigrationsOnStartup {
		dbURL, source, _, err := dbmigrate.SelectDatabaseURL(cfg, true)
		if err != nil {
			logger.Fatal().Err(err).Msg("startup migrations")
		}

		logger.Info().Str("using", source).Msg("startup migrations: command=up")
		if err := dbmigrate.Run("up", dbURL, ""); err != nil {
			logger.Fatal().Err(err).Msg("startup migrations failed")
		}
		logger.Info().Msg("startup migrations: completed")
	}

	validateProductionConfig(logger, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := httpserver.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("server init failed")
	}
	defer server.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("server stopped")
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("graceful shutdown failed")
		}
	}
}

// printStartupBanner logs a one-time summary of the resolved configuration.
// Secrets are only reported as "set" / "not set".
func printStartupBanner(logger zerolog.Logger, cfg *config.Config) {
	logger.Info().
		Str("env", cfg.Env).
		Int("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Msg("cookbook api")

	logger.Info().
		Str("driver", cfg.StorageDriver).
		Str("sqlite_path", cfg.SQLitePath).
		Str("runtime_url", describeDBURL(cfg.DatabaseURL, cfg.DatabaseURLPooled)).
		Str("direct", setOrNot(cfg.DatabaseURLDirect)).
		Bool("migrations_on_startup", cfg.RunMigrationsOnStartup).
		Msg("storage")

	catalogEv := logger.Info().Str("source", cfg.CatalogSource)
	switch cfg.CatalogSource {
	case config.CatalogSourceHTTP:
		catalogEv = catalogEv.Str("url", nonEmptyOrDash(cfg.CatalogURL)).Int("timeout_s", cfg.CatalogTimeoutSeconds)
	case config.CatalogSourceS3:
		catalogEv = catalogEv.Str("key", nonEmptyOrDash(cfg.CatalogS3Key))
	default:
		catalogEv = catalogEv.Str("path", cfg.CatalogPath)
	}
	catalogEv.Msg("catalog")

	logger.Info().
		Int("calories", cfg.GoalCalories).
		Int("protein_g", cfg.GoalProteinG).
		Int("carbs_g", cfg.GoalCarbsG).
		Bool("mealplan_cascade_delete", cfg.MealPlanCascadeDelete).
		Msg("nutrition")

	blobEv := logger.Info().Str("mode", cfg.Blob.Mode).Str("exports_prefix", cfg.Blob.ExportsPrefix)
	if cfg.Blob.Mode != config.BlobModeLocal {
		blobEv = blobEv.Str("s3", cfg.Blob.S3.DiagnosticsSummary())
	}
	blobEv.Msg("blob")
}

// validateProductionConfig performs fatal checks that only matter in non-local envs.
func validateProductionConfig(logger zerolog.Logger, cfg *config.Config) {
	isProd := cfg.Env == "production" || cfg.Env == "prod" || cfg.Env == "staging"

	needsS3 := cfg.Blob.Mode == config.BlobModeS3 || cfg.CatalogSource == config.CatalogSourceS3
	if needsS3 {
		if missing := cfg.Blob.S3.MissingRequired(); len(missing) > 0 {
			logger.Fatal().Str("missing", strings.Join(missing, ", ")).Msg("blob: S3 is required but config is incomplete")
		}
	}
	if cfg.CatalogSource == config.CatalogSourceS3 && cfg.Blob.Mode == config.BlobModeLocal {
		logger.Fatal().Msg("catalog: CATALOG_SOURCE=s3 needs BLOB_MODE=s3 or auto")
	}
	if cfg.CatalogSource == config.CatalogSourceHTTP && cfg.CatalogURL == "" {
		logger.Fatal().Msg("catalog: CATALOG_SOURCE=http but CATALOG_URL is not set")
	}

	if isProd && cfg.StorageDriver == config.StorageDriverPostgres && cfg.DatabaseURL == "" {
		logger.Fatal().Str("env", cfg.Env).Msg("db: no DATABASE_URL configured")
	}
	if isProd && cfg.StorageDriver == config.StorageDriverMemory {
		logger.Warn().Str("env", cfg.Env).Msg("db: in-memory storage loses data on restart")
	}
}

// ---- helpers (no secrets) ----

func setOrNot(v string) string {
	if strings.TrimSpace(v) == "" {
		return "not set"
	}
	return "set"
}

func nonEmptyOrDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func describeDBURL(runtime, pooled string) string {
	if runtime == "" {
		return "not set"
	}
	if pooled != "" && runtime == pooled {
		return "set (via DATABASE_URL_POOLED)"
	}
	return "set"
}
