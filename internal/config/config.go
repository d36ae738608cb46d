package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverSQLite   = "sqlite"
	StorageDriverPostgres = "postgres"

	CatalogSourceFile = "file"
	CatalogSourceHTTP = "http"
	CatalogSourceS3   = "s3"
)

// Config содержит конфигурацию приложения
type Config struct {
	Env      string // local | staging | prod
	Port     int
	LogLevel string

	// Storage
	StorageDriver string // memory | sqlite | postgres
	SQLitePath    string

	// Database (postgres driver)
	DatabaseURL       string // runtime connection (resolved: pooled > url > direct)
	DatabaseURLRaw    string // DATABASE_URL as provided
	DatabaseURLPooled string // DATABASE_URL_POOLED as provided
	DatabaseURLDirect string // for migrations / DDL (may be empty)

	// Catalog
	CatalogSource         string // file | http | s3
	CatalogPath           string
	CatalogURL            string
	CatalogS3Key          string
	CatalogTimeoutSeconds int

	// Nutrition goals (daily)
	GoalCalories int
	GoalProteinG int
	GoalCarbsG   int

	// Custom recipe deletion also clears meal plans
	MealPlanCascadeDelete bool

	// CORS
	CORSAllowedOrigins   []string
	CORSAllowCredentials bool

	// Rate Limiting
	RateLimitRPS   int
	RateLimitBurst int

	// Blob (S3) for catalog source and exports
	Blob BlobConfig

	// Migrations
	RunMigrationsOnStartup bool
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// APP_ENV (fallback to ENV for backward compat, default: local)
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	if env == "" {
		env = "local"
	}

	port := envInt("PORT", 8080)

	// LOG_LEVEL (default: debug in local, info elsewhere)
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
		if env == "local" {
			logLevel = "debug"
		}
	}

	// ---------- Database ----------
	// Priority: DATABASE_URL_POOLED > DATABASE_URL > DATABASE_URL_DIRECT
	dbPooled := strings.TrimSpace(os.Getenv("DATABASE_URL_POOLED"))
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	dbDirect := strings.TrimSpace(os.Getenv("DATABASE_URL_DIRECT"))

	runtimeDB := dbPooled
	if runtimeDB == "" {
		runtimeDB = dbURL
	}
	if runtimeDB == "" {
		runtimeDB = dbDirect
	}

	// ---------- Storage ----------
	defaultDriver := StorageDriverSQLite
	if runtimeDB != "" {
		defaultDriver = StorageDriverPostgres
	}
	storageDriver := parseEnum("STORAGE_DRIVER", defaultDriver,
		StorageDriverMemory, StorageDriverSQLite, StorageDriverPostgres)

	sqlitePath := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if sqlitePath == "" {
		sqlitePath = "data/cookbook.db"
	}

	// ---------- Catalog ----------
	catalogSource := parseEnum("CATALOG_SOURCE", CatalogSourceFile,
		CatalogSourceFile, CatalogSourceHTTP, CatalogSourceS3)

	catalogPath := strings.TrimSpace(os.Getenv("CATALOG_PATH"))
	if catalogPath == "" {
		catalogPath = "data/recipes.json"
	}

	catalogTimeout := envInt("CATALOG_TIMEOUT_SECONDS", 10)
	if catalogTimeout <= 0 {
		catalogTimeout = 10
	}

	// ---------- Nutrition ----------
	goalCalories := envInt("NUTRITION_GOAL_CALORIES", 2000)
	goalProtein := envInt("NUTRITION_GOAL_PROTEIN_G", 50)
	goalCarbs := envInt("NUTRITION_GOAL_CARBS_G", 275)

	// ---------- CORS ----------
	corsOrigins := parseCORSOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"), env)
	corsAllowCreds := os.Getenv("CORS_ALLOW_CREDENTIALS") == "1"

	// ---------- Blob / S3 ----------
	// S3_PRESIGN_TTL_SECONDS (default: 900, enforce > 0)
	s3PresignTTL := envInt("S3_PRESIGN_TTL_SECONDS", 900)
	if s3PresignTTL <= 0 {
		s3PresignTTL = 900
	}

	exportsPrefix := strings.Trim(strings.TrimSpace(os.Getenv("EXPORTS_PREFIX")), "/")
	if exportsPrefix == "" {
		exportsPrefix = "exports"
	}

	blobCfg := BlobConfig{
		Mode: parseEnum("BLOB_MODE", BlobModeLocal, BlobModeLocal, BlobModeS3, BlobModeAuto),
		S3: S3Config{
			Endpoint:          strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
			Region:            strings.TrimSpace(os.Getenv("S3_REGION")),
			Bucket:            strings.TrimSpace(os.Getenv("S3_BUCKET")),
			AccessKeyID:       strings.TrimSpace(os.Getenv("S3_ACCESS_KEY_ID")),
			SecretAccessKey:   strings.TrimSpace(os.Getenv("S3_SECRET_ACCESS_KEY")),
			PublicBaseURL:     strings.TrimSpace(os.Getenv("S3_PUBLIC_BASE_URL")),
			PresignTTLSeconds: s3PresignTTL,
			PreferPublicURL:   parseBoolEnv("S3_PREFER_PUBLIC_URL"),
		},
		ExportsPrefix: exportsPrefix,
	}

	return &Config{
		Env:      env,
		Port:     port,
		LogLevel: logLevel,

		StorageDriver: storageDriver,
		SQLitePath:    sqlitePath,

		DatabaseURL:       runtimeDB,
		DatabaseURLRaw:    dbURL,
		DatabaseURLPooled: dbPooled,
		DatabaseURLDirect: dbDirect,

		CatalogSource:         catalogSource,
		CatalogPath:           catalogPath,
		CatalogURL:            strings.TrimSpace(os.Getenv("CATALOG_URL")),
		CatalogS3Key:          strings.TrimSpace(os.Getenv("CATALOG_S3_KEY")),
		CatalogTimeoutSeconds: catalogTimeout,

		GoalCalories: goalCalories,
		GoalProteinG: goalProtein,
		GoalCarbsG:   goalCarbs,

		MealPlanCascadeDelete: parseBoolEnv("MEALPLAN_CASCADE_DELETE"),

		CORSAllowedOrigins:   corsOrigins,
		CORSAllowCredentials: corsAllowCreds,

		RateLimitRPS:   envInt("RATE_LIMIT_RPS", 0),
		RateLimitBurst: envInt("RATE_LIMIT_BURST", 0),

		Blob: blobCfg,

		RunMigrationsOnStartup: parseBoolEnv("RUN_MIGRATIONS_ON_STARTUP"),
	}
}

// parseCORSOrigins parses CORS_ALLOWED_ORIGINS env var.
// In local mode, defaults to localhost origins if empty.
func parseCORSOrigins(raw, env string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if env == "local" {
			return []string{"http://localhost:3000", "http://localhost:5173"}
		}
		return nil // prod: deny by default
	}

	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// parseEnum reads a lower-cased env value and falls back when it is not allowed.
func parseEnum(key string, defaultVal string, allowed ...string) string {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return defaultVal
	}
	for _, a := range allowed {
		if v == a {
			return v
		}
	}
	log.Printf("WARNING: unknown %s=%q, fallback to %s", key, v, defaultVal)
	return defaultVal
}

// envInt reads an int env var with a default value.
func envInt(key string, defaultVal int) int {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("WARNING: invalid %s=%q, fallback to %d", key, s, defaultVal)
		return defaultVal
	}
	return v
}

func parseBoolEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "on"
}
