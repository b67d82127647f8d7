package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	defaultPageSize        = 24
	defaultMaxPageSize     = 100
	defaultDisplayMaxNames = 7
	defaultBackfillQueue   = 200
	defaultBackfillWorkers = 4
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
)

type Config struct {
	// development, staging or production
	Environment string
	LogLevel    string
	Port        string

	// database settings; DatabasePath is used by sqlite, DatabaseDSN by postgres
	DatabaseDriver string
	DatabasePath   string
	DatabaseDSN    string
	MaxOpenConns   int
	MaxIdleConns   int

	AllowedOrigins []string

	// listing settings
	PageSize        int
	MaxPageSize     int
	DisplayMaxNames int
	MinListLevel    int

	// search index settings
	CascadeDescendants bool
	BackfillOnStart    bool
	BackfillQueueSize  int
	BackfillWorkers    int

	// seeded administrator account
	AdminUsername string
	AdminPassword string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Warn().Err(err).Str("key", envVar).Str("value", valStr).Int("default", defaultVal).
			Msg("invalid integer setting, using default")
		return defaultVal
	}
	return val
}

// getEnvNonNegativeInt accepts zero, unlike getEnvIntOrDefault.
func getEnvNonNegativeInt(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val < 0 {
		log.Warn().Err(err).Str("key", envVar).Str("value", valStr).Int("default", defaultVal).
			Msg("invalid integer setting, using default")
		return defaultVal
	}
	return val
}

func getEnvBoolOrDefault(envVar string, defaultVal bool) bool {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Warn().Err(err).Str("key", envVar).Str("value", valStr).Bool("default", defaultVal).
			Msg("invalid boolean setting, using default")
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	driver := strings.ToLower(getEnvOrDefault("DATABASE_DRIVER", DriverSQLite))
	if driver != DriverSQLite && driver != DriverPostgres {
		return Config{}, fmt.Errorf("unsupported DATABASE_DRIVER '%s'", driver)
	}

	dbPath := getEnvOrDefault("DATABASE_PATH", "familytree.db")
	if driver == DriverSQLite {
		absPath, err := filepath.Abs(dbPath)
		if err != nil {
			return Config{}, fmt.Errorf("failed to get absolute path for database '%s': %w", dbPath, err)
		}
		dbPath = absPath
	}

	dsn := os.Getenv("DATABASE_DSN")
	if driver == DriverPostgres && dsn == "" {
		return Config{}, fmt.Errorf("DATABASE_DSN is required when DATABASE_DRIVER is %s", DriverPostgres)
	}

	origins := strings.Split(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173"), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}

	cfg := Config{
		Environment:        getEnvOrDefault("APP_ENV", "development"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		Port:               getEnvOrDefault("PORT", "8080"),
		DatabaseDriver:     driver,
		DatabasePath:       dbPath,
		DatabaseDSN:        dsn,
		MaxOpenConns:       getEnvIntOrDefault("DB_MAX_OPEN_CONNS", defaultMaxOpenConns),
		MaxIdleConns:       getEnvIntOrDefault("DB_MAX_IDLE_CONNS", defaultMaxIdleConns),
		AllowedOrigins:     origins,
		PageSize:           getEnvIntOrDefault("LIST_PAGE_SIZE", defaultPageSize),
		MaxPageSize:        getEnvIntOrDefault("LIST_MAX_PAGE_SIZE", defaultMaxPageSize),
		DisplayMaxNames:    getEnvIntOrDefault("LIST_DISPLAY_MAX_NAMES", defaultDisplayMaxNames),
		MinListLevel:       getEnvNonNegativeInt("LIST_MIN_LEVEL", 0),
		CascadeDescendants: getEnvBoolOrDefault("SEARCH_CASCADE_DESCENDANTS", true),
		BackfillOnStart:    getEnvBoolOrDefault("SEARCH_BACKFILL_ON_START", true),
		BackfillQueueSize:  getEnvIntOrDefault("BACKFILL_QUEUE_SIZE", defaultBackfillQueue),
		BackfillWorkers:    getEnvIntOrDefault("BACKFILL_WORKERS", defaultBackfillWorkers),
		AdminUsername:      getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword:      os.Getenv("ADMIN_PASSWORD"),
	}

	if cfg.PageSize > cfg.MaxPageSize {
		cfg.PageSize = cfg.MaxPageSize
	}
	if cfg.Environment == "production" && cfg.AdminPassword == "" {
		return Config{}, fmt.Errorf("ADMIN_PASSWORD must be set in production")
	}

	return cfg, nil
}
