package database

import (
	"fmt"
	stdlog "log"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/camden-git/familytreebackend/config"
	"github.com/camden-git/familytreebackend/models"
)

// Options controls how InitGormDB opens the database.
type Options struct {
	Driver       string // config.DriverSQLite or config.DriverPostgres
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
	LogLevel     logger.LogLevel
}

// OptionsFromConfig derives connection options from the application config.
func OptionsFromConfig(cfg config.Config) Options {
	opts := Options{
		Driver:       cfg.DatabaseDriver,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		LogLevel:     logger.Warn,
	}
	if cfg.DatabaseDriver == config.DriverPostgres {
		opts.DSN = cfg.DatabaseDSN
	} else {
		opts.DSN = SQLiteDSN(cfg.DatabasePath)
	}
	if cfg.LogLevel == "debug" {
		opts.LogLevel = logger.Info
	}
	return opts
}

// InitGormDB initializes and returns a GORM database instance
func InitGormDB(opts Options) (*gorm.DB, error) {
	gormLogger := logger.New(
		stdlog.New(log.Logger, "", 0), // GORM output goes through zerolog
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	var dialector gorm.Dialector
	switch opts.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(opts.DSN)
	case config.DriverSQLite, "":
		dialector = sqlite.Open(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver '%s'", opts.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true, // unique violations surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database using GORM: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB from GORM: %w", err)
	}

	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	log.Info().Str("driver", opts.Driver).Msg("GORM database initialized")
	return db, nil
}

// AutoMigrateModels migrates every table of the family tree schema.
func AutoMigrateModels(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Person{},
		&models.PersonInfo{},
		&models.PersonMedia{},
		&models.SearchEntry{},
		&models.User{},
		&models.Permission{},
		&models.UserPermission{},
		&models.AuditEntry{},
	)
	if err != nil {
		return fmt.Errorf("GORM AutoMigrate failed: %w", err)
	}
	log.Info().Msg("GORM AutoMigrate completed successfully")
	return nil
}
