package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/camden-git/familytreebackend/config"
	"github.com/camden-git/familytreebackend/database"
	"github.com/camden-git/familytreebackend/family"
	"github.com/camden-git/familytreebackend/handlers"
	"github.com/camden-git/familytreebackend/logger"
	"github.com/camden-git/familytreebackend/permissions"
	"github.com/camden-git/familytreebackend/realtime"
	"github.com/camden-git/familytreebackend/repository"
	"github.com/camden-git/familytreebackend/search"
	"github.com/camden-git/familytreebackend/workers"
)

func main() {
	envErr := godotenv.Load()

	cfg, err := config.LoadConfig()
	logger.Init(cfg.Environment, cfg.LogLevel)
	if envErr != nil {
		log.Info().Err(envErr).Msg("no .env file loaded")
	}
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.DatabaseDriver == config.DriverSQLite {
		dir := filepath.Dir(cfg.DatabasePath)
		log.Info().Str("dir", dir).Msg("ensuring database directory exists")
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create database directory")
		}
	}

	db, err := database.InitGormDB(database.OptionsFromConfig(cfg))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := database.AutoMigrateModels(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	if err := database.SeedPermissions(db, permissions.SeedRows()); err != nil {
		log.Fatal().Err(err).Msg("failed to seed permissions")
	}
	if _, err := database.EnsureAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure admin account")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	synchronizer := search.NewSynchronizer(cfg.CascadeDescendants)

	if cfg.BackfillOnStart {
		backfiller := workers.NewIndexBackfiller(db, synchronizer, cfg.BackfillQueueSize, cfg.BackfillWorkers)
		if _, err := backfiller.Run(ctx); err != nil {
			log.Error().Err(err).Msg("search index backfill did not complete")
		}
		backfiller.Stop()
	}

	hub := realtime.NewHub()
	go hub.Run(ctx)

	service := family.NewService(db,
		permissions.NewEvaluator(repository.NewGormPermissionRepository(db)),
		synchronizer,
		hub,
		family.Options{
			DisplayMaxNames: cfg.DisplayMaxNames,
			PageSize:        cfg.PageSize,
			MaxPageSize:     cfg.MaxPageSize,
			MinListLevel:    cfg.MinListLevel,
		},
	)

	router := handlers.NewRouter(handlers.RouterDeps{
		Service:        service,
		Users:          repository.NewGormUserRepository(db),
		Hub:            hub,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
	}()

	log.Info().Str("addr", server.Addr).Str("driver", cfg.DatabaseDriver).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}
