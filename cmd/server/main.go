package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/config"
	"github.com/elmolle/eggtrack/internal/repository/mongodb"
	"github.com/elmolle/eggtrack/internal/repository/rediscache"
	"github.com/elmolle/eggtrack/internal/repository/sheets"
	"github.com/elmolle/eggtrack/internal/scheduler"
	"github.com/elmolle/eggtrack/internal/server/handlers"
	"github.com/elmolle/eggtrack/internal/server/router"
	authsvc "github.com/elmolle/eggtrack/internal/service/auth"
	recordssvc "github.com/elmolle/eggtrack/internal/service/records"
	reportingsvc "github.com/elmolle/eggtrack/internal/service/reporting"
	"github.com/elmolle/eggtrack/pkg/clients/firebaseauth"
	"github.com/elmolle/eggtrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	if err := mongoRepo.EnsureIndexes(context.Background()); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}

	// The profile cache is optional; MongoDB stays authoritative either way.
	var profileCache *rediscache.ProfileCache
	if cfg.Redis.Addr != "" {
		profileCache, err = rediscache.New(context.Background(), cfg.Redis, baseLogger.Named("cache.profiles"))
		if err != nil {
			baseLogger.Fatal("failed to init redis profile cache", zap.Error(err))
		}
		defer func() {
			if err := profileCache.Close(); err != nil {
				baseLogger.Error("failed to close redis connection", zap.Error(err))
			}
		}()
	} else {
		baseLogger.Warn("redis address missing, profile cache disabled")
	}

	var sheetsRepo sheets.Repository
	if cfg.Sheets.CredentialsPath != "" {
		sheetsRepo, err = sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		baseLogger.Info("google sheets export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, weekly export disabled")
	}

	providerClient := firebaseauth.NewClient(cfg.Auth)

	authService := authsvc.NewService(providerClient, mongoRepo, profileCache, baseLogger.Named("svc.auth"))
	recordsService := recordssvc.NewService(mongoRepo, baseLogger.Named("svc.records"))
	reportingService := reportingsvc.NewService(mongoRepo, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Auth:    handlers.NewAuthHandler(authService, baseLogger.Named("handlers.auth")),
		Records: handlers.NewRecordsHandler(recordsService, baseLogger.Named("handlers.records")),
		Users:   handlers.NewUsersHandler(authService, baseLogger.Named("handlers.users")),
		Reports: handlers.NewReportsHandler(reportingService, baseLogger.Named("handlers.reports")),
	}, authService, cfg.Farm.Sectors, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, reportingService, mongoRepo, sheetsRepo, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
