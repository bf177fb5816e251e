package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/salestracker/internal/config"
	"github.com/mamadbah2/salestracker/internal/metrics"
	"github.com/mamadbah2/salestracker/internal/repository/mongodb"
	redisrepo "github.com/mamadbah2/salestracker/internal/repository/redis"
	"github.com/mamadbah2/salestracker/internal/repository/sheets"
	"github.com/mamadbah2/salestracker/internal/scheduler"
	"github.com/mamadbah2/salestracker/internal/server/handlers"
	"github.com/mamadbah2/salestracker/internal/server/router"
	"github.com/mamadbah2/salestracker/internal/service/aggregation"
	"github.com/mamadbah2/salestracker/internal/service/ledger"
	"github.com/mamadbah2/salestracker/internal/service/reporting"
	"github.com/mamadbah2/salestracker/internal/service/session"
	"github.com/mamadbah2/salestracker/pkg/clients/identity"
	"github.com/mamadbah2/salestracker/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	if err := cfg.RequireIdentity(); err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := cfg.Reporting.Location()
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	mongoClient, err := mongodb.Connect(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb client", zap.Error(err))
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	redisClient, err := redisrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		baseLogger.Fatal("failed to init redis client", zap.Error(err))
	}
	defer func() { _ = redisClient.Close() }()

	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		sheet, err := sheets.NewReportSheet(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		exporter = sheet
		baseLogger.Info("daily report sheet export enabled", zap.String("range", cfg.Sheets.ReportRange))
	} else {
		baseLogger.Warn("google sheets not configured, daily reports are stored in mongodb only")
	}

	m := metrics.New()
	salesStore := mongodb.NewSalesStore(mongoClient)

	ledgerSvc := ledger.NewService(mongodb.NewLiveStore(mongoClient), salesStore, m, baseLogger.Named("svc.ledger"))
	totalsSvc := aggregation.NewService(salesStore, loc, cfg.Reporting.Currency, baseLogger.Named("svc.aggregation"))
	reportingSvc := reporting.NewService(salesStore, mongodb.NewReportStore(mongoClient), exporter, loc, baseLogger.Named("svc.reporting"))
	gate := session.NewGate(
		identity.NewClient(cfg.Identity),
		mongodb.NewUserStore(mongoClient),
		redisrepo.NewSessionStore(redisClient),
		session.Options{TTL: cfg.Session.TTL, SignupCap: int64(cfg.Session.SignupCap)},
		baseLogger.Named("svc.session"),
	)

	engine := router.New(router.Handlers{
		Auth:   handlers.NewAuthHandler(gate, cfg.Session.TTL, cfg.Session.CookieSecure, baseLogger.Named("handlers.auth")),
		Seller: handlers.NewSellerHandler(cfg.Session.CookieSecure),
		Live:   handlers.NewLiveHandler(ledgerSvc, baseLogger.Named("handlers.live")),
		Totals: handlers.NewTotalsHandler(totalsSvc, baseLogger.Named("handlers.totals")),
	}, m, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(cfg.Reporting.CronSchedule, loc, reportingSvc, totalsSvc, baseLogger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
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
