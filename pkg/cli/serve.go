package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/platinummonkey/collie/pkg/api"
	"github.com/platinummonkey/collie/pkg/auth"
	"github.com/platinummonkey/collie/pkg/config"
	"github.com/platinummonkey/collie/pkg/feeds"
	"github.com/platinummonkey/collie/pkg/fetcher"
	"github.com/platinummonkey/collie/pkg/httputil"
	"github.com/platinummonkey/collie/pkg/items"
	"github.com/platinummonkey/collie/pkg/observability"
	"github.com/platinummonkey/collie/pkg/scheduler"
	"github.com/platinummonkey/collie/pkg/storage/sqlite"
)

// dbStatsInterval is how often connection pool gauges are refreshed.
const dbStatsInterval = 15 * time.Second

func newServeCommand() *Command {
	flags := flag.NewFlagSet("serve", flag.ExitOnError)
	port := flags.String("port", "", "Override the configured API port")

	cmd := &Command{
		Name:        "serve",
		Description: "Run the API server and the ingestion scheduler",
		Flags:       flags,
	}
	cmd.Run = func(args []string) error {
		if err := flags.Parse(args); err != nil {
			return err
		}
		return serve(*port)
	}
	return cmd
}

func serve(portOverride string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	if portOverride != "" {
		cfg.Server.Port = portOverride
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := sqlite.Open(sqlite.ConnectionConfig{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout,
		PingTimeout: 5 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelMigrate()
	if err := sqlite.Migrate(migrateCtx, db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	tokens := auth.NewTokenService(auth.NewStore(db).WithMetrics(metrics))

	server := api.NewServer(db, tokens, metrics)
	server.Use(
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
		httputil.RecoveryMiddleware(logger),
	)
	if cfg.Observability.MetricsEnabled {
		server.Use(observability.HTTPMetricsMiddleware(metrics))
	}

	apiServer := &http.Server{
		Addr:         cfg.APIAddr(),
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(db))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    cfg.HealthAddr(),
		Handler: httputil.Chain(httputil.RequestIDMiddleware, httputil.RecoveryMiddleware(logger))(healthMux),
	}

	ingest, err := fetcher.New(feeds.NewStore(db).WithMetrics(metrics), items.NewStore(db).WithMetrics(metrics), logger, metrics, fetcher.Config{
		FetchTimeout: cfg.Producer.FetchTimeout,
		Proxy:        cfg.Producer.Proxy,
	})
	if err != nil {
		return fmt.Errorf("create fetcher: %w", err)
	}

	sched, err := scheduler.New(ingest, logger, cfg.Producer.PollingInterval)
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	sched.Start()

	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	shutdown.RegisterShutdownFunc(sched.Stop)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		stopStats()
		return db.Close()
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.WithField("addr", apiServer.Addr).Info("API server listening")
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("health server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(dbStatsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-statsCtx.Done():
				return nil
			case <-ticker.C:
				metrics.ObserveDBStats(db.Stats())
			}
		}
	})
	g.Go(shutdown.WaitForShutdown)

	return g.Wait()
}
