package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/papergraph/internal/api"
	"github.com/persistorai/papergraph/internal/config"
	"github.com/persistorai/papergraph/internal/db"
	"github.com/persistorai/papergraph/internal/db/migrations"
	"github.com/persistorai/papergraph/internal/dbpool"
	"github.com/persistorai/papergraph/internal/lookup"
	"github.com/persistorai/papergraph/internal/metadata"
	"github.com/persistorai/papergraph/internal/service"
	"github.com/persistorai/papergraph/internal/store"
	"github.com/persistorai/papergraph/internal/ws"
)

const (
	shutdownTimeout = 15 * time.Second
	backfillLimit   = 1000
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the papergraph API server",
		Long:  "Run the HTTP and WebSocket API. Configuration comes from the environment (DATABASE_URL, PORT, ...).",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, newLogger(cfg.LogLevel))
		},
	}
}

func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	log.WithFields(logrus.Fields{"version": config.Version, "addr": cfg.Addr()}).Info("starting papergraph")

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.PoolOptions())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	lookups, err := lookup.New(cfg.Lookup(), log)
	if err != nil {
		return fmt.Errorf("configuring lookups: %w", err)
	}
	resolver := metadata.NewResolver(lookups.Lookups(), log)

	base := store.Base{Pool: pool, Log: log}
	nodeStore := store.NewNodeStore(base)
	graphStore := store.NewGraphStore(base)
	metaStore := store.NewMetadataStore(base)

	worker := service.NewEnrichWorker(resolver, metaStore, log, cfg.EnrichQueueSize, cfg.EnrichWorkers)
	graphSvc := service.NewGraphService(graphStore, nodeStore, cfg.TagOptions(), log)
	entrySvc := service.NewEntryService(nodeStore, worker, log)
	metaSvc := service.NewMetadataService(resolver, metaStore, nodeStore, nodeStore, worker, log)

	hub := ws.NewHub(metaSvc, log)
	if err := db.NewNotifyBridge(log, pool, hub).Start(ctx); err != nil {
		return err
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:      log,
		Hub:      hub,
		Graph:    graphSvc,
		Entries:  entrySvc,
		Metadata: metaSvc,
		Health: api.HealthDeps{
			DB: pool,
			Schema: func(ctx context.Context) (int64, error) {
				return db.CurrentVersion(ctx, pool, migrations.FS)
			},
			WantSchema: int64(db.SchemaVersion()),
			Breakers:   lookups,
			Conns:      hub,
		},
		CORSOrigins:    cfg.CORSOrigins,
		Version:        config.Version,
		ResolveTimeout: cfg.ResolveTimeout,
		HSTS:           cfg.HSTS,
	})

	apiServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})

	if cfg.BackfillOnStart {
		g.Go(func() error {
			queued, err := metaSvc.Backfill(gctx, backfillLimit)
			if err != nil {
				log.WithError(err).Warn("startup metadata backfill failed")
				return nil
			}
			log.WithField("queued", queued).Info("startup metadata backfill queued")
			return nil
		})
	}

	g.Go(func() error { return listen(apiServer, log, "api") })
	g.Go(func() error { return listen(metricsServer, log, "metrics") })

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("papergraph stopped")
	return nil
}

func listen(srv *http.Server, log *logrus.Logger, name string) error {
	log.WithFields(logrus.Fields{"server": name, "addr": srv.Addr}).Info("listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
