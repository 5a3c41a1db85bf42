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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/persistorai/kinship/internal/api"
	"github.com/persistorai/kinship/internal/config"
	"github.com/persistorai/kinship/internal/db"
	"github.com/persistorai/kinship/internal/kinship"
	"github.com/persistorai/kinship/internal/metrics"
	"github.com/persistorai/kinship/internal/service"
	"github.com/persistorai/kinship/internal/ws"
)

const (
	shutdownTimeout = 10 * time.Second
	auditQueueSize  = 1000
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the kinship HTTP API. Configuration comes from the environment
(STORAGE_ENGINE, DATABASE_URL, SQLITE_PATH, PORT, METRICS_PORT, LABEL_STYLE, ...).
Prometheus metrics are served on a separate port.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cfg, log)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, log *logrus.Logger) error {
	style, err := kinship.ParseStyle(cfg.LabelStyle)
	if err != nil {
		return err
	}

	origin := uuid.NewString()

	be, err := openBackend(ctx, cfg, log, origin)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer be.close()

	// The audit worker outlives the request context so queued entries drain.
	auditCtx, stopAudit := context.WithCancel(context.WithoutCancel(ctx))
	auditWorker := service.NewAuditWorker(be.audit, log, auditQueueSize)
	auditDone := make(chan struct{})
	go func() {
		defer close(auditDone)
		auditWorker.Run(auditCtx)
	}()
	defer func() {
		stopAudit()
		<-auditDone
	}()

	hub := ws.NewHub(log)
	go hub.Run(context.WithoutCancel(ctx))
	defer hub.Shutdown()

	snapshots := service.NewSnapshotCache(be.family, cfg.SnapshotCacheSize, cfg.SnapshotCacheTTL, log)
	family := service.NewFamilyService(be.people, be.links, snapshots, hub, auditWorker, log)

	if be.pool != nil {
		bridge := db.NewNotifyBridge(log, be.pool, hub, snapshots, origin)
		if err := bridge.Start(ctx); err != nil {
			return err
		}
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:          log,
		Hub:          hub,
		Health:       be.health,
		People:       family,
		Links:        family,
		Kinship:      service.NewKinshipService(snapshots, style, cfg.BatchWorkers, log),
		ExportImport: service.NewExportImportService(be.family, snapshots, hub, auditWorker, config.Version, log),
		Stats:        service.NewStatsService(snapshots),
		Audit:        service.NewAuditService(be.audit, log),
		TenantLookup: be.tenants,
		CORSOrigins:  cfg.CORSOrigins,
		Version:      config.Version,
		Engine:       cfg.StorageEngine,
		MaxPairs:     cfg.MaxBatchPairs,
		RateLimit:    cfg.RateLimit,
		RateBurst:    cfg.RateBurst,
	})

	apiSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	metricsSrv := &http.Server{
		Addr:              cfg.MetricsAddr(),
		Handler:           metrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"addr":    cfg.Addr(),
		"metrics": cfg.MetricsAddr(),
		"storage": cfg.StorageEngine,
		"style":   style,
		"version": config.Version,
	}).Info("kinship server starting")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listen(apiSrv) })
	g.Go(func() error { return listen(metricsSrv) })
	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("shutting down")

		return errors.Join(apiSrv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("server stopped")

	return nil
}

func listen(srv *http.Server) error {
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listening on %s: %w", srv.Addr, err)
	}

	return nil
}
