package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	governanceservice "lexicon/contexts/editorial-governance/governance-service"
	identitycache "lexicon/contexts/editorial-governance/governance-service/adapters/cache"
	mediaadapter "lexicon/contexts/editorial-governance/governance-service/adapters/media"
	"lexicon/contexts/editorial-governance/governance-service/adapters/memory"
	postgresadapter "lexicon/contexts/editorial-governance/governance-service/adapters/postgres"
	"lexicon/contexts/editorial-governance/governance-service/application/workers"
	"lexicon/contexts/editorial-governance/governance-service/ports"
	"lexicon/internal/platform/config"
	"lexicon/internal/platform/db"
	"lexicon/internal/platform/messaging"
	"lexicon/internal/platform/metrics"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

const logModule = "internal/app/bootstrap"

// Runtime is a wired governance module plus the infrastructure it owns.
type Runtime struct {
	Config    config.Config
	Module    governanceservice.Module
	Database  *db.Database
	Directory *postgresadapter.Directory
	Bus       *messaging.Bus
	Registry  *prometheus.Registry
	Logger    *slog.Logger
}

type WorkerApp struct {
	runtime       *Runtime
	metricsServer *http.Server
	pollInterval  time.Duration
	logger        *slog.Logger
}

// CycleReport summarizes one worker cycle.
type CycleReport struct {
	Sweep     workers.SweepReport
	Published int
}

// BuildRuntime connects the configured store and wires the module on it.
func BuildRuntime(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runtime := &Runtime{
		Config: cfg,
		Bus:    messaging.NewBus(0, logger),
		Logger: logger,
	}

	var governanceMetrics ports.Metrics = ports.NopMetrics{}
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		collector, err := metrics.NewGovernanceMetrics(registry)
		if err != nil {
			return nil, err
		}
		runtime.Registry = registry
		governanceMetrics = collector
	}

	deps := governanceservice.Dependencies{
		MediaURLs:        mediaadapter.Resolver{BaseURL: cfg.MediaBaseURL},
		MediaRemover:     mediaadapter.FileRemover{Root: cfg.MediaRoot, Logger: logger},
		Publisher:        runtime.Bus,
		Metrics:          governanceMetrics,
		Clock:            postgresadapter.SystemClock{},
		IDGen:            postgresadapter.UUIDGenerator{},
		SweepConcurrency: cfg.SweepConcurrency,
		OutboxBatchSize:  cfg.OutboxBatchSize,
		DisableLifecycle: cfg.DisableLifecycle,
		DisableOutbox:    cfg.DisableOutbox,
		Logger:           logger,
	}

	switch cfg.DatabaseDriver {
	case "memory":
		store := memory.NewStore()
		directory := memory.NewDirectory()
		deps.Store = store
		deps.Outbox = store
		deps.Identity = directory
		deps.Profiles = directory
		runtime.Module = governanceservice.NewModule(deps)
		runtime.Module.Store = store
		runtime.Module.Directory = directory
	default:
		database, err := db.Connect(db.Options{
			Driver:             cfg.DatabaseDriver,
			DSN:                cfg.DatabaseDSN,
			SlowQueryThreshold: cfg.SlowQueryThreshold,
			Logger:             logger,
		})
		if err != nil {
			return nil, err
		}
		repo := postgresadapter.NewRepository(database.DB, logger)
		directory := postgresadapter.NewDirectory(database.DB, logger)
		deps.Store = repo
		deps.Outbox = repo
		deps.Identity = identitycache.NewIdentityCache(directory, cfg.IdentityCacheTTL)
		deps.Profiles = directory
		runtime.Database = database
		runtime.Directory = directory
		runtime.Module = governanceservice.NewModule(deps)
	}

	logger.Info("governance runtime built",
		"event", "bootstrap_runtime_built",
		"module", logModule,
		"layer", "platform",
		"database_driver", cfg.DatabaseDriver,
		"metrics_enabled", cfg.MetricsEnabled,
	)
	return runtime, nil
}

// Migrate creates the governance schema. The memory driver has none.
func (r *Runtime) Migrate(ctx context.Context) error {
	if r.Database == nil {
		return nil
	}
	if err := postgresadapter.AutoMigrate(ctx, r.Database.DB); err != nil {
		return fmt.Errorf("migrate governance schema: %w", err)
	}
	r.Logger.Info("governance schema migrated",
		"event", "bootstrap_schema_migrated",
		"module", logModule,
		"layer", "platform",
		"database_driver", r.Database.Driver,
	)
	return nil
}

// RunCycle runs one lifecycle sweep followed by one outbox relay batch.
// A sweep failure does not skip the relay.
func (r *Runtime) RunCycle(ctx context.Context) (CycleReport, error) {
	var report CycleReport
	sweep, sweepErr := r.Module.Sweeper.RunOnce(ctx)
	report.Sweep = sweep
	published, relayErr := r.Module.Relay.RunOnce(ctx)
	report.Published = published
	return report, errors.Join(sweepErr, relayErr)
}

func (r *Runtime) Close() error {
	if r == nil {
		return nil
	}
	return r.Database.Close()
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	runtime, err := BuildRuntime(cfg, logger)
	if err != nil {
		return nil, err
	}

	app := &WorkerApp{
		runtime:      runtime,
		pollInterval: cfg.WorkerInterval,
		logger:       logger,
	}
	if runtime.Registry != nil && cfg.MetricsListenAddr != "" {
		app.metricsServer = &http.Server{
			Addr:              cfg.MetricsListenAddr,
			Handler:           metrics.NewMux(runtime.Registry, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	return app, nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.runtime.Migrate(ctx); err != nil {
		return err
	}
	w.startMetricsServer()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", logModule,
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		report, err := w.runtime.RunCycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			w.logger.Error("worker cycle failed",
				"event", "bootstrap_worker_cycle_failed",
				"module", logModule,
				"layer", "platform",
				"error", err.Error(),
			)
		} else {
			w.logger.Debug("worker cycle completed",
				"event", "bootstrap_worker_cycle_completed",
				"module", logModule,
				"layer", "platform",
				"archived", report.Sweep.DictionaryArchived+report.Sweep.FolkloreArchived,
				"deleted", report.Sweep.DictionaryDeleted+report.Sweep.FolkloreDeleted,
				"published", report.Published,
			)
		}
		select {
		case <-ctx.Done():
			w.logger.Info("worker app stopping",
				"event", "bootstrap_worker_stopping",
				"module", logModule,
				"layer", "platform",
			)
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) startMetricsServer() {
	if w.metricsServer == nil {
		return
	}
	go func() {
		err := w.metricsServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			w.logger.Error("metrics server stopped",
				"event", "bootstrap_metrics_server_failed",
				"module", logModule,
				"layer", "platform",
				"addr", w.metricsServer.Addr,
				"error", err.Error(),
			)
		}
	}()
}

func (w *WorkerApp) Close() error {
	var errs []error
	if w.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, w.metricsServer.Shutdown(ctx))
	}
	errs = append(errs, w.runtime.Close())
	return errors.Join(errs...)
}
