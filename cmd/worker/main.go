package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/samirrijal/reproj/internal/adapters/nats"
	"github.com/samirrijal/reproj/internal/adapters/postgres"
	"github.com/samirrijal/reproj/internal/adapters/projection"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/pkg/config"
	"github.com/samirrijal/reproj/internal/pkg/logging"
	"github.com/samirrijal/reproj/internal/pkg/telemetry"
	"github.com/samirrijal/reproj/internal/reproject"
	"github.com/samirrijal/reproj/internal/workflows"
)

func main() {
	cfg, err := config.Load("reproj-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("reproj-worker", cfg.Log.Level, cfg.Log.Format)

	ctx := context.Background()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Jobs live in postgres; the worker has nothing to do without it.
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	registry, err := cfg.Systems.Registry()
	if err != nil {
		log.Fatalf("systems: %v", err)
	}
	projector := projection.New(registry)
	engine := reproject.NewEngine(cfg.Transform.MaxDepth, cfg.Transform.KeepExtraDimensions)

	// Job transforms are audited like synchronous ones when NATS is on.
	var publisher ports.EventPublisher
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
		}
	}

	transforms := usecases.NewTransformService(projector, engine, nil, publisher, time.Duration(cfg.Transform.CacheTTL)*time.Second)
	jobs := usecases.NewJobService(postgres.NewJobRepo(db), nil, projector, transforms)

	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
		Logger:    tlog.NewStructuredLogger(slog.Default()),
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	// Register workflow & activities
	w.RegisterWorkflow(workflows.ReprojectJobWorkflow)
	w.RegisterActivity(&workflows.JobActivities{Jobs: jobs})

	slog.Info("job worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
