package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"
	tlog "go.temporal.io/sdk/log"

	"github.com/samirrijal/reproj/internal/adapters/http"
	natsadapter "github.com/samirrijal/reproj/internal/adapters/nats"
	"github.com/samirrijal/reproj/internal/adapters/postgres"
	"github.com/samirrijal/reproj/internal/adapters/projection"
	"github.com/samirrijal/reproj/internal/adapters/valkey"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/pkg/config"
	"github.com/samirrijal/reproj/internal/pkg/logging"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
	"github.com/samirrijal/reproj/internal/pkg/telemetry"
	"github.com/samirrijal/reproj/internal/reproject"
	"github.com/samirrijal/reproj/internal/workflows"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load("reproj-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Setup("reproj-api", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	registry, err := cfg.Systems.Registry()
	if err != nil {
		log.Fatalf("systems: %v", err)
	}
	projector := projection.New(registry)
	engine := reproject.NewEngine(cfg.Transform.MaxDepth, cfg.Transform.KeepExtraDimensions)

	checks := map[string]http.Pinger{}

	// Database (jobs + audit stats)
	var (
		jobRepo   ports.JobRepository
		eventRepo ports.TransformEventRepository
	)
	checks["postgres"] = nil
	if cfg.Database.Enabled {
		db, err := postgres.New(ctx, cfg.Database.DSN())
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		jobRepo = postgres.NewJobRepo(db)
		eventRepo = postgres.NewTransformEventRepo(db)
		checks["postgres"] = db
		go reportPoolStats(ctx, db)
	}

	// Cache
	var pointCache ports.PointCache
	checks["valkey"] = nil
	if cfg.Valkey.Enabled {
		cache, err := valkey.New(cfg.Valkey.Addr)
		if err != nil {
			slog.Warn("valkey unavailable", "error", err)
		} else {
			defer cache.Close()
			pointCache = cache
			checks["valkey"] = cache
		}
	}

	// NATS
	var publisher ports.EventPublisher
	checks["nats"] = nil
	if cfg.NATS.Enabled {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			defer pub.Close()
			publisher = pub
			checks["nats"] = pub
		}
	}

	// Temporal
	var starter ports.WorkflowStarter
	checks["temporal"] = nil
	if cfg.Temporal.Enabled {
		tc, err := client.Dial(client.Options{
			HostPort:  cfg.Temporal.HostPort,
			Namespace: cfg.Temporal.Namespace,
			Logger:    tlog.NewStructuredLogger(slog.Default()),
		})
		if err != nil {
			slog.Warn("temporal unavailable, async jobs disabled", "error", err)
		} else {
			defer tc.Close()
			s := workflows.NewStarter(tc, cfg.Temporal.TaskQueue)
			starter = s
			checks["temporal"] = s
		}
	}

	// Use cases
	cacheTTL := time.Duration(cfg.Transform.CacheTTL) * time.Second
	transformSvc := usecases.NewTransformService(projector, engine, pointCache, publisher, cacheTTL)

	deps := &http.Dependencies{
		Transforms:     transformSvc,
		Checks:         checks,
		RequestTimeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		RateLimit:      cfg.Server.RateLimit,
		Version:        version,
	}
	if jobRepo != nil && starter != nil {
		deps.Jobs = usecases.NewJobService(jobRepo, starter, projector, transformSvc)
	}
	if eventRepo != nil {
		deps.Audit = usecases.NewAuditService(eventRepo)
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
		AppName:      "reproj API",
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
		ErrorHandler: http.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept",
		ExposeHeaders:    "X-Reproj-Pairs, X-Reproj-Strategy, X-Request-ID, Location",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr, "version", version,
			"jobs", deps.Jobs != nil, "audit", deps.Audit != nil)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}

// reportPoolStats keeps the connection pool gauges current.
func reportPoolStats(ctx context.Context, db *postgres.DB) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		metrics.UpdateDBPoolMetrics(db.Pool.Stat())
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}
