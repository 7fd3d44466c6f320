package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	natsadapter "github.com/samirrijal/reproj/internal/adapters/nats"
	"github.com/samirrijal/reproj/internal/adapters/postgres"
	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/usecases"
	"github.com/samirrijal/reproj/internal/pkg/config"
	"github.com/samirrijal/reproj/internal/pkg/logging"
)

// The auditor drains transform events from JetStream into postgres.
func main() {
	cfg, err := config.Load("reproj-auditor")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup("reproj-auditor", cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer sub.Close()

	audit := usecases.NewAuditService(postgres.NewTransformEventRepo(db))

	err = sub.SubscribeTransforms(ctx, func(ctx context.Context, event *domain.TransformEvent) error {
		if err := audit.Record(ctx, event); err != nil {
			slog.Error("record transform event", "id", event.ID, "error", err)
			return err
		}
		slog.Debug("transform event recorded", "id", event.ID, "zone", event.Zone, "pairs", event.Pairs)
		return nil
	})
	if err != nil {
		log.Fatalf("subscribe: %v", err)
	}

	slog.Info("auditor started", "nats", cfg.NATS.URL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down auditor", "signal", sig.String())
}
