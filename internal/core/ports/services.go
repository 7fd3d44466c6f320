package ports

import (
	"context"
	"time"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// Projector resolves reference systems and binds a pair transform to them.
// Unknown codes fail with domain.ErrUnknownZone or domain.ErrUnknownDestination.
type Projector interface {
	Bind(zone, dest string) (func(x, y float64) (float64, float64, error), error)
	Systems() domain.Systems
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishTransform(ctx context.Context, event *domain.TransformEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeTransforms(ctx context.Context, handler func(ctx context.Context, event *domain.TransformEvent) error) error
}

// PointCache caches single-pair results.
type PointCache interface {
	GetPoint(ctx context.Context, key string) ([2]float64, bool, error)
	SetPoint(ctx context.Context, key string, p [2]float64, ttl time.Duration) error
}

// WorkflowStarter starts the asynchronous job workflow.
type WorkflowStarter interface {
	StartJob(ctx context.Context, jobID string) error
}
