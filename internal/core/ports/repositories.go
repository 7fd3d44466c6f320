package ports

import (
	"context"
	"encoding/json"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// JobRepository persists asynchronous jobs.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	GetByID(ctx context.Context, id string) (*domain.Job, error)
	MarkRunning(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, output json.RawMessage, pairs int) error
	Fail(ctx context.Context, id string, reason string) error
}

// TransformEventRepository persists the transform audit trail.
type TransformEventRepository interface {
	Insert(ctx context.Context, event *domain.TransformEvent) error
	Stats(ctx context.Context) (*domain.AuditStats, error)
}
