package usecases

import (
	"context"
	"fmt"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
)

// AuditService keeps the transform audit trail.
type AuditService struct {
	events ports.TransformEventRepository
}

// NewAuditService creates a new AuditService. A nil repository makes every
// call fail with domain.ErrUnavailable.
func NewAuditService(events ports.TransformEventRepository) *AuditService {
	return &AuditService{events: events}
}

// Record persists one transform event.
func (s *AuditService) Record(ctx context.Context, event *domain.TransformEvent) error {
	if s.events == nil {
		return domain.ErrUnavailable
	}
	if event.ID == "" {
		return fmt.Errorf("transform event without id")
	}
	if err := s.events.Insert(ctx, event); err != nil {
		metrics.EventsAudited.WithLabelValues("error").Inc()
		return fmt.Errorf("insert transform event: %w", err)
	}
	outcome := "success"
	if !event.Success {
		outcome = "failure"
	}
	metrics.EventsAudited.WithLabelValues(outcome).Inc()
	return nil
}

// Stats returns totals over every recorded event.
func (s *AuditService) Stats(ctx context.Context) (*domain.AuditStats, error) {
	if s.events == nil {
		return nil, domain.ErrUnavailable
	}
	return s.events.Stats(ctx)
}
