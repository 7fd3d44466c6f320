package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
	"github.com/samirrijal/reproj/internal/pkg/telemetry"
	"github.com/samirrijal/reproj/internal/reproject"
)

// JobService runs payload transformations asynchronously.
type JobService struct {
	jobs       ports.JobRepository
	starter    ports.WorkflowStarter
	projector  ports.Projector
	transforms *TransformService
}

// NewJobService creates a new JobService. Without a repository or a workflow
// starter every call fails with domain.ErrUnavailable.
func NewJobService(
	jobs ports.JobRepository,
	starter ports.WorkflowStarter,
	projector ports.Projector,
	transforms *TransformService,
) *JobService {
	return &JobService{jobs: jobs, starter: starter, projector: projector, transforms: transforms}
}

// Submit stores body as a pending job and starts its workflow.
func (s *JobService) Submit(ctx context.Context, zone, dest string, body []byte) (*domain.Job, error) {
	if s.jobs == nil || s.starter == nil {
		return nil, domain.ErrUnavailable
	}
	if _, err := s.projector.Bind(zone, dest); err != nil {
		return nil, err
	}
	if _, err := reproject.Decode(body); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.NewString(),
		Zone:      strings.ToUpper(zone),
		Dest:      strings.ToUpper(dest),
		Status:    domain.JobPending,
		Input:     body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	if err := s.starter.StartJob(ctx, job.ID); err != nil {
		if ferr := s.jobs.Fail(ctx, job.ID, "workflow not started"); ferr != nil {
			slog.WarnContext(ctx, "mark unstarted job failed", "job_id", job.ID, "error", ferr)
		}
		return nil, fmt.Errorf("start job workflow: %w", err)
	}

	metrics.JobsSubmitted.Inc()
	return job, nil
}

// Get returns a job by ID.
func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	if s.jobs == nil {
		return nil, domain.ErrUnavailable
	}
	return s.jobs.GetByID(ctx, id)
}

// Run transforms the stored payload of a job and stores the result. Jobs that
// already finished are left alone so retries are harmless.
func (s *JobService) Run(ctx context.Context, id string) (err error) {
	if s.jobs == nil {
		return domain.ErrUnavailable
	}
	ctx, span := otel.Tracer(telemetry.TracerName).Start(ctx, "RunJob",
		trace.WithAttributes(telemetry.AttrJobID.String(id)))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load job: %w", err)
	}
	if job.Done() {
		return nil
	}
	if err := s.jobs.MarkRunning(ctx, id); err != nil {
		return fmt.Errorf("mark running: %w", err)
	}

	raw, err := reproject.Decode(job.Input)
	if err != nil {
		return err
	}
	out, stats, err := s.transforms.TransformPayload(WithOrigin(ctx, domain.OriginJob), job.Zone, job.Dest, raw)
	if err != nil {
		return err
	}
	data, err := reproject.Encode(out)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := s.jobs.Complete(ctx, id, data, stats.Pairs); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// Fail records reason as the final error of a job.
func (s *JobService) Fail(ctx context.Context, id, reason string) error {
	if s.jobs == nil {
		return domain.ErrUnavailable
	}
	return s.jobs.Fail(ctx, id, reason)
}
