package workflows

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/reproject"
)

// JobRunner executes and finalizes stored jobs.
type JobRunner interface {
	Run(ctx context.Context, id string) error
	Fail(ctx context.Context, id, reason string) error
}

// JobActivities holds the activity implementations for the job workflow.
type JobActivities struct {
	Jobs JobRunner
}

// RunTransformJob transforms the payload stored with a job. Payload problems
// are reported as non-retryable since another attempt cannot succeed.
func (a *JobActivities) RunTransformJob(ctx context.Context, jobID string) error {
	err := a.Jobs.Run(ctx, jobID)
	if err == nil {
		return nil
	}
	activity.GetLogger(ctx).Warn("transform job failed", "job_id", jobID, "error", err)

	if permanent(err) {
		return temporal.NewNonRetryableApplicationError(err.Error(), errorType(err), err)
	}
	return fmt.Errorf("run job %s: %w", jobID, err)
}

// MarkJobFailed stores the failure reason (saga compensation).
func (a *JobActivities) MarkJobFailed(ctx context.Context, jobID, reason string) error {
	if err := a.Jobs.Fail(ctx, jobID, reason); err != nil {
		return fmt.Errorf("mark job %s failed: %w", jobID, err)
	}
	return nil
}

func permanent(err error) bool {
	return errors.Is(err, reproject.ErrTransform) ||
		errors.Is(err, reproject.ErrInputShape) ||
		errors.Is(err, reproject.ErrInvalidJSON) ||
		errors.Is(err, domain.ErrUnknownZone) ||
		errors.Is(err, domain.ErrUnknownDestination) ||
		errors.Is(err, domain.ErrNotFound)
}

func errorType(err error) string {
	switch {
	case errors.Is(err, reproject.ErrTransform):
		return "TransformError"
	case errors.Is(err, reproject.ErrInputShape), errors.Is(err, reproject.ErrInvalidJSON):
		return "InputShapeError"
	default:
		return "InvalidJob"
	}
}
