package workflows

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// JobInput is the input for the job workflow.
type JobInput struct {
	JobID string
}

// ReprojectJobWorkflow runs a stored transformation job. When the transform
// fails for good the job is marked failed (saga compensation).
func ReprojectJobWorkflow(ctx workflow.Context, input JobInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting reproject job", "jobID", input.JobID)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})

	err := workflow.ExecuteActivity(ctx, "RunTransformJob", input.JobID).Get(ctx, nil)
	if err == nil {
		logger.Info("Reproject job finished", "jobID", input.JobID)
		return nil
	}

	logger.Warn("reproject job failed, compensating", "jobID", input.JobID, "error", err)
	if ferr := workflow.ExecuteActivity(ctx, "MarkJobFailed", input.JobID, failureReason(err)).Get(ctx, nil); ferr != nil {
		logger.Error("could not mark job failed", "jobID", input.JobID, "error", ferr)
	}
	return err
}

func failureReason(err error) string {
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}
