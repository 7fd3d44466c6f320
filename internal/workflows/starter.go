package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"
)

// Starter implements ports.WorkflowStarter on a Temporal client.
type Starter struct {
	client    client.Client
	taskQueue string
}

func NewStarter(c client.Client, taskQueue string) *Starter {
	return &Starter{client: c, taskQueue: taskQueue}
}

// StartJob starts ReprojectJobWorkflow with a workflow ID derived from jobID.
func (s *Starter) StartJob(ctx context.Context, jobID string) error {
	_, err := s.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        WorkflowID(jobID),
		TaskQueue: s.taskQueue,
	}, ReprojectJobWorkflow, JobInput{JobID: jobID})
	if err != nil {
		return fmt.Errorf("execute workflow: %w", err)
	}
	return nil
}

// Ping reports whether the Temporal frontend answers health checks.
func (s *Starter) Ping(ctx context.Context) error {
	if _, err := s.client.CheckHealth(ctx, &client.CheckHealthRequest{}); err != nil {
		return fmt.Errorf("temporal: %w", err)
	}
	return nil
}

// WorkflowID returns the workflow ID used for a job.
func WorkflowID(jobID string) string {
	return "reproject-job-" + jobID
}
