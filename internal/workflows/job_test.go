package workflows_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.temporal.io/sdk/testsuite"

	"github.com/samirrijal/reproj/internal/reproject"
	"github.com/samirrijal/reproj/internal/workflows"
)

type fakeRunner struct {
	runErr error
	runs   int
	failed map[string]string
	failFn func(id, reason string) error
}

func (f *fakeRunner) Run(ctx context.Context, id string) error {
	f.runs++
	return f.runErr
}

func (f *fakeRunner) Fail(ctx context.Context, id, reason string) error {
	if f.failed == nil {
		f.failed = map[string]string{}
	}
	f.failed[id] = reason
	if f.failFn != nil {
		return f.failFn(id, reason)
	}
	return nil
}

func runWorkflow(t *testing.T, runner *fakeRunner) error {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(workflows.ReprojectJobWorkflow)
	env.RegisterActivity(&workflows.JobActivities{Jobs: runner})

	env.ExecuteWorkflow(workflows.ReprojectJobWorkflow, workflows.JobInput{JobID: "job-1"})
	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	return env.GetWorkflowError()
}

func TestReprojectJobWorkflow_Success(t *testing.T) {
	runner := &fakeRunner{}
	if err := runWorkflow(t, runner); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if runner.runs != 1 {
		t.Errorf("expected 1 run, got %d", runner.runs)
	}
	if len(runner.failed) != 0 {
		t.Errorf("job marked failed: %v", runner.failed)
	}
}

func TestReprojectJobWorkflow_TransformErrorIsNotRetried(t *testing.T) {
	runner := &fakeRunner{runErr: &reproject.TransformError{Path: "$.coordinates", Reason: "coordinate pair needs 2 elements, got 1"}}

	if err := runWorkflow(t, runner); err == nil {
		t.Fatal("expected workflow error")
	}
	if runner.runs != 1 {
		t.Errorf("expected a single attempt, got %d", runner.runs)
	}
	reason := runner.failed["job-1"]
	if !strings.Contains(reason, "$.coordinates") {
		t.Errorf("failure reason %q lacks the pair path", reason)
	}
}

func TestReprojectJobWorkflow_TransientErrorRetried(t *testing.T) {
	runner := &fakeRunner{runErr: errors.New("connection reset")}

	if err := runWorkflow(t, runner); err == nil {
		t.Fatal("expected workflow error")
	}
	if runner.runs != 3 {
		t.Errorf("expected 3 attempts, got %d", runner.runs)
	}
	if _, ok := runner.failed["job-1"]; !ok {
		t.Error("job not marked failed after retries")
	}
}

func TestReprojectJobWorkflow_CompensationFailureKeepsOriginalError(t *testing.T) {
	runner := &fakeRunner{
		runErr: &reproject.InputShapeError{Reason: "too deep"},
		failFn: func(id, reason string) error { return fmt.Errorf("db down") },
	}

	err := runWorkflow(t, runner)
	if err == nil || !strings.Contains(err.Error(), "too deep") {
		t.Fatalf("expected original error, got %v", err)
	}
}

func TestWorkflowID(t *testing.T) {
	if got := workflows.WorkflowID("abc"); got != "reproject-job-abc" {
		t.Errorf("unexpected workflow id %s", got)
	}
}
