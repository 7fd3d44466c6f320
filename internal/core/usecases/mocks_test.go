package usecases_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// --- Mock Projector ---

type mockProjector struct {
	bindFn func(zone, dest string) (func(x, y float64) (float64, float64, error), error)
}

func shift(x, y float64) (float64, float64, error) { return x + 1, y * 10, nil }

// newProjector knows zone 30N and destination WGS84 and binds them to shift.
func newProjector() *mockProjector {
	return &mockProjector{
		bindFn: func(zone, dest string) (func(x, y float64) (float64, float64, error), error) {
			if !strings.EqualFold(zone, "30N") {
				return nil, domain.ErrUnknownZone
			}
			if !strings.EqualFold(dest, "WGS84") {
				return nil, domain.ErrUnknownDestination
			}
			return shift, nil
		},
	}
}

func (m *mockProjector) Bind(zone, dest string) (func(x, y float64) (float64, float64, error), error) {
	return m.bindFn(zone, dest)
}

func (m *mockProjector) Systems() domain.Systems {
	return domain.Systems{
		Sources:      []domain.System{{Code: "30N", EPSG: 23030, Name: "ED50 / UTM zone 30N"}},
		Destinations: []domain.System{{Code: "WGS84", EPSG: 4326, Name: "WGS 84"}},
	}
}

// --- Mock PointCache ---

type mockCache struct {
	mu     sync.Mutex
	points map[string][2]float64
	sets   int
}

func newCache() *mockCache { return &mockCache{points: map[string][2]float64{}} }

func (m *mockCache) GetPoint(ctx context.Context, key string) ([2]float64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.points[key]
	return p, ok, nil
}

func (m *mockCache) SetPoint(ctx context.Context, key string, p [2]float64, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points[key] = p
	m.sets++
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu     sync.Mutex
	events []*domain.TransformEvent
	err    error
}

func (m *mockPublisher) PublishTransform(ctx context.Context, event *domain.TransformEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

// --- Mock JobRepository ---

type mockJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
	err  error
}

func newJobRepo() *mockJobRepo { return &mockJobRepo{jobs: map[string]*domain.Job{}} }

func (m *mockJobRepo) Create(ctx context.Context, job *domain.Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *mockJobRepo) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *mockJobRepo) MarkRunning(ctx context.Context, id string) error {
	return m.update(id, func(j *domain.Job) { j.Status = domain.JobRunning })
}

func (m *mockJobRepo) Complete(ctx context.Context, id string, output json.RawMessage, pairs int) error {
	return m.update(id, func(j *domain.Job) {
		j.Status = domain.JobSucceeded
		j.Output = output
		j.Pairs = pairs
	})
}

func (m *mockJobRepo) Fail(ctx context.Context, id string, reason string) error {
	return m.update(id, func(j *domain.Job) {
		j.Status = domain.JobFailed
		j.Error = reason
	})
}

func (m *mockJobRepo) update(id string, fn func(*domain.Job)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return domain.ErrNotFound
	}
	fn(j)
	return nil
}

// --- Mock WorkflowStarter ---

type mockStarter struct {
	startFn func(ctx context.Context, jobID string) error
	started []string
}

func (m *mockStarter) StartJob(ctx context.Context, jobID string) error {
	m.started = append(m.started, jobID)
	if m.startFn != nil {
		return m.startFn(ctx, jobID)
	}
	return nil
}

// --- Mock TransformEventRepository ---

type mockEventRepo struct {
	insertFn func(ctx context.Context, event *domain.TransformEvent) error
	statsFn  func(ctx context.Context) (*domain.AuditStats, error)
}

func (m *mockEventRepo) Insert(ctx context.Context, event *domain.TransformEvent) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, event)
	}
	return nil
}

func (m *mockEventRepo) Stats(ctx context.Context) (*domain.AuditStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx)
	}
	return nil, errors.New("not implemented")
}
