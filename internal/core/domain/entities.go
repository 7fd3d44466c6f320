package domain

import (
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrUnknownZone        = errors.New("unknown zone")
	ErrUnknownDestination = errors.New("unknown destination system")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("dependency unavailable")
)

// System describes a reference system clients can address by code.
type System struct {
	Code string `json:"code"`
	EPSG int    `json:"epsg"`
	Name string `json:"name"`
}

// Systems lists the source zones and destination systems on offer.
type Systems struct {
	Sources      []System `json:"sources"`
	Destinations []System `json:"destinations"`
}

// Origin names the surface a transformation was requested through.
type Origin string

const (
	OriginGet       Origin = "get"
	OriginPost      Origin = "post"
	OriginGraphQL   Origin = "graphql"
	OriginWebSocket Origin = "websocket"
	OriginJob       Origin = "job"
)

// TransformEvent records one completed (or failed) transformation.
type TransformEvent struct {
	ID         string    `json:"id"`
	RequestID  string    `json:"request_id,omitempty"`
	Zone       string    `json:"zone"`
	Dest       string    `json:"dest"`
	Origin     Origin    `json:"origin"`
	Strategy   string    `json:"strategy,omitempty"`
	Pairs      int       `json:"pairs"`
	Success    bool      `json:"success"`
	Error      string    `json:"error,omitempty"`
	DurationMs float64   `json:"duration_ms"`
	Time       time.Time `json:"time"`
}

// AuditStats aggregates stored transform events.
type AuditStats struct {
	Requests int64            `json:"requests"`
	Pairs    int64            `json:"pairs"`
	Failures int64            `json:"failures"`
	ByZone   map[string]int64 `json:"by_zone"`
	Last     *time.Time       `json:"last_event,omitempty"`
}

// JobStatus is the lifecycle state of an asynchronous job.
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobSucceeded JobStatus = "succeeded"
	JobFailed    JobStatus = "failed"
)

// Job is an asynchronous transformation of a stored payload.
type Job struct {
	ID        string          `json:"id"`
	Zone      string          `json:"zone"`
	Dest      string          `json:"dest"`
	Status    JobStatus       `json:"status"`
	Input     json.RawMessage `json:"-"`
	Output    json.RawMessage `json:"result,omitempty"`
	Pairs     int             `json:"pairs"`
	Error     string          `json:"error,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Done reports whether the job reached a final state.
func (j *Job) Done() bool {
	return j.Status == JobSucceeded || j.Status == JobFailed
}
