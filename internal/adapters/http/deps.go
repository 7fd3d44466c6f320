package http

import (
	"context"
	"time"

	"github.com/samirrijal/reproj/internal/core/usecases"
)

// Pinger is a dependency whose reachability is reported by /v1/ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Transforms *usecases.TransformService
	Jobs       *usecases.JobService
	Audit      *usecases.AuditService

	// Optional integrations checked by /v1/ready, keyed by name. A nil entry
	// is reported as "not configured".
	Checks map[string]Pinger

	RequestTimeout time.Duration
	RateLimit      int
	Version        string
	OpenAPIPath    string
}

func (d *Dependencies) requestTimeout() time.Duration {
	if d.RequestTimeout <= 0 {
		return 15 * time.Second
	}
	return d.RequestTimeout
}

func (d *Dependencies) rateLimit() int {
	if d.RateLimit <= 0 {
		return 120
	}
	return d.RateLimit
}

func (d *Dependencies) openAPIPath() string {
	if d.OpenAPIPath == "" {
		return "api/openapi.yaml"
	}
	return d.OpenAPIPath
}
