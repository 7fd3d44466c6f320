package telemetry

import "go.opentelemetry.io/otel/attribute"

// Span attribute keys used for instrumentation.
const (
	AttrZone     = attribute.Key("reproj.zone")
	AttrDest     = attribute.Key("reproj.dest")
	AttrStrategy = attribute.Key("reproj.strategy")
	AttrPairs    = attribute.Key("reproj.pairs")
	AttrOrigin   = attribute.Key("reproj.origin")
	AttrJobID    = attribute.Key("reproj.job_id")
)

// TracerName is the instrumentation scope for spans opened by this module.
const TracerName = "github.com/samirrijal/reproj"
