package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/core/ports"
	"github.com/samirrijal/reproj/internal/geojson"
	"github.com/samirrijal/reproj/internal/pkg/metrics"
	"github.com/samirrijal/reproj/internal/pkg/telemetry"
	"github.com/samirrijal/reproj/internal/reproject"
)

// TransformService reprojects single points and whole payloads.
type TransformService struct {
	projector ports.Projector
	engine    *reproject.Engine
	cache     ports.PointCache
	publisher ports.EventPublisher
	cacheTTL  time.Duration
	tracer    trace.Tracer
}

// NewTransformService creates a new TransformService. cache and publisher may be nil.
func NewTransformService(
	projector ports.Projector,
	engine *reproject.Engine,
	cache ports.PointCache,
	publisher ports.EventPublisher,
	cacheTTL time.Duration,
) *TransformService {
	return &TransformService{
		projector: projector,
		engine:    engine,
		cache:     cache,
		publisher: publisher,
		cacheTTL:  cacheTTL,
		tracer:    otel.Tracer(telemetry.TracerName),
	}
}

// Systems lists the reference systems that can be addressed.
func (s *TransformService) Systems() domain.Systems {
	return s.projector.Systems()
}

// CheckSystems reports whether zone and dest are registered.
func (s *TransformService) CheckSystems(zone, dest string) error {
	_, err := s.projector.Bind(zone, dest)
	return err
}

// TransformPoint converts the pair given as raw query strings.
func (s *TransformService) TransformPoint(ctx context.Context, zone, dest, xStr, yStr string) ([2]float64, error) {
	fn, err := s.projector.Bind(zone, dest)
	if err != nil {
		return [2]float64{}, err
	}

	xStr, yStr = strings.TrimSpace(xStr), strings.TrimSpace(yStr)
	if xStr == "" || yStr == "" {
		return [2]float64{}, &reproject.InputShapeError{Reason: "both x and y are required"}
	}
	x, err := parseCoordinate("x", xStr)
	if err != nil {
		return [2]float64{}, err
	}
	y, err := parseCoordinate("y", yStr)
	if err != nil {
		return [2]float64{}, err
	}

	ctx, span := s.tracer.Start(ctx, "TransformPoint", trace.WithAttributes(
		telemetry.AttrZone.String(zone), telemetry.AttrDest.String(dest),
	))
	defer span.End()

	key := pointKey(zone, dest, x, y)
	if s.cache != nil {
		if p, ok, err := s.cache.GetPoint(ctx, key); err == nil && ok {
			metrics.CacheHits.WithLabelValues("point").Inc()
			return p, nil
		}
		metrics.CacheMisses.WithLabelValues("point").Inc()
	}

	start := time.Now()
	p, err := reproject.TransformPoint(fn, x, y)
	pairs := 1
	if err != nil {
		pairs = 0
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.record(ctx, zone, dest, "point", pairs, time.Since(start), err)
	if err != nil {
		return [2]float64{}, err
	}

	if s.cache != nil {
		if err := s.cache.SetPoint(ctx, key, p, s.cacheTTL); err != nil {
			slog.DebugContext(ctx, "point cache set failed", "error", err)
		}
	}
	return p, nil
}

// TransformPayload converts every coordinate pair inside raw. On failure raw
// is returned untouched.
func (s *TransformService) TransformPayload(ctx context.Context, zone, dest string, raw any) (any, reproject.Stats, error) {
	fn, err := s.projector.Bind(zone, dest)
	if err != nil {
		return raw, reproject.Stats{}, err
	}

	ctx, span := s.tracer.Start(ctx, "TransformPayload", trace.WithAttributes(
		telemetry.AttrZone.String(zone), telemetry.AttrDest.String(dest),
		telemetry.AttrOrigin.String(string(originFrom(ctx))),
	))
	defer span.End()

	start := time.Now()
	out, stats, err := s.engine.TransformPayload(ctx, raw, fn, geojson.IsGeoJSON)
	elapsed := time.Since(start)

	span.SetAttributes(
		telemetry.AttrStrategy.String(string(stats.Strategy)),
		telemetry.AttrPairs.Int(stats.Pairs),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.TransformDuration.WithLabelValues(string(stats.Strategy)).Observe(elapsed.Seconds())
	s.record(ctx, zone, dest, string(stats.Strategy), stats.Pairs, elapsed, err)

	if err != nil {
		return raw, stats, err
	}
	if stats.Strategy == reproject.StrategyGeoJSON {
		slog.DebugContext(ctx, "geojson transformed",
			"geometries", geojson.GeometryCount(raw), "pairs", stats.Pairs)
	}
	return out, stats, nil
}

func (s *TransformService) record(ctx context.Context, zone, dest, strategy string, pairs int, elapsed time.Duration, err error) {
	zone, dest = strings.ToUpper(zone), strings.ToUpper(dest)

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.TransformRequests.WithLabelValues(zone, dest, strategy, outcome).Inc()
	if pairs > 0 {
		metrics.TransformPairs.WithLabelValues(zone, dest).Add(float64(pairs))
	}

	if s.publisher == nil {
		return
	}
	event := &domain.TransformEvent{
		ID:         uuid.NewString(),
		RequestID:  requestIDFrom(ctx),
		Zone:       zone,
		Dest:       dest,
		Origin:     originFrom(ctx),
		Strategy:   strategy,
		Pairs:      pairs,
		Success:    err == nil,
		DurationMs: float64(elapsed.Microseconds()) / 1000,
		Time:       time.Now().UTC(),
	}
	if err != nil {
		event.Error = err.Error()
	}
	// Best-effort; the response does not depend on the audit trail.
	if err := s.publisher.PublishTransform(ctx, event); err != nil {
		slog.WarnContext(ctx, "publish transform event", "error", err)
	}
}

func parseCoordinate(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, &reproject.InputShapeError{Reason: fmt.Sprintf("%s is out of range", name)}
		}
		return 0, &reproject.InputShapeError{Reason: fmt.Sprintf("%s must be a number, got %q", name, raw)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &reproject.InputShapeError{Reason: fmt.Sprintf("%s must be finite", name)}
	}
	return v, nil
}

func pointKey(zone, dest string, x, y float64) string {
	return "point:" + strings.ToUpper(zone) + ":" + strings.ToUpper(dest) + ":" +
		strconv.FormatFloat(x, 'g', -1, 64) + ":" + strconv.FormatFloat(y, 'g', -1, 64)
}
