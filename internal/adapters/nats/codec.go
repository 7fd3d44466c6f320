package natsadapter

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/samirrijal/reproj/internal/core/domain"
)

// Transform events travel as protobuf-encoded google.protobuf.Struct values so
// consumers need no generated code.

func encodeEvent(e *domain.TransformEvent) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]any{
		"id":          e.ID,
		"request_id":  e.RequestID,
		"zone":        e.Zone,
		"dest":        e.Dest,
		"origin":      string(e.Origin),
		"strategy":    e.Strategy,
		"pairs":       e.Pairs,
		"success":     e.Success,
		"error":       e.Error,
		"duration_ms": e.DurationMs,
		"time":        e.Time.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, fmt.Errorf("build event struct: %w", err)
	}
	return proto.Marshal(s)
}

func decodeEvent(data []byte) (*domain.TransformEvent, error) {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	f := s.GetFields()

	e := &domain.TransformEvent{
		ID:         f["id"].GetStringValue(),
		RequestID:  f["request_id"].GetStringValue(),
		Zone:       f["zone"].GetStringValue(),
		Dest:       f["dest"].GetStringValue(),
		Origin:     domain.Origin(f["origin"].GetStringValue()),
		Strategy:   f["strategy"].GetStringValue(),
		Pairs:      int(f["pairs"].GetNumberValue()),
		Success:    f["success"].GetBoolValue(),
		Error:      f["error"].GetStringValue(),
		DurationMs: f["duration_ms"].GetNumberValue(),
	}
	if e.ID == "" {
		return nil, fmt.Errorf("event without id")
	}
	if ts := f["time"].GetStringValue(); ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("event time: %w", err)
		}
		e.Time = t
	}
	return e, nil
}
