package natsadapter

import (
	"testing"
	"time"

	"github.com/samirrijal/reproj/internal/core/domain"
)

func TestEventCodec(t *testing.T) {
	in := &domain.TransformEvent{
		ID:         "0b6f1a8e-1111-4c2d-9e0f-000000000001",
		RequestID:  "req-9",
		Zone:       "30N",
		Dest:       "WGS84",
		Origin:     domain.OriginGet,
		Strategy:   "point",
		Pairs:      1,
		Success:    true,
		DurationMs: 0.25,
		Time:       time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC),
	}

	data, err := encodeEvent(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := decodeEvent(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestDecodeEvent_RequiresID(t *testing.T) {
	data, err := encodeEvent(&domain.TransformEvent{Zone: "30N"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := decodeEvent(data); err == nil {
		t.Error("expected error for event without id")
	}
}

func TestSubjectFor(t *testing.T) {
	if got := subjectFor(&domain.TransformEvent{Zone: "31N"}); got != "reproj.transform.31N" {
		t.Errorf("unexpected subject %s", got)
	}
	if got := subjectFor(&domain.TransformEvent{}); got != "reproj.transform.unknown" {
		t.Errorf("unexpected subject %s", got)
	}
}
