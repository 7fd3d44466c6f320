package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/samirrijal/reproj/internal/proj"
	"github.com/samirrijal/reproj/internal/reproject"
)

func TestRun_GeoJSONKeepsProperties(t *testing.T) {
	in := `{"type":"Feature","properties":{"name":"Santander","pop":172000},"geometry":{"type":"Point","coordinates":[433829.9531810064,4811755.32568882]}}`
	out, stats, err := run(context.Background(), Options{Zone: "30N", Dest: "WGS84", Format: "json"}, strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Pairs != 1 || stats.Strategy != reproject.StrategyGeoJSON {
		t.Errorf("unexpected stats %+v", stats)
	}
	s := string(out)
	if !strings.Contains(s, `"pop":172000`) || !strings.Contains(s, `"name":"Santander"`) {
		t.Errorf("properties not preserved: %s", s)
	}
	if !strings.Contains(s, `-3.819`) || !strings.Contains(s, `43.453`) {
		t.Errorf("coordinates not converted: %s", s)
	}
}

func TestRun_YAMLRendersNumbers(t *testing.T) {
	out, _, err := run(context.Background(), Options{Zone: "30N", Dest: "ETRS89", Format: "yaml"},
		strings.NewReader(`{"type":"Point","coordinates":[433829.95,4811755.33],"id":7}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc struct {
		Type        string    `yaml:"type"`
		Coordinates []float64 `yaml:"coordinates"`
		ID          int       `yaml:"id"`
	}
	if err := yaml.Unmarshal(out, &doc); err != nil {
		t.Fatalf("yaml: %v\n%s", err, out)
	}
	if doc.Type != "Point" || doc.ID != 7 || len(doc.Coordinates) != 2 {
		t.Errorf("unexpected document %+v", doc)
	}
	if strings.Contains(string(out), `"7"`) {
		t.Errorf("numbers must not be quoted:\n%s", out)
	}
}

func TestRun_Pretty(t *testing.T) {
	out, _, err := run(context.Background(), Options{Zone: "30N", Dest: "WGS84", Format: "json", Pretty: true},
		strings.NewReader(`[[433829.95,4811755.33]]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(out), "\n  ") {
		t.Errorf("expected indented output, got %s", out)
	}
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		in   string
		want error
	}{
		{"unknown zone", Options{Zone: "28N", Dest: "WGS84"}, `[[1,2]]`, proj.ErrUnknownSource},
		{"invalid json", Options{Zone: "30N", Dest: "WGS84"}, `[[1,2]`, reproject.ErrInvalidJSON},
		{"short pair", Options{Zone: "30N", Dest: "WGS84"}, `[[433829.95]]`, reproject.ErrTransform},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(context.Background(), tt.opts, strings.NewReader(tt.in))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}
