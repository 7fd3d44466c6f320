package geojson_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/samirrijal/reproj/internal/geojson"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return v
}

func TestIsGeoJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"point", `{"type":"Point","coordinates":[1,2]}`, true},
		{"polygon", `{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}`, true},
		{"geometry collection", `{"type":"GeometryCollection","geometries":[]}`, true},
		{"feature", `{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}}`, true},
		{"feature null geometry", `{"type":"Feature","properties":{},"geometry":null}`, true},
		{"feature collection", `{"type":"FeatureCollection","features":[]}`, true},
		{"missing coordinates", `{"type":"Point"}`, false},
		{"string coordinates", `{"type":"Point","coordinates":"1,2"}`, false},
		{"feature without geometry", `{"type":"Feature","properties":{}}`, false},
		{"feature with bad geometry", `{"type":"Feature","geometry":{"type":"Circle"}}`, false},
		{"unknown type", `{"type":"Circle","coordinates":[1,2]}`, false},
		{"no type", `{"coordinates":[1]}`, false},
		{"array", `[[1,2]]`, false},
		{"scalar", `3`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := geojson.IsGeoJSON(decode(t, tt.in)); got != tt.want {
				t.Errorf("IsGeoJSON(%s) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestGeometryCount(t *testing.T) {
	in := `{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[1,2]}},
		{"type":"Feature","geometry":null},
		{"type":"Feature","geometry":{"type":"GeometryCollection","geometries":[
			{"type":"Point","coordinates":[1,2]},
			{"type":"LineString","coordinates":[[1,2],[3,4]]}
		]}}
	]}`
	if got := geojson.GeometryCount(decode(t, in)); got != 3 {
		t.Errorf("expected 3 geometries, got %d", got)
	}
	if got := geojson.GeometryCount(decode(t, `[[1,2]]`)); got != 0 {
		t.Errorf("expected 0 for non-GeoJSON, got %d", got)
	}
}
