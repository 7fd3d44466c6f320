// Package geojson recognizes GeoJSON objects (RFC 7946) in decoded JSON trees.
package geojson

// Geometry and object type names defined by RFC 7946.
const (
	TypePoint              = "Point"
	TypeMultiPoint         = "MultiPoint"
	TypeLineString         = "LineString"
	TypeMultiLineString    = "MultiLineString"
	TypePolygon            = "Polygon"
	TypeMultiPolygon       = "MultiPolygon"
	TypeGeometryCollection = "GeometryCollection"
	TypeFeature            = "Feature"
	TypeFeatureCollection  = "FeatureCollection"
)

// IsGeoJSON reports whether v is a GeoJSON geometry, Feature or
// FeatureCollection. Only the members needed to locate coordinates are
// checked; coordinate values themselves are not validated here.
func IsGeoJSON(v any) bool {
	obj, ok := v.(map[string]any)
	if !ok {
		return false
	}
	typ, _ := obj["type"].(string)

	switch typ {
	case TypePoint, TypeMultiPoint, TypeLineString, TypeMultiLineString, TypePolygon, TypeMultiPolygon:
		_, ok := obj["coordinates"].([]any)
		return ok
	case TypeGeometryCollection:
		_, ok := obj["geometries"].([]any)
		return ok
	case TypeFeature:
		geom, present := obj["geometry"]
		if !present {
			return false
		}
		if geom == nil {
			return true
		}
		return IsGeoJSON(geom)
	case TypeFeatureCollection:
		_, ok := obj["features"].([]any)
		return ok
	default:
		return false
	}
}

// GeometryCount returns how many geometries v holds: one for a bare geometry,
// the member count for collections, zero for anything that is not GeoJSON.
func GeometryCount(v any) int {
	if !IsGeoJSON(v) {
		return 0
	}
	obj := v.(map[string]any)

	switch obj["type"] {
	case TypeGeometryCollection:
		n := 0
		for _, g := range obj["geometries"].([]any) {
			n += GeometryCount(g)
		}
		return n
	case TypeFeature:
		if obj["geometry"] == nil {
			return 0
		}
		return GeometryCount(obj["geometry"])
	case TypeFeatureCollection:
		n := 0
		for _, f := range obj["features"].([]any) {
			n += GeometryCount(f)
		}
		return n
	default:
		return 1
	}
}
