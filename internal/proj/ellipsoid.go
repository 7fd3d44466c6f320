// Package proj converts projected ED50 UTM coordinates into geographic
// coordinates on a modern datum.
//
// Conversion runs in three steps: inverse Transverse Mercator on the source
// ellipsoid, a seven-parameter Helmert shift through geocentric coordinates,
// and back to geodetic coordinates on the destination ellipsoid.
package proj

import "math"

// Ellipsoid is a reference ellipsoid given by its semi-major axis (meters)
// and flattening.
type Ellipsoid struct {
	Name string
	A    float64
	F    float64
}

var (
	International1924 = Ellipsoid{Name: "intl", A: 6378388.0, F: 1 / 297.0}
	GRS80             = Ellipsoid{Name: "GRS80", A: 6378137.0, F: 1 / 298.257222101}
	WGS84Ellipsoid    = Ellipsoid{Name: "WGS84", A: 6378137.0, F: 1 / 298.257223563}
)

// e2 is the first eccentricity squared.
func (e Ellipsoid) e2() float64 { return 2*e.F - e.F*e.F }

// toGeocentric converts geodetic coordinates (radians, meters) to ECEF.
func (e Ellipsoid) toGeocentric(lon, lat, h float64) (x, y, z float64) {
	e2 := e.e2()
	sinLat := math.Sin(lat)
	n := e.A / math.Sqrt(1-e2*sinLat*sinLat)
	x = (n + h) * math.Cos(lat) * math.Cos(lon)
	y = (n + h) * math.Cos(lat) * math.Sin(lon)
	z = (n*(1-e2) + h) * sinLat
	return x, y, z
}

// toGeodetic converts ECEF coordinates to longitude and latitude in radians.
func (e Ellipsoid) toGeodetic(x, y, z float64) (lon, lat float64) {
	e2 := e.e2()
	p := math.Hypot(x, y)
	lon = math.Atan2(y, x)
	lat = math.Atan2(z, p*(1-e2))
	for i := 0; i < 10; i++ {
		sinLat := math.Sin(lat)
		n := e.A / math.Sqrt(1-e2*sinLat*sinLat)
		h := p/math.Cos(lat) - n
		next := math.Atan2(z, p*(1-e2*n/(n+h)))
		if math.Abs(next-lat) < 1e-12 {
			return lon, next
		}
		lat = next
	}
	return lon, lat
}

func degrees(rad float64) float64 { return rad * 180 / math.Pi }
func radians(deg float64) float64 { return deg * math.Pi / 180 }
