package proj

import (
	"fmt"
	"math"
)

const (
	utmScale         = 0.9996
	utmFalseEasting  = 500000.0
	utmFalseNorthing = 10000000.0
)

// Bounds is the accepted easting/northing window of a projected system.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Contains reports whether (x, y) lies inside b. A zero Bounds accepts anything.
func (b Bounds) Contains(x, y float64) bool {
	if b == (Bounds{}) {
		return true
	}
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// UTM is a Universal Transverse Mercator zone on a given ellipsoid.
type UTM struct {
	Zone      int
	South     bool
	Ellipsoid Ellipsoid
}

// CentralMeridian returns the zone's central meridian in degrees.
func (u UTM) CentralMeridian() float64 {
	return float64(u.Zone*6 - 183)
}

// Inverse converts easting/northing to longitude and latitude in radians
// using the footpoint-latitude series.
func (u UTM) Inverse(x, y float64) (lon, lat float64, err error) {
	if u.Zone < 1 || u.Zone > 60 {
		return 0, 0, fmt.Errorf("utm zone %d out of range", u.Zone)
	}
	a := u.Ellipsoid.A
	e2 := u.Ellipsoid.e2()
	ep2 := e2 / (1 - e2)

	if u.South {
		y -= utmFalseNorthing
	}
	m := y / utmScale
	mu := m / (a * (1 - e2/4 - 3*e2*e2/64 - 5*e2*e2*e2/256))

	sq := math.Sqrt(1 - e2)
	e1 := (1 - sq) / (1 + sq)
	phi1 := mu +
		(3*e1/2-27*math.Pow(e1, 3)/32)*math.Sin(2*mu) +
		(21*e1*e1/16-55*math.Pow(e1, 4)/32)*math.Sin(4*mu) +
		(151*math.Pow(e1, 3)/96)*math.Sin(6*mu) +
		(1097*math.Pow(e1, 4)/512)*math.Sin(8*mu)

	sinPhi, cosPhi, tanPhi := math.Sin(phi1), math.Cos(phi1), math.Tan(phi1)
	c1 := ep2 * cosPhi * cosPhi
	t1 := tanPhi * tanPhi
	w := 1 - e2*sinPhi*sinPhi
	n1 := a / math.Sqrt(w)
	r1 := a * (1 - e2) / math.Pow(w, 1.5)
	d := (x - utmFalseEasting) / (n1 * utmScale)

	lat = phi1 - (n1*tanPhi/r1)*(d*d/2-
		(5+3*t1+10*c1-4*c1*c1-9*ep2)*math.Pow(d, 4)/24+
		(61+90*t1+298*c1+45*t1*t1-252*ep2-3*c1*c1)*math.Pow(d, 6)/720)

	lon = radians(u.CentralMeridian()) + (d-
		(1+2*t1+c1)*math.Pow(d, 3)/6+
		(5-2*c1+28*t1-3*c1*c1+8*ep2+24*t1*t1)*math.Pow(d, 5)/120)/cosPhi

	return lon, lat, nil
}
