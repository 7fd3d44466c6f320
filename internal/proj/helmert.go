package proj

import "math"

const arcsecond = math.Pi / (180 * 3600)

// Helmert holds seven-parameter datum shift values in the position vector
// convention: translations in meters, rotations in arc-seconds, scale in ppm.
type Helmert struct {
	TX float64 `json:"tx"`
	TY float64 `json:"ty"`
	TZ float64 `json:"tz"`
	RX float64 `json:"rx"`
	RY float64 `json:"ry"`
	RZ float64 `json:"rz"`
	DS float64 `json:"ds"`
}

// SpainED50ToETRS89 is the IGN national ED50 to ETRS89 shift for mainland Spain.
var SpainED50ToETRS89 = Helmert{
	TX: -131.0320, TY: -100.2510, TZ: -163.3540,
	RX: -1.2438, RY: -0.0195, RZ: -1.1436,
	DS: -9.39,
}

// Apply shifts a geocentric position.
func (h Helmert) Apply(x, y, z float64) (float64, float64, float64) {
	rx, ry, rz := h.RX*arcsecond, h.RY*arcsecond, h.RZ*arcsecond
	m := 1 + h.DS*1e-6
	return h.TX + m*(x-rz*y+ry*z),
		h.TY + m*(rz*x+y-rx*z),
		h.TZ + m*(-ry*x+rx*y+z)
}
