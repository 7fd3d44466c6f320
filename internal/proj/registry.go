package proj

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

var (
	ErrUnknownSource      = errors.New("unknown source system")
	ErrUnknownDestination = errors.New("unknown destination system")
	ErrOutOfBounds        = errors.New("coordinate outside supported area")
	ErrNotFinite          = errors.New("coordinate is not a finite number")
)

// Source is a projected ED50 UTM system that requests are expressed in.
type Source struct {
	Code   string  `json:"code"`
	EPSG   int     `json:"epsg"`
	Name   string  `json:"name"`
	Bounds Bounds  `json:"bounds"`
	UTM    UTM     `json:"-"`
	Shift  Helmert `json:"-"`
}

// Destination is a geographic system that results are expressed in.
type Destination struct {
	Code      string    `json:"code"`
	EPSG      int       `json:"epsg"`
	Name      string    `json:"name"`
	Ellipsoid Ellipsoid `json:"-"`
}

// peninsulaBounds covers mainland Spain and the Balearic Islands.
var peninsulaBounds = Bounds{MinX: 0, MinY: 3800000, MaxX: 1000000, MaxY: 4900000}

// DefaultSources returns the ED50 UTM zones covering Spain.
func DefaultSources() []Source {
	sources := make([]Source, 0, 3)
	for _, zone := range []int{29, 30, 31} {
		sources = append(sources, Source{
			Code:   fmt.Sprintf("%dN", zone),
			EPSG:   23000 + zone,
			Name:   fmt.Sprintf("ED50 / UTM zone %dN", zone),
			Bounds: peninsulaBounds,
			UTM:    UTM{Zone: zone, Ellipsoid: International1924},
			Shift:  SpainED50ToETRS89,
		})
	}
	return sources
}

// DefaultDestinations returns WGS84 and ETRS89 geographic systems.
func DefaultDestinations() []Destination {
	return []Destination{
		{Code: "WGS84", EPSG: 4326, Name: "WGS 84", Ellipsoid: WGS84Ellipsoid},
		{Code: "ETRS89", EPSG: 4258, Name: "ETRS89", Ellipsoid: GRS80},
	}
}

// Registry maps request codes to reference systems. Codes are case-insensitive.
type Registry struct {
	sources      map[string]Source
	destinations map[string]Destination
}

// NewRegistry validates and indexes the given systems.
func NewRegistry(sources []Source, destinations []Destination) (*Registry, error) {
	r := &Registry{
		sources:      make(map[string]Source, len(sources)),
		destinations: make(map[string]Destination, len(destinations)),
	}
	for _, s := range sources {
		code := normalizeCode(s.Code)
		if code == "" {
			return nil, fmt.Errorf("source system without code")
		}
		if _, dup := r.sources[code]; dup {
			return nil, fmt.Errorf("duplicate source system %q", code)
		}
		if s.UTM.Zone < 1 || s.UTM.Zone > 60 {
			return nil, fmt.Errorf("source system %q: utm zone %d out of range", code, s.UTM.Zone)
		}
		if s.UTM.Ellipsoid.A <= 0 || s.UTM.Ellipsoid.F <= 0 {
			return nil, fmt.Errorf("source system %q: invalid ellipsoid", code)
		}
		s.Code = code
		r.sources[code] = s
	}
	for _, d := range destinations {
		code := normalizeCode(d.Code)
		if code == "" {
			return nil, fmt.Errorf("destination system without code")
		}
		if _, dup := r.destinations[code]; dup {
			return nil, fmt.Errorf("duplicate destination system %q", code)
		}
		if d.Ellipsoid.A <= 0 || d.Ellipsoid.F <= 0 {
			return nil, fmt.Errorf("destination system %q: invalid ellipsoid", code)
		}
		d.Code = code
		r.destinations[code] = d
	}
	if len(r.sources) == 0 || len(r.destinations) == 0 {
		return nil, fmt.Errorf("registry needs at least one source and one destination")
	}
	return r, nil
}

// DefaultRegistry returns the registry of DefaultSources and DefaultDestinations.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(DefaultSources(), DefaultDestinations())
	if err != nil {
		panic("default registry: " + err.Error())
	}
	return r
}

// Source looks up a source system by code.
func (r *Registry) Source(code string) (Source, bool) {
	s, ok := r.sources[normalizeCode(code)]
	return s, ok
}

// Destination looks up a destination system by code.
func (r *Registry) Destination(code string) (Destination, bool) {
	d, ok := r.destinations[normalizeCode(code)]
	return d, ok
}

// Sources lists source systems ordered by code.
func (r *Registry) Sources() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, s := range r.sources {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Destinations lists destination systems ordered by code.
func (r *Registry) Destinations() []Destination {
	out := make([]Destination, 0, len(r.destinations))
	for _, d := range r.destinations {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Transformer converts coordinates between registered systems.
// It holds no mutable state and is safe for concurrent use.
type Transformer struct {
	registry *Registry
}

// NewTransformer creates a Transformer over r.
func NewTransformer(r *Registry) *Transformer {
	return &Transformer{registry: r}
}

// Registry returns the registry the transformer resolves codes against.
func (t *Transformer) Registry() *Registry { return t.registry }

// Transform converts (x, y) from the src system to (lon, lat) in degrees in
// the dst system.
func (t *Transformer) Transform(src, dst string, x, y float64) (float64, float64, error) {
	fn, err := t.Bind(src, dst)
	if err != nil {
		return 0, 0, err
	}
	return fn(x, y)
}

// Bind resolves both systems once and returns a conversion function for them.
func (t *Transformer) Bind(src, dst string) (func(x, y float64) (float64, float64, error), error) {
	s, ok := t.registry.Source(src)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, src)
	}
	d, ok := t.registry.Destination(dst)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDestination, dst)
	}
	return func(x, y float64) (float64, float64, error) {
		return convert(s, d, x, y)
	}, nil
}

func convert(s Source, d Destination, x, y float64) (float64, float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return 0, 0, ErrNotFinite
	}
	if !s.Bounds.Contains(x, y) {
		return 0, 0, fmt.Errorf("%w: (%g, %g) for %s", ErrOutOfBounds, x, y, s.Code)
	}

	lon, lat, err := s.UTM.Inverse(x, y)
	if err != nil {
		return 0, 0, err
	}
	gx, gy, gz := s.UTM.Ellipsoid.toGeocentric(lon, lat, 0)
	gx, gy, gz = s.Shift.Apply(gx, gy, gz)
	lon, lat = d.Ellipsoid.toGeodetic(gx, gy, gz)

	return degrees(lon), degrees(lat), nil
}
