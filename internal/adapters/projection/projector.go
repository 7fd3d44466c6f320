// Package projection adapts the proj transformer to the core Projector port.
package projection

import (
	"errors"
	"fmt"

	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/proj"
)

// Projector serves the reference systems of one proj registry.
type Projector struct {
	t *proj.Transformer
}

// New creates a Projector over the given registry.
func New(r *proj.Registry) *Projector {
	return &Projector{t: proj.NewTransformer(r)}
}

// Bind resolves zone and dest and returns the bound pair transform.
func (p *Projector) Bind(zone, dest string) (func(x, y float64) (float64, float64, error), error) {
	fn, err := p.t.Bind(zone, dest)
	switch {
	case errors.Is(err, proj.ErrUnknownSource):
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownZone, err)
	case errors.Is(err, proj.ErrUnknownDestination):
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownDestination, err)
	case err != nil:
		return nil, err
	}
	return fn, nil
}

// Systems lists the registered sources and destinations.
func (p *Projector) Systems() domain.Systems {
	r := p.t.Registry()
	out := domain.Systems{}
	for _, s := range r.Sources() {
		out.Sources = append(out.Sources, domain.System{Code: s.Code, EPSG: s.EPSG, Name: s.Name})
	}
	for _, d := range r.Destinations() {
		out.Destinations = append(out.Destinations, domain.System{Code: d.Code, EPSG: d.EPSG, Name: d.Name})
	}
	return out
}
