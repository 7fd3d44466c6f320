package projection_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/reproj/internal/adapters/projection"
	"github.com/samirrijal/reproj/internal/core/domain"
	"github.com/samirrijal/reproj/internal/proj"
)

func TestProjector_BindUnknownCodes(t *testing.T) {
	p := projection.New(proj.DefaultRegistry())

	if _, err := p.Bind("28N", "WGS84"); !errors.Is(err, domain.ErrUnknownZone) {
		t.Errorf("expected ErrUnknownZone, got %v", err)
	}
	if _, err := p.Bind("30N", "EPSG3857"); !errors.Is(err, domain.ErrUnknownDestination) {
		t.Errorf("expected ErrUnknownDestination, got %v", err)
	}
}

func TestProjector_BindTransforms(t *testing.T) {
	p := projection.New(proj.DefaultRegistry())

	fn, err := p.Bind("30n", "wgs84")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lon, lat, err := fn(433829.9531810064, 4811755.32568882)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(lon-(-3.81917591)) > 1e-4 || math.Abs(lat-43.45391861) > 1e-4 {
		t.Errorf("got (%f, %f), want about (-3.819176, 43.453919)", lon, lat)
	}
}

func TestProjector_Systems(t *testing.T) {
	sys := projection.New(proj.DefaultRegistry()).Systems()

	if len(sys.Sources) != 3 {
		t.Fatalf("expected 3 sources, got %d", len(sys.Sources))
	}
	if len(sys.Destinations) != 2 {
		t.Fatalf("expected 2 destinations, got %d", len(sys.Destinations))
	}
	if sys.Sources[0].Code != "29N" || sys.Sources[0].EPSG != 23029 {
		t.Errorf("unexpected first source %+v", sys.Sources[0])
	}
}
