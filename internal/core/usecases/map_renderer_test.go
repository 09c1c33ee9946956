package usecases_test

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/bboxmap/internal/core/domain"
	"github.com/samirrijal/bboxmap/internal/core/usecases"
)

func TestRenderMap_NoGeometry(t *testing.T) {
	view := usecases.RenderMap(nil, nil)

	if view.HasData {
		t.Error("expected no data")
	}
	if view.Center != [2]float64{0, 0} {
		t.Errorf("expected fallback center, got %v", view.Center)
	}
	if view.Zoom != 1 {
		t.Errorf("expected zoom 1, got %d", view.Zoom)
	}
	if view.HighlightRadius != 0 {
		t.Errorf("no highlight circle without data, got %g", view.HighlightRadius)
	}
	if view.Style.Color != "red" {
		t.Errorf("expected red style, got %q", view.Style.Color)
	}
}

func TestRenderMap_WithGeometry(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{-2.94, 43.26}))
	fc.Append(geojson.NewFeature(orb.Point{-2.92, 43.28}))

	box := &domain.BoundingBox{MinLongitude: -3, MinLatitude: 43.2, MaxLongitude: -2.9, MaxLatitude: 43.3}
	view := usecases.RenderMap(fc, box)

	if !view.HasData || view.FeatureCount != 2 {
		t.Fatalf("expected 2 features, got %+v", view)
	}
	if view.Zoom != 12 {
		t.Errorf("expected zoom 12, got %d", view.Zoom)
	}
	// Center is [lat, lon].
	if math.Abs(view.Center[0]-43.27) > 1e-9 || math.Abs(view.Center[1]-(-2.93)) > 1e-9 {
		t.Errorf("expected center [43.27, -2.93], got %v", view.Center)
	}
	if view.HighlightRadius != 100 {
		t.Errorf("expected a 100 m highlight, got %g", view.HighlightRadius)
	}
	if math.Abs(view.LocateTarget[0]-43.25) > 1e-9 || math.Abs(view.LocateTarget[1]-(-2.95)) > 1e-9 {
		t.Errorf("expected the box center as locate target, got %v", view.LocateTarget)
	}
}

func TestRenderMap_EmptyCollection(t *testing.T) {
	view := usecases.RenderMap(geojson.NewFeatureCollection(), nil)

	if !view.HasData {
		t.Error("an empty collection is still a result")
	}
	if view.Center != [2]float64{0, 0} {
		t.Errorf("expected fallback center, got %v", view.Center)
	}
	if view.FeatureCount != 0 {
		t.Errorf("expected no features, got %d", view.FeatureCount)
	}
}

func TestRenderMap_MalformedGeometryFallsBack(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{math.NaN(), math.NaN()}))

	view := usecases.RenderMap(fc, nil)
	if view.Center != [2]float64{0, 0} {
		t.Errorf("expected fallback center, got %v", view.Center)
	}
}
