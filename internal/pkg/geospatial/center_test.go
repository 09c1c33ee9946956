package geospatial

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

func TestCenter_NilAndEmpty(t *testing.T) {
	if _, ok := Center(nil); ok {
		t.Error("nil collection should have no center")
	}
	if _, ok := Center(geojson.NewFeatureCollection()); ok {
		t.Error("empty collection should have no center")
	}
}

func TestCenter_SinglePoint(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{-2.935, 43.263}))

	c, ok := Center(fc)
	if !ok {
		t.Fatal("expected a center")
	}
	if c != (orb.Point{-2.935, 43.263}) {
		t.Errorf("expected the point itself, got %v", c)
	}
}

func TestCenter_UnionOfBounds(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{0, 0}))
	fc.Append(geojson.NewFeature(orb.LineString{{2, 2}, {4, 6}}))
	fc.Append(geojson.NewFeature(orb.Polygon{{{-2, -2}, {-1, -2}, {-1, -1}, {-2, -2}}}))

	c, ok := Center(fc)
	if !ok {
		t.Fatal("expected a center")
	}
	// Bound is [-2,-2] to [4,6].
	if math.Abs(c.Lon()-1) > 1e-9 || math.Abs(c.Lat()-2) > 1e-9 {
		t.Errorf("expected (1, 2), got %v", c)
	}
}

func TestCenter_SkipsMissingGeometry(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Features = append(fc.Features, &geojson.Feature{Type: "Feature"}, nil)
	if _, ok := Center(fc); ok {
		t.Error("features without geometry should have no center")
	}

	fc.Append(geojson.NewFeature(orb.Point{10, 20}))
	c, ok := Center(fc)
	if !ok || c != (orb.Point{10, 20}) {
		t.Errorf("expected (10, 20), got %v ok=%v", c, ok)
	}
}

func TestCenter_NonFinite(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{math.NaN(), 1}))
	if _, ok := Center(fc); ok {
		t.Error("NaN coordinates should fall back")
	}

	fc = geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.Point{math.Inf(1), 1}))
	if _, ok := Center(fc); ok {
		t.Error("infinite coordinates should fall back")
	}
}

func TestCenter_SkipsEmptyGeometry(t *testing.T) {
	fc := geojson.NewFeatureCollection()
	fc.Append(geojson.NewFeature(orb.LineString{}))
	fc.Append(geojson.NewFeature(orb.Point{10, 20}))

	c, ok := Center(fc)
	if !ok {
		t.Fatal("expected a center")
	}
	if c != (orb.Point{10, 20}) {
		t.Errorf("empty geometry should not widen the bound, got %v", c)
	}

	only := geojson.NewFeatureCollection()
	only.Append(geojson.NewFeature(orb.LineString{}))
	only.Append(geojson.NewFeature(orb.MultiPoint{}))
	if c, ok := Center(only); ok {
		t.Errorf("collection of empty geometries should have no center, got %v", c)
	}
}
