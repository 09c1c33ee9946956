package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Center returns the center of the bound enclosing every feature geometry
// in fc, in [lon, lat] order. ok is false when fc is nil, has no geometry,
// or the geometry yields a non-finite center.
func Center(fc *geojson.FeatureCollection) (center orb.Point, ok bool) {
	if fc == nil || len(fc.Features) == 0 {
		return orb.Point{}, false
	}

	defer func() {
		if r := recover(); r != nil {
			center, ok = orb.Point{}, false
		}
	}()

	var (
		bound orb.Bound
		found bool
	)
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if inverted(b) {
			// Empty geometries report orb's inverted empty bound.
			continue
		}
		if !found {
			bound, found = b, true
			continue
		}
		bound = bound.Union(b)
	}
	if !found {
		return orb.Point{}, false
	}

	c := bound.Center()
	if !finite(c[0]) || !finite(c[1]) {
		return orb.Point{}, false
	}
	return c, true
}

func inverted(b orb.Bound) bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1]
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
