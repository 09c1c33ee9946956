package usecases

import (
	"github.com/samirrijal/bboxmap/internal/core/domain"
	"github.com/samirrijal/bboxmap/internal/pkg/geospatial"
)

const (
	zoomWithData    = 12
	zoomWithoutData = 1
	highlightRadius = 100 // meters
	geometryColor   = "red"
)

// FallbackCenter is used when there is no geometry to center on.
var FallbackCenter = domain.GeoPoint{Lat: 0, Lon: 0}

// RenderMap computes the map view for fc. box, when set, is the bounding
// box the geometry was fetched for and becomes the geolocation fly-to
// target.
func RenderMap(fc *domain.GeometryCollection, box *domain.BoundingBox) domain.MapView {
	center := FallbackCenter
	if c, ok := geospatial.Center(fc); ok {
		center = domain.GeoPoint{Lat: c.Lat(), Lon: c.Lon()}
	}

	view := domain.MapView{
		Center:       center.LatLng(),
		Zoom:         zoomWithoutData,
		Style:        domain.GeometryStyle{Color: geometryColor},
		LocateTarget: center.LatLng(),
	}
	if box != nil {
		view.LocateTarget = box.Center().LatLng()
	}
	if fc != nil {
		view.HasData = true
		view.Geometry = fc
		view.FeatureCount = len(fc.Features)
		view.Zoom = zoomWithData
		view.HighlightRadius = highlightRadius
	}
	return view
}
