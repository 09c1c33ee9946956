package domain

import "github.com/paulmach/orb/geojson"

// GeoPoint represents a geographic coordinate (WGS 84).
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LatLng returns the point in Leaflet's [lat, lon] order.
func (p GeoPoint) LatLng() [2]float64 {
	return [2]float64{p.Lat, p.Lon}
}

// RawMapData is the undecoded payload of the map export endpoint.
type RawMapData []byte

// GeometryCollection is converted, renderer-ready geometry. A nil collection
// means there is nothing to render; an empty one means the box held no
// elements.
type GeometryCollection = geojson.FeatureCollection
