package domain

// GeometryStyle is the fixed look of rendered geometry.
type GeometryStyle struct {
	Color string `json:"color"`
}

// MapView is everything the page needs to draw the map.
type MapView struct {
	// Center and LocateTarget are [lat, lon].
	Center       [2]float64          `json:"center"`
	Zoom         int                 `json:"zoom"`
	HasData      bool                `json:"has_data"`
	Geometry     *GeometryCollection `json:"geometry,omitempty"`
	FeatureCount int                 `json:"feature_count"`
	Style        GeometryStyle       `json:"style"`
	// HighlightRadius is the radius in meters of the circle drawn at the
	// center when data is present.
	HighlightRadius float64    `json:"highlight_radius"`
	LocateTarget    [2]float64 `json:"locate_target"`
}
