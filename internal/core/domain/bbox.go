package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultAreaLimit is the largest box area (in squared degrees) the OSM map
// export accepts. The API is limited to boxes of about 0.5 by 0.5 degrees.
const DefaultAreaLimit = 0.25

// BoundingBox is a rectangle in longitude/latitude space (WGS 84 degrees).
type BoundingBox struct {
	MinLongitude float64 `json:"min_longitude"`
	MinLatitude  float64 `json:"min_latitude"`
	MaxLongitude float64 `json:"max_longitude"`
	MaxLatitude  float64 `json:"max_latitude"`
}

// ValidationResult classifies a submitted bounding box.
type ValidationResult int

const (
	Valid ValidationResult = iota
	InvalidLatitudeOrder
	InvalidLongitudeOrder
	AreaTooLarge
)

func (r ValidationResult) String() string {
	switch r {
	case Valid:
		return "valid"
	case InvalidLatitudeOrder:
		return "invalid_latitude_order"
	case InvalidLongitudeOrder:
		return "invalid_longitude_order"
	case AreaTooLarge:
		return "area_too_large"
	default:
		return fmt.Sprintf("ValidationResult(%d)", int(r))
	}
}

// Validate classifies box against the ordering and area rules of the OSM
// map endpoint. The first failing rule wins.
//
// Spans are taken from absolute values (|max| - |min|), mirroring
// openstreetmap-website's lib/bounding_box.rb. For boxes straddling the
// equator or the prime meridian this is not the true interval length and
// may even be negative.
func Validate(box BoundingBox, areaLimit float64) ValidationResult {
	if box.MinLatitude > box.MaxLatitude {
		return InvalidLatitudeOrder
	}
	if box.MinLongitude > box.MaxLongitude {
		return InvalidLongitudeOrder
	}
	if box.Area() > areaLimit {
		return AreaTooLarge
	}
	return Valid
}

// Area returns the span product used by Validate.
func (b BoundingBox) Area() float64 {
	latSpan := math.Abs(b.MaxLatitude) - math.Abs(b.MinLatitude)
	lonSpan := math.Abs(b.MaxLongitude) - math.Abs(b.MinLongitude)
	return latSpan * lonSpan
}

// QueryValue serializes the box as "left,bottom,right,top".
func (b BoundingBox) QueryValue() string {
	parts := []string{
		formatDegrees(b.MinLongitude),
		formatDegrees(b.MinLatitude),
		formatDegrees(b.MaxLongitude),
		formatDegrees(b.MaxLatitude),
	}
	return strings.Join(parts, ",")
}

// Center returns the midpoint of the box.
func (b BoundingBox) Center() GeoPoint {
	return GeoPoint{
		Lat: (b.MinLatitude + b.MaxLatitude) / 2,
		Lon: (b.MinLongitude + b.MaxLongitude) / 2,
	}
}

// ParseBBoxParam parses a "left,bottom,right,top" string. Each value is
// range checked like a form field; ordering and area are left to Validate.
func ParseBBoxParam(s string) (BoundingBox, FieldErrors) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BoundingBox{}, FieldErrors{
			"bbox": {Field: "bbox", Rule: NotNumber, Message: "bbox must be left,bottom,right,top"},
		}
	}
	// CoordinateInputs is declared in left,bottom,right,top order.
	values := make(map[string]string, 4)
	for i, f := range CoordinateInputs {
		values[f.Name] = parts[i]
	}
	return ParseForm(values)
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
