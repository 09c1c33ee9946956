package domain

import (
	"regexp"
	"strconv"
	"strings"
)

// Range is an inclusive numeric domain for a single coordinate field.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// CoordinateInput describes one numeric form field bound to a BoundingBox
// component. It enforces single-field rules only.
type CoordinateInput struct {
	Name        string `json:"name"`
	Label       string `json:"label"`
	Range       Range  `json:"range"`
	Placeholder string `json:"placeholder"`
}

// Form field names.
const (
	FieldMinLong = "minLong"
	FieldMinLat  = "minLat"
	FieldMaxLong = "maxLong"
	FieldMaxLat  = "maxLat"
)

var (
	longitudeRange = Range{Min: -180, Max: 180}
	latitudeRange  = Range{Min: -90, Max: 90}
)

// CoordinateInputs lists the form fields in left,bottom,right,top order.
var CoordinateInputs = []CoordinateInput{
	{Name: FieldMinLong, Label: "Min Longitude", Range: longitudeRange, Placeholder: "Left or west coordinate"},
	{Name: FieldMinLat, Label: "Min Latitude", Range: latitudeRange, Placeholder: "Bottom or south coordinate"},
	{Name: FieldMaxLong, Label: "Max Longitude", Range: longitudeRange, Placeholder: "Right or east coordinate"},
	{Name: FieldMaxLat, Label: "Max Latitude", Range: latitudeRange, Placeholder: "Top or north coordinate"},
}

var decimalPattern = regexp.MustCompile(`^-?[0-9]*(\.[0-9]+)?$`)

// Check parses raw and applies the presence, lower bound and upper bound
// rules in that order.
func (in CoordinateInput) Check(raw string) (float64, *FieldError) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &FieldError{Field: in.Name, Rule: Required, Message: in.Name + " is required"}
	}
	if !decimalPattern.MatchString(raw) || raw == "-" {
		return 0, &FieldError{Field: in.Name, Rule: NotNumber, Message: in.Label + " must be a number"}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &FieldError{Field: in.Name, Rule: NotNumber, Message: in.Label + " must be a number"}
	}
	if v < in.Range.Min {
		return 0, &FieldError{Field: in.Name, Rule: BelowMinimum, Message: "Minimum value is " + formatDegrees(in.Range.Min)}
	}
	if v > in.Range.Max {
		return 0, &FieldError{Field: in.Name, Rule: AboveMaximum, Message: "Maximum value is " + formatDegrees(in.Range.Max)}
	}
	return v, nil
}

// ParseForm checks every coordinate field and assembles a BoundingBox.
// The box is only meaningful when the returned FieldErrors is empty.
func ParseForm(values map[string]string) (BoundingBox, FieldErrors) {
	var box BoundingBox
	errs := FieldErrors{}
	for _, in := range CoordinateInputs {
		v, ferr := in.Check(values[in.Name])
		if ferr != nil {
			errs[in.Name] = ferr
			continue
		}
		switch in.Name {
		case FieldMinLong:
			box.MinLongitude = v
		case FieldMinLat:
			box.MinLatitude = v
		case FieldMaxLong:
			box.MaxLongitude = v
		case FieldMaxLat:
			box.MaxLatitude = v
		}
	}
	if len(errs) == 0 {
		return box, nil
	}
	return box, errs
}
