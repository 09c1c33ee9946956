package domain_test

import (
	"errors"
	"math"
	"testing"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

func TestValidate_Scenarios(t *testing.T) {
	tests := []struct {
		name string
		box  domain.BoundingBox
		want domain.ValidationResult
	}{
		{"small box around the origin", domain.BoundingBox{MinLongitude: -0.1, MinLatitude: -0.1, MaxLongitude: 0.1, MaxLatitude: 0.1}, domain.Valid},
		{"small box touching the equator", domain.BoundingBox{MinLongitude: 51.1, MinLatitude: -0.1, MaxLongitude: 51.2, MaxLatitude: 0}, domain.Valid},
		{"one by one degree", domain.BoundingBox{MinLongitude: 10, MinLatitude: 10, MaxLongitude: 11, MaxLatitude: 11}, domain.AreaTooLarge},
		{"exactly at the limit", domain.BoundingBox{MinLongitude: 10, MinLatitude: 10, MaxLongitude: 10.5, MaxLatitude: 10.5}, domain.Valid},
		{"latitude reversed", domain.BoundingBox{MinLongitude: 0, MinLatitude: 1, MaxLongitude: 0.1, MaxLatitude: 0.5}, domain.InvalidLatitudeOrder},
		{"longitude reversed", domain.BoundingBox{MinLongitude: 1, MinLatitude: 0, MaxLongitude: 0.5, MaxLatitude: 0.1}, domain.InvalidLongitudeOrder},
		{"degenerate point", domain.BoundingBox{MinLongitude: 5, MinLatitude: 5, MaxLongitude: 5, MaxLatitude: 5}, domain.Valid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := domain.Validate(tt.box, domain.DefaultAreaLimit); got != tt.want {
				t.Errorf("Validate(%+v) = %s, want %s", tt.box, got, tt.want)
			}
		})
	}
}

func TestValidate_LatitudeOrderWinsRegardlessOfLongitude(t *testing.T) {
	for _, lon := range [][2]float64{{-180, 180}, {10, -10}, {0, 0}, {179, -179}} {
		box := domain.BoundingBox{MinLongitude: lon[0], MinLatitude: 45, MaxLongitude: lon[1], MaxLatitude: 44}
		if got := domain.Validate(box, domain.DefaultAreaLimit); got != domain.InvalidLatitudeOrder {
			t.Errorf("lon %v: expected invalid_latitude_order, got %s", lon, got)
		}
	}
}

func TestValidate_LongitudeOrderBeforeArea(t *testing.T) {
	// Huge latitude span, reversed longitude: ordering is reported, not area.
	box := domain.BoundingBox{MinLongitude: 50, MinLatitude: -80, MaxLongitude: 10, MaxLatitude: 80}
	if got := domain.Validate(box, domain.DefaultAreaLimit); got != domain.InvalidLongitudeOrder {
		t.Errorf("expected invalid_longitude_order, got %s", got)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	box := domain.BoundingBox{MinLongitude: 2.1, MinLatitude: 41.3, MaxLongitude: 2.3, MaxLatitude: 41.5}
	first := domain.Validate(box, domain.DefaultAreaLimit)
	for i := 0; i < 5; i++ {
		if got := domain.Validate(box, domain.DefaultAreaLimit); got != first {
			t.Fatalf("call %d returned %s, first call returned %s", i, got, first)
		}
	}
}

func TestValidate_ConfigurableLimit(t *testing.T) {
	box := domain.BoundingBox{MinLongitude: 10, MinLatitude: 10, MaxLongitude: 11, MaxLatitude: 11}
	if got := domain.Validate(box, 1); got != domain.Valid {
		t.Errorf("limit 1: expected valid, got %s", got)
	}
	if got := domain.Validate(box, 0.99); got != domain.AreaTooLarge {
		t.Errorf("limit 0.99: expected area_too_large, got %s", got)
	}
}

// The span of each axis is |max| - |min|, not max - min. Boxes that straddle
// the equator or the prime meridian are therefore under-measured.
func TestArea_AbsoluteSpanDiscrepancy(t *testing.T) {
	tests := []struct {
		name     string
		box      domain.BoundingBox
		formula  float64
		trueArea float64
		result   domain.ValidationResult
	}{
		{
			name:     "symmetric around the origin",
			box:      domain.BoundingBox{MinLongitude: -1, MinLatitude: -1, MaxLongitude: 1, MaxLatitude: 1},
			formula:  0,
			trueArea: 4,
			result:   domain.Valid,
		},
		{
			name:     "south of the equator to zero",
			box:      domain.BoundingBox{MinLongitude: 51.1, MinLatitude: -0.1, MaxLongitude: 51.2, MaxLatitude: 0},
			formula:  -0.01,
			trueArea: 0.01,
			result:   domain.Valid,
		},
		{
			name:     "wide straddle still passes",
			box:      domain.BoundingBox{MinLongitude: -3, MinLatitude: -2, MaxLongitude: 3, MaxLatitude: 3},
			formula:  0,
			trueArea: 30,
			result:   domain.Valid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.box.Area(); math.Abs(got-tt.formula) > 1e-9 {
				t.Errorf("Area() = %g, want %g", got, tt.formula)
			}
			trueArea := (tt.box.MaxLatitude - tt.box.MinLatitude) * (tt.box.MaxLongitude - tt.box.MinLongitude)
			if math.Abs(trueArea-tt.trueArea) > 1e-9 {
				t.Fatalf("test table: true area %g, want %g", trueArea, tt.trueArea)
			}
			if got := domain.Validate(tt.box, domain.DefaultAreaLimit); got != tt.result {
				t.Errorf("Validate = %s, want %s", got, tt.result)
			}
		})
	}
}

func TestValidationResult_String(t *testing.T) {
	want := map[domain.ValidationResult]string{
		domain.Valid:                 "valid",
		domain.InvalidLatitudeOrder:  "invalid_latitude_order",
		domain.InvalidLongitudeOrder: "invalid_longitude_order",
		domain.AreaTooLarge:          "area_too_large",
	}
	for r, s := range want {
		if r.String() != s {
			t.Errorf("expected %q, got %q", s, r.String())
		}
	}
}

func TestQueryValue(t *testing.T) {
	tests := []struct {
		box  domain.BoundingBox
		want string
	}{
		{domain.BoundingBox{MinLongitude: -0.1, MinLatitude: -0.1, MaxLongitude: 0.1, MaxLatitude: 0.1}, "-0.1,-0.1,0.1,0.1"},
		{domain.BoundingBox{MinLongitude: 51.1, MinLatitude: -0.1, MaxLongitude: 51.2, MaxLatitude: 0}, "51.1,-0.1,51.2,0"},
		{domain.BoundingBox{MinLongitude: -2.9375, MinLatitude: 43.25, MaxLongitude: -2.9, MaxLatitude: 43.27}, "-2.9375,43.25,-2.9,43.27"},
	}
	for _, tt := range tests {
		if got := tt.box.QueryValue(); got != tt.want {
			t.Errorf("QueryValue() = %q, want %q", got, tt.want)
		}
	}
}

func TestCenter(t *testing.T) {
	box := domain.BoundingBox{MinLongitude: -1, MinLatitude: 40, MaxLongitude: 1, MaxLatitude: 42}
	c := box.Center()
	if c.Lat != 41 || c.Lon != 0 {
		t.Errorf("expected (41, 0), got (%g, %g)", c.Lat, c.Lon)
	}
	if ll := c.LatLng(); ll != [2]float64{41, 0} {
		t.Errorf("LatLng() = %v", ll)
	}
}

func TestParseBBoxParam(t *testing.T) {
	box, errs := domain.ParseBBoxParam("-0.1,-0.1,0.1,0.1")
	if errs != nil {
		t.Fatalf("unexpected errors: %v", errs)
	}
	want := domain.BoundingBox{MinLongitude: -0.1, MinLatitude: -0.1, MaxLongitude: 0.1, MaxLatitude: 0.1}
	if box != want {
		t.Errorf("expected %+v, got %+v", want, box)
	}
}

func TestParseBBoxParam_Invalid(t *testing.T) {
	tests := []struct {
		param string
		field string
	}{
		{"1,2,3", "bbox"},
		{"1,2,3,4,5", "bbox"},
		{"181,0,0,0", domain.FieldMinLong},
		{"0,-91,0,0", domain.FieldMinLat},
		{"0,0,abc,0", domain.FieldMaxLong},
		{"0,0,0,", domain.FieldMaxLat},
	}
	for _, tt := range tests {
		_, errs := domain.ParseBBoxParam(tt.param)
		if _, ok := errs[tt.field]; !ok {
			t.Errorf("%q: expected error on %s, got %v", tt.param, tt.field, errs)
		}
	}
}

func TestValidationError(t *testing.T) {
	box := domain.BoundingBox{MinLongitude: 10, MinLatitude: 10, MaxLongitude: 11, MaxLatitude: 11}

	if err := domain.ValidationError(box, domain.Valid, 0.25); err != nil {
		t.Errorf("valid result should give nil error, got %v", err)
	}

	var areaErr *domain.AreaLimitError
	if err := domain.ValidationError(box, domain.AreaTooLarge, 0.25); !errors.As(err, &areaErr) {
		t.Fatalf("expected AreaLimitError, got %v", err)
	}
	if areaErr.Area != 1 || areaErr.Limit != 0.25 {
		t.Errorf("unexpected area error %+v", areaErr)
	}

	var orderErr *domain.OrderingError
	if err := domain.ValidationError(box, domain.InvalidLongitudeOrder, 0.25); !errors.As(err, &orderErr) || orderErr.Axis != "longitude" {
		t.Errorf("expected longitude OrderingError, got %v", err)
	}
	if err := domain.ValidationError(box, domain.InvalidLatitudeOrder, 0.25); !errors.As(err, &orderErr) || orderErr.Axis != "latitude" {
		t.Errorf("expected latitude OrderingError, got %v", err)
	}
}
