package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// FieldRule names the single-field rule a value failed.
type FieldRule string

const (
	Required     FieldRule = "required"
	NotNumber    FieldRule = "not_number"
	BelowMinimum FieldRule = "below_minimum"
	AboveMaximum FieldRule = "above_maximum"

	// Cross-field rules set by the Form Controller after validation.
	Ordering  FieldRule = "ordering"
	AreaLimit FieldRule = "area_limit"
)

// FieldError is a single field outside its declared bounds.
type FieldError struct {
	Field   string    `json:"field"`
	Rule    FieldRule `json:"rule"`
	Message string    `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors is the FieldRangeError of a submission, keyed by field name.
type FieldErrors map[string]*FieldError

func (fe FieldErrors) Error() string {
	names := make([]string, 0, len(fe))
	for name := range fe {
		names = append(names, name)
	}
	sort.Strings(names)
	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fe[name].Error())
	}
	return "invalid fields: " + strings.Join(msgs, "; ")
}

// OrderingMessage is the summary shown when a minimum exceeds its maximum.
const OrderingMessage = "minima must be less than the maxima."

// AreaMessage is shown next to the max latitude field when the box is too big.
const AreaMessage = "The area is too big"

// OrderingError reports a minimum exceeding its maximum on one axis.
type OrderingError struct {
	Axis string // "latitude" or "longitude"
}

func (e *OrderingError) Error() string {
	return e.Axis + " " + OrderingMessage
}

// AreaLimitError reports a box larger than the API's area cap.
type AreaLimitError struct {
	Area  float64
	Limit float64
}

func (e *AreaLimitError) Error() string {
	return fmt.Sprintf("bounding box area %g exceeds limit %g", e.Area, e.Limit)
}

// ValidationError converts a non-Valid result into its typed error.
func ValidationError(box BoundingBox, result ValidationResult, limit float64) error {
	switch result {
	case InvalidLatitudeOrder:
		return &OrderingError{Axis: "latitude"}
	case InvalidLongitudeOrder:
		return &OrderingError{Axis: "longitude"}
	case AreaTooLarge:
		return &AreaLimitError{Area: box.Area(), Limit: limit}
	default:
		return nil
	}
}

// NetworkError reports a failed fetch or a non-success HTTP status.
// StatusCode is zero for transport failures.
type NetworkError struct {
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("map api returned status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("map api request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ConversionError reports raw map data that could not be turned into geometry.
// It is never fatal.
type ConversionError struct {
	Err error
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("convert map data: %v", e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }

// ErrFetchInProgress is returned when a session submits while its previous
// fetch has not completed.
var ErrFetchInProgress = errors.New("a request is already in progress")

// ErrSessionNotFound is returned by session stores for unknown ids.
var ErrSessionNotFound = errors.New("session not found")

// ErrNothingToRetry is returned by a retry when no fetch has failed.
var ErrNothingToRetry = errors.New("no failed request to retry")
