package ports

import (
	"context"

	"github.com/samirrijal/bboxmap/internal/core/domain"
)

// MapDataFetcher reads raw map elements inside a bounding box from the
// remote mapping API. Callers must validate the box first.
type MapDataFetcher interface {
	FetchElements(ctx context.Context, box domain.BoundingBox) (domain.RawMapData, error)
}

// GeometryConverter turns raw map data into renderer-ready geometry.
// It returns (nil, nil) for empty input and a *domain.ConversionError for
// data it cannot decode.
type GeometryConverter interface {
	Convert(raw domain.RawMapData) (*domain.GeometryCollection, error)
}

// EventPublisher publishes submission events to a message broker.
type EventPublisher interface {
	PublishSubmission(ctx context.Context, event *domain.SubmissionEvent) error
}
