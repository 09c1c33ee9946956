package usecases

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/samirrijal/bboxmap/internal/core/domain"
	"github.com/samirrijal/bboxmap/internal/core/ports"
	"github.com/samirrijal/bboxmap/internal/pkg/logging"
	"github.com/samirrijal/bboxmap/internal/pkg/metrics"
	"github.com/samirrijal/bboxmap/internal/pkg/telemetry"
)

// Submission results that are not validation results.
const (
	ResultFieldError  = "field_error"
	ResultFetchFailed = "fetch_failed"
	ResultIgnored     = "ignored_in_flight"
)

// FetchFailedMessage is shown above the map when the map API request fails.
const FetchFailedMessage = "Could not load map elements. Please try again."

// FormController runs the validate → fetch → convert pipeline for form
// sessions and owns their state.
type FormController struct {
	fetcher   ports.MapDataFetcher
	converter ports.GeometryConverter
	sessions  ports.SessionStore
	events    ports.EventPublisher
	areaLimit float64
	tracer    trace.Tracer
	now       func() time.Time
}

// NewFormController creates a new FormController. events may be nil.
func NewFormController(
	fetcher ports.MapDataFetcher,
	converter ports.GeometryConverter,
	sessions ports.SessionStore,
	events ports.EventPublisher,
	areaLimit float64,
) *FormController {
	if areaLimit <= 0 {
		areaLimit = domain.DefaultAreaLimit
	}
	return &FormController{
		fetcher:   fetcher,
		converter: converter,
		sessions:  sessions,
		events:    events,
		areaLimit: areaLimit,
		tracer:    otel.Tracer("github.com/samirrijal/bboxmap/internal/core/usecases"),
		now:       time.Now,
	}
}

// AreaLimit returns the configured area cap.
func (fc *FormController) AreaLimit() float64 { return fc.areaLimit }

// Validate classifies box with the configured area cap.
func (fc *FormController) Validate(box domain.BoundingBox) domain.ValidationResult {
	return domain.Validate(box, fc.areaLimit)
}

// State returns the form state of a session, or a fresh form for unknown
// sessions. A stored Fetching phase only holds while the in-flight marker
// does; a fetch that died with its process leaves the form editable.
func (fc *FormController) State(ctx context.Context, sessionID string) (*domain.FormState, error) {
	state, err := fc.sessions.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return domain.NewFormState(), nil
	}
	if err != nil {
		metrics.SessionStoreErrors.WithLabelValues("load").Inc()
		return nil, fmt.Errorf("load session: %w", err)
	}
	if state.Phase == domain.PhaseFetching {
		inflight, err := fc.sessions.FetchInFlight(ctx, sessionID)
		if err != nil {
			metrics.SessionStoreErrors.WithLabelValues("fetch_in_flight").Inc()
			return nil, fmt.Errorf("check in-flight fetch: %w", err)
		}
		if !inflight {
			state.Phase = domain.PhaseEditing
		}
	}
	return state, nil
}

// Submit handles one form submission. Rejected input comes back as field
// errors or a summary on the returned state; a failed fetch comes back as
// FetchError with RetryBox set. The returned error is reserved for session
// store failures.
func (fc *FormController) Submit(ctx context.Context, sessionID string, values map[string]string) (*domain.FormState, error) {
	ctx, span := fc.tracer.Start(ctx, "form.Submit",
		trace.WithAttributes(attribute.String(telemetry.AttrSessionID, sessionID)))
	defer span.End()

	state, err := fc.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	state.Phase = domain.PhaseSubmitting
	state.ClearErrors()
	state.Values = maps.Clone(values)

	box, ferrs := domain.ParseForm(values)
	if len(ferrs) > 0 {
		metrics.ValidationOutcomes.WithLabelValues(ResultFieldError).Inc()
		span.SetAttributes(attribute.String(telemetry.AttrResult, ResultFieldError))
		state.FieldErrors = ferrs
		return fc.reject(ctx, sessionID, state, &domain.SubmissionEvent{Result: ResultFieldError, Error: ferrs.Error()})
	}

	result := fc.Validate(box)
	metrics.ValidationOutcomes.WithLabelValues(result.String()).Inc()
	span.SetAttributes(attribute.String(telemetry.AttrResult, result.String()))

	switch result {
	case domain.InvalidLatitudeOrder:
		state.FieldErrors = orderingErrors(domain.FieldMinLat, domain.FieldMaxLat)
		state.Summary = domain.OrderingMessage
	case domain.InvalidLongitudeOrder:
		state.FieldErrors = orderingErrors(domain.FieldMinLong, domain.FieldMaxLong)
		state.Summary = domain.OrderingMessage
	case domain.AreaTooLarge:
		state.FieldErrors = domain.FieldErrors{
			domain.FieldMaxLat: {Field: domain.FieldMaxLat, Rule: domain.AreaLimit, Message: domain.AreaMessage},
		}
	}
	if result != domain.Valid {
		event := &domain.SubmissionEvent{
			Result:      result.String(),
			BoundingBox: &box,
			Error:       domain.ValidationError(box, result, fc.areaLimit).Error(),
		}
		return fc.reject(ctx, sessionID, state, event)
	}

	return fc.fetchAndDisplay(ctx, sessionID, state, box)
}

// Retry refetches the box of the last failed request.
func (fc *FormController) Retry(ctx context.Context, sessionID string) (*domain.FormState, error) {
	ctx, span := fc.tracer.Start(ctx, "form.Retry",
		trace.WithAttributes(attribute.String(telemetry.AttrSessionID, sessionID)))
	defer span.End()

	state, err := fc.State(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state.RetryBox == nil {
		return state, domain.ErrNothingToRetry
	}
	box := *state.RetryBox
	if result := fc.Validate(box); result != domain.Valid {
		return state, domain.ValidationError(box, result, fc.areaLimit)
	}
	state.ClearErrors()
	return fc.fetchAndDisplay(ctx, sessionID, state, box)
}

// Reset discards the session, including the map. It returns
// domain.ErrFetchInProgress while a fetch is pending, since that fetch
// would save its result over the cleared state.
func (fc *FormController) Reset(ctx context.Context, sessionID string) error {
	began, err := fc.sessions.TryBeginFetch(ctx, sessionID)
	if err != nil {
		metrics.SessionStoreErrors.WithLabelValues("begin_fetch").Inc()
		return fmt.Errorf("begin fetch: %w", err)
	}
	if !began {
		return domain.ErrFetchInProgress
	}
	defer func() {
		if err := fc.sessions.EndFetch(context.WithoutCancel(ctx), sessionID); err != nil {
			metrics.SessionStoreErrors.WithLabelValues("end_fetch").Inc()
			logging.FromContext(ctx).Warn("end fetch", "error", err)
		}
	}()

	if err := fc.sessions.Delete(ctx, sessionID); err != nil {
		metrics.SessionStoreErrors.WithLabelValues("delete").Inc()
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Elements validates box, fetches it and converts the result without
// touching any session. Invalid boxes return *domain.OrderingError or
// *domain.AreaLimitError and never reach the network.
func (fc *FormController) Elements(ctx context.Context, box domain.BoundingBox) (*domain.GeometryCollection, error) {
	result := fc.Validate(box)
	metrics.ValidationOutcomes.WithLabelValues(result.String()).Inc()
	if result != domain.Valid {
		return nil, domain.ValidationError(box, result, fc.areaLimit)
	}
	raw, err := fc.fetcher.FetchElements(ctx, box)
	if err != nil {
		return nil, err
	}
	return fc.toGeometry(ctx, raw), nil
}

func (fc *FormController) fetchAndDisplay(ctx context.Context, sessionID string, state *domain.FormState, box domain.BoundingBox) (*domain.FormState, error) {
	log := logging.FromContext(ctx).With("bbox", box.QueryValue())

	began, err := fc.sessions.TryBeginFetch(ctx, sessionID)
	if err != nil {
		metrics.SessionStoreErrors.WithLabelValues("begin_fetch").Inc()
		return nil, fmt.Errorf("begin fetch: %w", err)
	}
	if !began {
		// The pending fetch owns the stored state; report without saving.
		metrics.SubmissionsIgnored.Inc()
		log.Info("submission ignored, fetch in flight")
		state.Phase = domain.PhaseFetching
		state.Summary = domain.ErrFetchInProgress.Error()
		fc.publish(ctx, sessionID, &domain.SubmissionEvent{Result: ResultIgnored, BoundingBox: &box})
		return state, nil
	}
	defer func() {
		if err := fc.sessions.EndFetch(context.WithoutCancel(ctx), sessionID); err != nil {
			metrics.SessionStoreErrors.WithLabelValues("end_fetch").Inc()
			log.Warn("end fetch", "error", err)
		}
	}()

	// A fetch that starts clears the fields for the next entry.
	state.Values = map[string]string{}
	state.Phase = domain.PhaseFetching
	if err := fc.save(ctx, sessionID, state); err != nil {
		return nil, err
	}

	raw, err := fc.fetcher.FetchElements(ctx, box)
	if err != nil {
		log.Warn("fetch map elements", "error", err)
		state.Phase = domain.PhaseEditing
		state.FetchError = FetchFailedMessage
		state.RetryBox = &box
		fc.publish(ctx, sessionID, &domain.SubmissionEvent{Result: ResultFetchFailed, BoundingBox: &box, Error: err.Error()})
		if err := fc.save(context.WithoutCancel(ctx), sessionID, state); err != nil {
			return nil, err
		}
		return state, nil
	}

	geometry := fc.toGeometry(ctx, raw)
	state.Phase = domain.PhaseDisplaying
	state.Geometry = geometry
	state.LastBox = &box

	count := 0
	if geometry != nil {
		count = len(geometry.Features)
	}
	metrics.RenderedFeatures.Observe(float64(count))
	trace.SpanFromContext(ctx).SetAttributes(attribute.Int(telemetry.AttrFeatures, count))
	log.Info("map elements displayed", "features", count)

	fc.publish(ctx, sessionID, &domain.SubmissionEvent{Result: domain.Valid.String(), BoundingBox: &box, FeatureCount: count})
	if err := fc.save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

// toGeometry degrades conversion failures to "nothing to render".
func (fc *FormController) toGeometry(ctx context.Context, raw domain.RawMapData) *domain.GeometryCollection {
	geometry, err := fc.converter.Convert(raw)
	if err != nil {
		metrics.ConversionFailures.Inc()
		logging.FromContext(ctx).Warn("convert map data", "error", err, "bytes", len(raw))
		return nil
	}
	return geometry
}

func (fc *FormController) reject(ctx context.Context, sessionID string, state *domain.FormState, event *domain.SubmissionEvent) (*domain.FormState, error) {
	state.Phase = domain.PhaseEditing
	fc.publish(ctx, sessionID, event)
	if err := fc.save(ctx, sessionID, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (fc *FormController) save(ctx context.Context, sessionID string, state *domain.FormState) error {
	state.UpdatedAt = fc.now()
	if err := fc.sessions.Save(ctx, sessionID, state); err != nil {
		metrics.SessionStoreErrors.WithLabelValues("save").Inc()
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (fc *FormController) publish(ctx context.Context, sessionID string, event *domain.SubmissionEvent) {
	if fc.events == nil {
		return
	}
	event.SessionID = sessionID
	event.At = fc.now()
	if err := fc.events.PublishSubmission(ctx, event); err != nil {
		logging.FromContext(ctx).Warn("publish submission event", "error", err, "result", event.Result)
	}
}

func orderingErrors(minField, maxField string) domain.FieldErrors {
	return domain.FieldErrors{
		minField: {Field: minField, Rule: domain.Ordering},
		maxField: {Field: maxField, Rule: domain.Ordering},
	}
}
