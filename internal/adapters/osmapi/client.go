package osmapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/samirrijal/bboxmap/internal/core/domain"
	"github.com/samirrijal/bboxmap/internal/pkg/metrics"
)

// MapPath is the OSM API v0.6 map export endpoint.
const MapPath = "/api/0.6/map"

// Config configures the OSM API client.
type Config struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerSecond float64
	MaxResponseBytes  int64
}

// Client implements ports.MapDataFetcher against the OSM API.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxBytes   int64
	tracer     trace.Tracer
}

// NewClient creates a new OSM API client.
func NewClient(cfg Config) *Client {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = 50 << 20
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, 1),
		maxBytes:   cfg.MaxResponseBytes,
		tracer:     otel.Tracer("github.com/samirrijal/bboxmap/internal/adapters/osmapi"),
	}
}

// MapURL builds the map export URL for box. The bbox value is left
// unencoded: "?bbox=left,bottom,right,top".
func (c *Client) MapURL(box domain.BoundingBox) string {
	return c.baseURL + MapPath + "?bbox=" + box.QueryValue()
}

// FetchElements issues a single GET for the elements inside box. There is no
// retry: any transport failure or non-2xx status is returned as a
// *domain.NetworkError.
func (c *Client) FetchElements(ctx context.Context, box domain.BoundingBox) (_ domain.RawMapData, err error) {
	ctx, span := c.tracer.Start(ctx, "osm.FetchElements",
		trace.WithAttributes(attribute.String("osm.bbox", box.QueryValue())))
	start := time.Now()
	defer func() {
		metrics.OSMFetchDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.OSMFetchErrors.WithLabelValues(failureReason(err)).Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("rate limit wait: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.MapURL(box), nil)
	if err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/xml, application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Err: err}
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, &domain.NetworkError{
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(string(b))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, &domain.NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBytes {
		return nil, &domain.NetworkError{Err: fmt.Errorf("response exceeds %d bytes", c.maxBytes)}
	}
	return domain.RawMapData(body), nil
}

func failureReason(err error) string {
	var ne *domain.NetworkError
	if errors.As(err, &ne) && ne.StatusCode != 0 {
		return "status_" + strconv.Itoa(ne.StatusCode)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	return "transport"
}
