package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/alertboard/internal/metrics"
	"github.com/edvin/alertboard/internal/telemetry"
)

const maxBodyBytes = 32 << 20

// Backend calls the alerting backend directly. The proxy routes use it to
// forward requests and the annotation writer uses it to persist notes.
type Backend struct {
	baseURL    string
	endpoints  Endpoints
	httpClient HTTPRequester
	logger     zerolog.Logger
}

// RawResponse is an upstream response passed through without interpretation.
type RawResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// OK reports whether the upstream answered with a 2xx status.
func (r *RawResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func NewBackend(cfg Config, endpoints Endpoints, logger zerolog.Logger) *Backend {
	return &Backend{
		baseURL:    cfg.baseURL(),
		endpoints:  endpoints.withDefaults(),
		httpClient: cfg.httpClient(),
		logger:     logger.With().Str("component", "alerting-backend").Logger(),
	}
}

// ForwardIncidents posts body unchanged to the per-team incidents endpoint.
// A non-nil error means no response was received.
func (b *Backend) ForwardIncidents(ctx context.Context, team string, body []byte) (*RawResponse, error) {
	path := fmt.Sprintf("%s/%s", trimPath(b.endpoints.Incidents), url.PathEscape(team))
	return b.forward(ctx, "incidents", http.MethodPost, path, body)
}

// ListTeams fetches the teams listing.
func (b *Backend) ListTeams(ctx context.Context) (*RawResponse, error) {
	return b.forward(ctx, "teams", http.MethodGet, trimPath(b.endpoints.Teams), nil)
}

// Ping checks that the backend answers the teams endpoint with a 2xx.
func (b *Backend) Ping(ctx context.Context) error {
	resp, err := b.ListTeams(ctx)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return &TransportError{Op: "ping backend", StatusCode: resp.StatusCode}
	}
	return nil
}

func (b *Backend) forward(ctx context.Context, route, method, path string, body []byte) (resp *RawResponse, err error) {
	ctx, span := telemetry.StartSpan(ctx, "alerting.forward", "route", route, "http.method", method)
	defer func() { telemetry.EndSpan(span, err) }()

	var reqBody io.Reader
	if body != nil {
		reqBody = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+"/"+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	httpResp, err := b.httpClient.Do(req)
	metrics.ProxyUpstreamDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProxyUpstreamTotal.WithLabelValues(route, "error").Inc()
		return nil, &TransportError{Op: method + " " + path, Err: err}
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		metrics.ProxyUpstreamTotal.WithLabelValues(route, "error").Inc()
		return nil, &TransportError{Op: method + " " + path, Err: fmt.Errorf("read response body: %w", err)}
	}
	metrics.ProxyUpstreamTotal.WithLabelValues(route, fmt.Sprint(httpResp.StatusCode)).Inc()

	b.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", httpResp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("forwarded request to backend")

	return &RawResponse{
		StatusCode:  httpResp.StatusCode,
		ContentType: httpResp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// AnnotationKey is the backend resource identifier for an incident's note.
func AnnotationKey(incidentID, teamID string) string {
	return incidentID + "_" + teamID
}

// SaveAnnotation persists text as the annotation of incidentID. Any failure
// is an *AnnotationSaveError; nothing is retried.
func (b *Backend) SaveAnnotation(ctx context.Context, text, incidentID, teamID string) (err error) {
	key := AnnotationKey(incidentID, teamID)
	ctx, span := telemetry.StartSpan(ctx, "alerting.SaveAnnotation", "annotation.key", key)
	defer func() { telemetry.EndSpan(span, err) }()

	payload, err := json.Marshal(map[string]string{"annotation": text})
	if err != nil {
		return &AnnotationSaveError{Key: key, Err: fmt.Errorf("marshal request: %w", err)}
	}

	endpoint := fmt.Sprintf("%s/%s/%s/annotation", b.baseURL, trimPath(b.endpoints.Annotation), url.PathEscape(key))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return &AnnotationSaveError{Key: key, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return &AnnotationSaveError{Key: key, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &AnnotationSaveError{Key: key, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}
