package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/alertboard/internal/metrics"
	"github.com/edvin/alertboard/internal/model"
	"github.com/edvin/alertboard/internal/schema"
	"github.com/edvin/alertboard/internal/telemetry"
)

// Client fetches incidents through the dashboard's same-origin proxy routes.
// BaseURL must be the dashboard origin, never the backend.
type Client struct {
	baseURL    string
	httpClient HTTPRequester
	location   *time.Location
	logger     zerolog.Logger
}

// NewClient creates a proxy client. Day boundaries are computed in loc.
func NewClient(cfg Config, loc *time.Location, logger zerolog.Logger) *Client {
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		baseURL:    cfg.baseURL(),
		httpClient: cfg.httpClient(),
		location:   loc,
		logger:     logger.With().Str("component", "incidents-client").Logger(),
	}
}

// Location returns the zone used for day boundaries.
func (c *Client) Location() *time.Location {
	return c.location
}

// FetchIncidents fetches and validates the incidents of teamID between the
// start of since's day and the end of until's day. Errors are either a
// *TransportError or a *schema.ValidationError; a response is never
// returned partially.
func (c *Client) FetchIncidents(ctx context.Context, teamID string, since, until time.Time) (resp *model.IncidentsResponse, err error) {
	query := NewIncidentsQuery(since, until, c.location)
	ctx, span := telemetry.StartSpan(ctx, "alerting.FetchIncidents",
		"team", teamID, "since", query.Since, "until", query.Until)
	defer func() {
		metrics.FetchTotal.WithLabelValues(fetchOutcome(err)).Inc()
		telemetry.EndSpan(span, err)
	}()

	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("marshal incidents query: %w", err)
	}

	body, err := c.do(ctx, "fetch incidents", http.MethodPost, "/api/incidents/"+url.PathEscape(teamID), payload)
	if err != nil {
		return nil, err
	}

	resp, err = schema.ValidateResponse(body)
	if err != nil {
		return nil, fmt.Errorf("incidents for team %s: %w", teamID, err)
	}

	c.logger.Debug().
		Str("team", teamID).
		Str("since", query.Since).
		Str("until", query.Until).
		Int("incidents", len(resp.Incidents)).
		Msg("fetched incidents")
	return resp, nil
}

// ListTeams fetches and validates the teams listing.
func (c *Client) ListTeams(ctx context.Context) (teams []model.Team, err error) {
	ctx, span := telemetry.StartSpan(ctx, "alerting.ListTeams")
	defer func() { telemetry.EndSpan(span, err) }()

	body, err := c.do(ctx, "list teams", http.MethodGet, "/api/teams", nil)
	if err != nil {
		return nil, err
	}
	teams, err = schema.ValidateTeams(body)
	if err != nil {
		return nil, fmt.Errorf("teams: %w", err)
	}
	return teams, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}
	return body, nil
}

func fetchOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, context.Canceled):
		return metrics.OutcomeCanceled
	case schema.IsValidationError(err):
		return metrics.OutcomeValidationError
	default:
		return metrics.OutcomeTransportError
	}
}
