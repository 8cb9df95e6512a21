package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/alertboard/internal/alerting"
	"github.com/edvin/alertboard/internal/config"
	"github.com/edvin/alertboard/internal/model"
	"github.com/edvin/alertboard/internal/view"
)

type fakeBackend struct {
	pingErr error
}

func (f *fakeBackend) ForwardIncidents(context.Context, string, []byte) (*alerting.RawResponse, error) {
	return &alerting.RawResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`{"ok":true}`)}, nil
}

func (f *fakeBackend) ListTeams(context.Context) (*alerting.RawResponse, error) {
	return &alerting.RawResponse{StatusCode: http.StatusOK, ContentType: "application/json", Body: []byte(`[]`)}, nil
}

func (f *fakeBackend) Ping(context.Context) error { return f.pingErr }

type noTeams struct{}

func (noTeams) ListTeams(context.Context) ([]model.Team, error) { return nil, nil }

type pendingFetcher struct{}

func (pendingFetcher) FetchIncidents(ctx context.Context, _ string, _, _ time.Time) (*model.IncidentsResponse, error) {
	return nil, &alerting.TransportError{Op: "fetch incidents", Err: errors.New("no backend in tests")}
}

func newTestServer(backend Backend) *Server {
	sessions := view.NewSessions(func(team string) *view.Dashboard {
		return view.NewDashboard(team, pendingFetcher{}, nil, zerolog.Nop())
	}, time.Hour, zerolog.Nop())
	cfg := &config.Config{
		Timezone:           "UTC",
		SessionIdleTimeout: time.Hour,
		CORSOrigins:        []string{"https://ops.example.com"},
	}
	return NewServer(zerolog.Nop(), Deps{Backend: backend, Sessions: sessions, Teams: noTeams{}}, cfg)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name    string
		pingErr error
		status  int
		check   string
	}{
		{"backend up", nil, http.StatusOK, "ok"},
		{"backend down", errors.New("connection refused"), http.StatusServiceUnavailable, "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(&fakeBackend{pingErr: tt.pingErr})
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.status, rec.Code)
			var checks map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &checks))
			assert.Equal(t, tt.check, checks["backend"])
		})
	}
}

func TestRoutes(t *testing.T) {
	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/api/teams", "", http.StatusOK},
		{http.MethodPost, "/api/incidents/98", `{"since":"2025-05-20T00:00:00Z","until":"2025-05-21T00:00:00Z","timezone":"UTC"}`, http.StatusOK},
		{http.MethodGet, "/api/incidents/98", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/dashboard/98/state", "", http.StatusOK},
		{http.MethodGet, "/dashboard/98/chart.png", "", http.StatusNoContent},
		{http.MethodPut, "/dashboard/98/table/pagination", `{"page_index":0,"page_size":20}`, http.StatusOK},
		{http.MethodPost, "/dashboard/98/chart/toggle", `{"series":"low"}`, http.StatusOK},
		{http.MethodGet, "/dashboard/98", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
	}
	s := newTestServer(&fakeBackend{})
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			r := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			r.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			s.ServeHTTP(rec, r)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&fakeBackend{})
	r := httptest.NewRequest(http.MethodOptions, "/api/teams", nil)
	r.Header.Set("Origin", "https://ops.example.com")
	r.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()

	s.ServeHTTP(rec, r)

	assert.Equal(t, "https://ops.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
