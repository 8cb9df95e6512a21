package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/edvin/alertboard/internal/alerting"
	"github.com/edvin/alertboard/internal/api/request"
	"github.com/edvin/alertboard/internal/api/response"
)

// Backend is the part of *alerting.Backend the proxy routes forward to.
type Backend interface {
	ForwardIncidents(ctx context.Context, team string, body []byte) (*alerting.RawResponse, error)
	ListTeams(ctx context.Context) (*alerting.RawResponse, error)
}

// Proxy serves the same-origin routes that forward to the alerting backend.
// Successful upstream bodies are passed through unchanged.
type Proxy struct {
	backend Backend
	teams   singleflight.Group
}

func NewProxy(backend Backend) *Proxy {
	return &Proxy{backend: backend}
}

// Incidents forwards POST /api/incidents/{team}.
func (h *Proxy) Incidents(w http.ResponseWriter, r *http.Request) {
	team, err := request.RequireTeam(chi.URLParam(r, "team"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	body, err := request.ReadBody(r)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var q request.IncidentsQuery
	if err := request.DecodeBytes(body, &q); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := q.CheckOrder(); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.backend.ForwardIncidents(r.Context(), team, body)
	h.relay(w, r, resp, err)
}

// Teams forwards GET /api/teams. Concurrent callers share one upstream call.
func (h *Proxy) Teams(w http.ResponseWriter, r *http.Request) {
	ctx := context.WithoutCancel(r.Context())
	v, err, _ := h.teams.Do("teams", func() (any, error) {
		return h.backend.ListTeams(ctx)
	})
	resp, _ := v.(*alerting.RawResponse)
	h.relay(w, r, resp, err)
}

func (h *Proxy) relay(w http.ResponseWriter, r *http.Request, resp *alerting.RawResponse, err error) {
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("proxy request failed")
		response.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !resp.OK() {
		zerolog.Ctx(r.Context()).Warn().Int("upstream_status", resp.StatusCode).Str("path", r.URL.Path).Msg("backend returned an error")
		response.WriteError(w, resp.StatusCode, fmt.Sprintf("Backend API request failed with status %d", resp.StatusCode))
		return
	}
	if !json.Valid(resp.Body) {
		zerolog.Ctx(r.Context()).Error().Str("path", r.URL.Path).Str("content_type", resp.ContentType).Msg("backend returned a non-JSON body")
		response.WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.WriteRaw(w, resp.StatusCode, resp.ContentType, resp.Body)
}
