package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/edvin/alertboard/internal/alerting"
	"github.com/edvin/alertboard/internal/annotation"
	"github.com/edvin/alertboard/internal/api/request"
	"github.com/edvin/alertboard/internal/api/response"
	"github.com/edvin/alertboard/internal/model"
	"github.com/edvin/alertboard/internal/notify"
	"github.com/edvin/alertboard/internal/view"
)

// Dashboard serves the JSON endpoints that drive a session's dashboard view.
type Dashboard struct {
	sessions *view.Sessions
	loc      *time.Location
	idle     time.Duration
	now      func() time.Time
}

func NewDashboard(sessions *view.Sessions, loc *time.Location, idle time.Duration) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	return &Dashboard{sessions: sessions, loc: loc, idle: idle, now: time.Now}
}

type refreshResponse struct {
	Outcome view.RefreshOutcome `json:"outcome"`
	State   view.State          `json:"state"`
}

// Refresh loads a date range and returns the resulting state. Fetch
// failures are reported as notifications inside the state, not as errors.
func (h *Dashboard) Refresh(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}

	var req request.Refresh
	if err := request.DecodeOptional(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	since, until, err := h.bounds(req)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome := d.Refresh(r.Context(), since, until)
	response.WriteJSON(w, http.StatusOK, refreshResponse{Outcome: outcome, State: d.State()})
}

func (h *Dashboard) bounds(req request.Refresh) (time.Time, time.Time, error) {
	if req.Since == "" {
		return view.RangeBounds(req.Range, h.now(), h.loc)
	}
	since, err := view.ParseDate(req.Since, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	until, err := view.ParseDate(req.Until, h.loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if until.Before(since) {
		return time.Time{}, time.Time{}, errors.New("until must not be before since")
	}
	return since, until, nil
}

func (h *Dashboard) State(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	response.WriteJSON(w, http.StatusOK, d.State())
}

func (h *Dashboard) ToggleSeries(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.ToggleSeries
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := d.ToggleSeries(model.Urgency(req.Series)); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, d.State())
}

func (h *Dashboard) SetUrgency(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.UrgencyFilter
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.SetUrgencyFilter(model.Urgency(req.Urgency))
	response.WriteJSON(w, http.StatusOK, d.State())
}

func (h *Dashboard) SetFilters(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.Filters
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	filters := make([]view.ColumnFilter, 0, len(req.Filters))
	for _, f := range req.Filters {
		filters = append(filters, view.ColumnFilter{Column: f.Column, Value: f.Value})
	}
	h.apply(w, d, d.SetFilters(filters))
}

func (h *Dashboard) SetSorting(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.Sorting
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	specs := make([]view.SortSpec, 0, len(req.Sorting))
	for _, s := range req.Sorting {
		specs = append(specs, view.SortSpec{Column: s.Column, Desc: s.Desc})
	}
	h.apply(w, d, d.SetSorting(specs))
}

func (h *Dashboard) SetPagination(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.Pagination
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, d, d.SetPagination(req.PageIndex, req.PageSize))
}

func (h *Dashboard) SetVisibility(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.Visibility
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, d, d.SetColumnVisibility(req.Visibility))
}

func (h *Dashboard) SetSelection(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.Selection
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	d.SetSelection(req.Selected)
	response.WriteJSON(w, http.StatusOK, d.State())
}

func (h *Dashboard) MoveRow(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	var req request.MoveRow
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.apply(w, d, d.Move(*req.ActiveID, *req.OverID))
}

// SaveAnnotation writes an incident's note through the annotation writer.
func (h *Dashboard) SaveAnnotation(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	incidentID, err := request.RequireID(chi.URLParam(r, "incident_id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	var req request.Annotation
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = d.SaveAnnotation(r.Context(), incidentID, req.Annotation)
	var saveErr *alerting.AnnotationSaveError
	switch {
	case err == nil:
		response.WriteJSON(w, http.StatusOK, d.State())
	case errors.Is(err, view.ErrUnknownIncident):
		response.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, annotation.ErrSaveInFlight):
		response.WriteError(w, http.StatusConflict, err.Error())
	case errors.As(err, &saveErr):
		response.WriteError(w, http.StatusBadGateway, notify.TitleAnnotationError)
	default:
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

// Chart renders the chart as a PNG. While the first load is pending there
// is nothing to draw and the response is 204.
func (h *Dashboard) Chart(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.sessions, h.idle)
	if d == nil {
		return
	}
	width, err := dimension(r, "width", view.DefaultChartWidth)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	height, err := dimension(r, "height", view.DefaultChartHeight)
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	st := d.ChartState()
	if st.Loading {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := view.RenderChartPNG(st, w, width, height); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *Dashboard) apply(w http.ResponseWriter, d *view.Dashboard, err error) {
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	response.WriteJSON(w, http.StatusOK, d.State())
}

func dimension(r *http.Request, name string, fallback int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 100 || n > 4000 {
		return 0, errors.New(name + " must be an integer between 100 and 4000")
	}
	return n, nil
}
