package view

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/alertboard/internal/annotation"
	"github.com/edvin/alertboard/internal/consolidate"
	"github.com/edvin/alertboard/internal/metrics"
	"github.com/edvin/alertboard/internal/model"
	"github.com/edvin/alertboard/internal/notify"
	"github.com/edvin/alertboard/internal/schema"
)

// ErrUnknownIncident is returned when annotating an incident that is not in
// the loaded dataset.
var ErrUnknownIncident = errors.New("unknown incident")

// Fetcher loads a team's incidents. *alerting.Client implements it.
type Fetcher interface {
	FetchIncidents(ctx context.Context, teamID string, since, until time.Time) (*model.IncidentsResponse, error)
}

// RefreshOutcome says what happened to a refresh's result.
type RefreshOutcome string

const (
	RefreshApplied    RefreshOutcome = "applied"
	RefreshSuperseded RefreshOutcome = "superseded"
	RefreshCanceled   RefreshOutcome = "canceled"
	RefreshFailed     RefreshOutcome = "failed"
)

// State is a snapshot of everything a dashboard renders.
type State struct {
	Team          string                `json:"team"`
	TeamInfo      *model.Team           `json:"team_info,omitempty"`
	Since         string                `json:"since,omitempty"`
	Until         string                `json:"until,omitempty"`
	Loading       bool                  `json:"loading"`
	Chart         ChartState            `json:"chart"`
	Table         TablePage             `json:"table"`
	Saving        []string              `json:"saving"`
	Notifications []notify.Notification `json:"notifications"`
}

// Dashboard is one team's view in one session. It owns the chart and the
// table and keeps the chart's selected series and the table's urgency filter
// in step. All methods are safe for concurrent use.
type Dashboard struct {
	team    string
	fetcher Fetcher
	writer  *annotation.Writer
	feed    *notify.Feed
	logger  zerolog.Logger

	mu        sync.Mutex
	chart     *Chart
	table     *Table
	incidents []model.Incident
	teamInfo  *model.Team
	since     time.Time
	until     time.Time
	loading   bool
	seq       uint64
	cancel    context.CancelFunc
	drafts    map[string]*annotation.Draft
}

func NewDashboard(team string, fetcher Fetcher, saver annotation.Saver, logger zerolog.Logger) *Dashboard {
	logger = logger.With().Str("component", "dashboard").Str("team", team).Logger()
	feed := notify.NewFeed(0, logger)
	return &Dashboard{
		team:    team,
		fetcher: fetcher,
		writer:  annotation.NewWriter(saver, feed, logger),
		feed:    feed,
		logger:  logger,
		chart:   NewChart(),
		table:   NewTable(),
		drafts:  map[string]*annotation.Draft{},
	}
}

func (d *Dashboard) Team() string { return d.team }

// Refresh fetches incidents for the date range and applies them if no newer
// refresh has started in the meantime. Starting a refresh cancels the one in
// flight. Fetch failures become notifications and leave the displayed data
// untouched; they are never returned.
func (d *Dashboard) Refresh(ctx context.Context, since, until time.Time) RefreshOutcome {
	d.mu.Lock()
	d.seq++
	seq := d.seq
	if d.cancel != nil {
		d.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.loading = true
	d.mu.Unlock()
	defer cancel()

	resp, err := d.fetcher.FetchIncidents(fetchCtx, d.team, since, until)

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq != d.seq {
		metrics.RefreshTotal.WithLabelValues(metrics.OutcomeSuperseded).Inc()
		d.logger.Debug().Uint64("seq", seq).Uint64("latest", d.seq).Msg("discarding superseded refresh")
		return RefreshSuperseded
	}
	d.cancel = nil
	d.loading = false

	if err != nil {
		return d.fail(err)
	}

	d.apply(resp, since, until)
	metrics.RefreshTotal.WithLabelValues(metrics.OutcomeOK).Inc()
	return RefreshApplied
}

// fail reports a fetch error. Caller holds d.mu.
func (d *Dashboard) fail(err error) RefreshOutcome {
	if errors.Is(err, context.Canceled) {
		metrics.RefreshTotal.WithLabelValues(metrics.OutcomeCanceled).Inc()
		return RefreshCanceled
	}

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		metrics.RefreshTotal.WithLabelValues(metrics.OutcomeValidationError).Inc()
		d.logger.Error().Err(err).Interface("fields", ve.Fields).Msg("incidents response failed validation")
		d.feed.Notify(notify.KindError, notify.TitleInvalidData, err.Error())
		return RefreshFailed
	}

	metrics.RefreshTotal.WithLabelValues(metrics.OutcomeTransportError).Inc()
	d.logger.Error().Err(err).Msg("failed to load incidents")
	d.feed.Notify(notify.KindError, notify.TitleLoadFailed, err.Error())
	return RefreshFailed
}

// apply replaces the dataset and records the range it covers. Drafts are
// dropped unless their save is still running. Caller holds d.mu.
func (d *Dashboard) apply(resp *model.IncidentsResponse, since, until time.Time) {
	d.incidents = resp.Incidents
	d.since, d.until = since, until
	for id := range d.drafts {
		if !d.writer.Saving(id, d.team) {
			delete(d.drafts, id)
		}
	}
	team := resp.Team
	d.teamInfo = &team
	d.chart.SetSummary(resp.Summary)
	d.table.SetRows(consolidate.Incidents(resp.Incidents))
	d.chart.Sync(d.table.UrgencyFilter())
	d.logger.Info().
		Int("incidents", len(resp.Incidents)).
		Int("days", resp.Summary.Len()).
		Msg("dashboard refreshed")
}

// ToggleSeries applies a legend click and filters the table to match.
func (d *Dashboard) ToggleSeries(key model.Urgency) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	selected, err := d.chart.Toggle(key)
	if err != nil {
		return err
	}
	d.table.SetUrgencyFilter(selected)
	return nil
}

// SetUrgencyFilter filters the table by urgency and mirrors it on the chart.
func (d *Dashboard) SetUrgencyFilter(u model.Urgency) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table.SetUrgencyFilter(u)
	d.chart.Sync(u)
}

// SetFilters replaces the table's column filters. An urgency filter among
// them drives the chart.
func (d *Dashboard) SetFilters(filters []ColumnFilter) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.table.SetFilters(filters); err != nil {
		return err
	}
	d.chart.Sync(d.table.UrgencyFilter())
	return nil
}

func (d *Dashboard) SetSorting(specs []SortSpec) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table.SetSorting(specs)
}

func (d *Dashboard) SetPagination(pageIndex, pageSize int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table.SetPagination(pageIndex, pageSize)
}

func (d *Dashboard) SetColumnVisibility(visibility map[string]bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table.SetColumnVisibility(visibility)
}

func (d *Dashboard) SetSelection(ids []int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.table.SetSelection(ids)
}

func (d *Dashboard) Move(activeID, overID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.table.Move(activeID, overID)
}

// Draft returns the annotation draft for an incident, creating it from the
// incident's current annotation on first use.
func (d *Dashboard) Draft(incidentID string) (*annotation.Draft, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draftLocked(incidentID)
}

func (d *Dashboard) draftLocked(incidentID string) (*annotation.Draft, error) {
	if dr, ok := d.drafts[incidentID]; ok {
		return dr, nil
	}
	var inc *model.Incident
	for i := range d.incidents {
		if d.incidents[i].IncidentID == incidentID {
			inc = &d.incidents[i]
			break
		}
	}
	if inc == nil {
		return nil, ErrUnknownIncident
	}
	text := ""
	if inc.Annotation != nil {
		text = inc.Annotation.Summary
	}
	dr := annotation.NewDraft(incidentID, d.team, text)
	d.drafts[incidentID] = dr
	return dr, nil
}

// SaveAnnotation stores text in the incident's draft and submits it. On
// success the loaded incidents show the new note; on failure the draft keeps
// the text.
func (d *Dashboard) SaveAnnotation(ctx context.Context, incidentID, text string) error {
	d.mu.Lock()
	dr, err := d.draftLocked(incidentID)
	d.mu.Unlock()
	if err != nil {
		return err
	}

	dr.SetText(text)
	if err := d.writer.Submit(ctx, dr); err != nil {
		return err
	}

	note := &model.Annotation{CreatedAt: time.Now().UTC(), Summary: text}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.incidents {
		if d.incidents[i].IncidentID == incidentID {
			d.incidents[i].Annotation = note
		}
	}
	d.table.Annotate(incidentID, note)
	return nil
}

// Saving reports whether an annotation save for the incident is running.
func (d *Dashboard) Saving(incidentID string) bool {
	return d.writer.Saving(incidentID, d.team)
}

// savingLocked lists the incidents with an annotation save running. Every
// save goes through a draft, so the drafts cover them. Caller holds d.mu.
func (d *Dashboard) savingLocked() []string {
	saving := []string{}
	for id := range d.drafts {
		if d.writer.Saving(id, d.team) {
			saving = append(saving, id)
		}
	}
	slices.Sort(saving)
	return saving
}

// ChartState returns the chart snapshot used for rendering.
func (d *Dashboard) ChartState() ChartState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.chart.State()
}

// Notifications returns the dashboard's recent notifications.
func (d *Dashboard) Notifications() []notify.Notification {
	return d.feed.Recent()
}

func (d *Dashboard) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	st := State{
		Team:          d.team,
		TeamInfo:      d.teamInfo,
		Loading:       d.loading,
		Chart:         d.chart.State(),
		Table:         d.table.Page(),
		Saving:        d.savingLocked(),
		Notifications: d.feed.Recent(),
	}
	if !d.since.IsZero() {
		st.Since = d.since.Format(time.DateOnly)
		st.Until = d.until.Format(time.DateOnly)
	}
	return st
}

// Close cancels any refresh in flight.
func (d *Dashboard) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}
