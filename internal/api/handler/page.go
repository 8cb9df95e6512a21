package handler

import (
	"context"
	"embed"
	"html/template"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/alertboard/internal/api/response"
	"github.com/edvin/alertboard/internal/model"
	"github.com/edvin/alertboard/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(
	template.New("dashboard.html").Funcs(templateFuncs()).ParseFS(templateFS, "templates/dashboard.html"),
)

// TeamLister lists the teams shown in the page's team picker.
type TeamLister interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
}

// PageData is passed to dashboard.html.
type PageData struct {
	State     view.State
	Teams     []model.Team
	Ranges    []string
	Columns   []string
	PageSizes []int
	Location  string
}

// Page serves the server-rendered dashboard.
type Page struct {
	dash  *Dashboard
	teams TeamLister
}

func NewPage(dash *Dashboard, teams TeamLister) *Page {
	return &Page{dash: dash, teams: teams}
}

// Show renders GET /dashboard/{team}. The team list and a first refresh of
// an unloaded dashboard run concurrently; a failed team listing only hides
// the picker.
func (h *Page) Show(w http.ResponseWriter, r *http.Request) {
	d := dashboardFor(w, r, h.dash.sessions, h.dash.idle)
	if d == nil {
		return
	}
	logger := zerolog.Ctx(r.Context())

	var teams []model.Team
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		list, err := h.teams.ListTeams(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("list teams for page")
			return nil
		}
		teams = list
		return nil
	})
	if st := d.State(); st.Since == "" && !st.Loading {
		g.Go(func() error {
			since, until, err := view.RangeBounds(view.DefaultRange, h.dash.now(), h.dash.loc)
			if err != nil {
				return err
			}
			d.Refresh(ctx, since, until)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		response.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	data := PageData{
		State:     d.State(),
		Teams:     teams,
		Ranges:    []string{"7d", "30d", "90d"},
		Columns:   view.Columns,
		PageSizes: view.PageSizes,
		Location:  h.dash.loc.String(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error().Err(err).Msg("render dashboard page")
	}
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime":   formatTime,
		"urgencyClass": urgencyClass,
		"columnLabel":  columnLabel,
		"inc":          func(i int) int { return i + 1 },
		"saving":       func(ids []string, id string) bool { return slices.Contains(ids, id) },
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func urgencyClass(u model.Urgency) string {
	if u == model.UrgencyHigh {
		return "high"
	}
	return "low"
}

func columnLabel(col string) string {
	switch col {
	case view.ColumnCreatedAt:
		return "Created"
	case view.ColumnAnnotation:
		return "Notes"
	default:
		return strings.ToUpper(col[:1]) + col[1:]
	}
}
