package alertctl

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/alertboard/internal/model"
)

type fakeClient struct {
	teams []model.Team
	resp  *model.IncidentsResponse
	err   error

	team  string
	since time.Time
}

func (f *fakeClient) ListTeams(context.Context) ([]model.Team, error) {
	return f.teams, f.err
}

func (f *fakeClient) FetchIncidents(_ context.Context, team string, since, _ time.Time) (*model.IncidentsResponse, error) {
	f.team, f.since = team, since
	return f.resp, f.err
}

type recordingSaver struct {
	err  error
	args []string
}

func (s *recordingSaver) SaveAnnotation(_ context.Context, text, incidentID, teamID string) error {
	s.args = []string{text, incidentID, teamID}
	return s.err
}

func incident(id int64, title string, u model.Urgency, day int) model.Incident {
	return model.Incident{
		ID:         id,
		IncidentID: "Q" + title + string(rune('0'+id)),
		Title:      title,
		Status:     model.StatusTriggered,
		Urgency:    u,
		CreatedAt:  time.Date(2025, 5, day, 8, 0, 0, 0, time.UTC),
	}
}

func TestTeams(t *testing.T) {
	alias := "obs"
	client := &fakeClient{teams: []model.Team{
		{ID: 98, TeamID: "PJ1BDNM", Name: "Observability", Alias: &alias},
		{ID: 99, TeamID: "PX2", Name: "Storage"},
	}}
	var out bytes.Buffer

	require.NoError(t, Teams(context.Background(), client, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "TEAM ID")
	assert.Contains(t, lines[1], "obs")
	assert.Contains(t, lines[2], "Storage")
	assert.Contains(t, lines[2], "-")
}

func TestTeams_Error(t *testing.T) {
	err := Teams(context.Background(), &fakeClient{err: errors.New("refused")}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "list teams: refused")
}

func TestIncidents_ConsolidatesAndFilters(t *testing.T) {
	client := &fakeClient{resp: &model.IncidentsResponse{
		Incidents: []model.Incident{
			incident(1, "A", model.UrgencyHigh, 27),
			incident(2, "A", model.UrgencyHigh, 28),
			incident(3, "B", model.UrgencyLow, 28),
		},
		Summary: model.NewDailySummary(),
		Team:    model.Team{Name: "Observability"},
	}}
	since := time.Date(2025, 5, 21, 0, 0, 0, 0, time.UTC)

	var out bytes.Buffer
	err := Incidents(context.Background(), client, &out, IncidentsOptions{Team: "98", Since: since, Until: since.AddDate(0, 0, 7)})
	require.NoError(t, err)
	assert.Equal(t, "98", client.team)
	assert.True(t, client.since.Equal(since))
	assert.Contains(t, out.String(), "Observability: 3 incidents in 2 rows")
	assert.Contains(t, out.String(), "2025-05-28T08:00:00Z")

	out.Reset()
	err = Incidents(context.Background(), client, &out, IncidentsOptions{Team: "98", Urgency: model.UrgencyLow})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Observability: 1 incidents in 1 rows")
	assert.NotContains(t, out.String(), "high")
}

func TestAnnotate(t *testing.T) {
	saver := &recordingSaver{}
	var out bytes.Buffer

	require.NoError(t, Annotate(context.Background(), saver, &out, "Q123", "98", "paged"))
	assert.Equal(t, []string{"paged", "Q123", "98"}, saver.args)
	assert.Equal(t, "Annotation saved for Q123\n", out.String())

	saver.err = errors.New("status 500")
	assert.Error(t, Annotate(context.Background(), saver, &out, "Q123", "98", "paged"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, "a b", truncate("a\nb", 10))
}
