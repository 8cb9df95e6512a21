// Package alertctl implements the alertctl commands. Each command writes a
// human-readable table to w.
package alertctl

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/edvin/alertboard/internal/consolidate"
	"github.com/edvin/alertboard/internal/model"
)

// TeamLister lists teams. *alerting.Client implements it.
type TeamLister interface {
	ListTeams(ctx context.Context) ([]model.Team, error)
}

// Fetcher loads incidents. *alerting.Client implements it.
type Fetcher interface {
	FetchIncidents(ctx context.Context, teamID string, since, until time.Time) (*model.IncidentsResponse, error)
}

// Saver writes annotations. *alerting.Backend implements it.
type Saver interface {
	SaveAnnotation(ctx context.Context, text, incidentID, teamID string) error
}

// IncidentsOptions selects what Incidents prints.
type IncidentsOptions struct {
	Team    string
	Since   time.Time
	Until   time.Time
	Urgency model.Urgency
}

// Teams prints every team the backend knows about.
func Teams(ctx context.Context, lister TeamLister, w io.Writer) error {
	teams, err := lister.ListTeams(ctx)
	if err != nil {
		return fmt.Errorf("list teams: %w", err)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTEAM ID\tNAME\tLAST CHECKED")
	for _, t := range teams {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", t.ID, t.TeamID, t.DisplayName(), formatTime(t.LastChecked))
	}
	return tw.Flush()
}

// Incidents fetches a team's incidents and prints them consolidated by
// title, most recent occurrence first within each row.
func Incidents(ctx context.Context, fetcher Fetcher, w io.Writer, opts IncidentsOptions) error {
	resp, err := fetcher.FetchIncidents(ctx, opts.Team, opts.Since, opts.Until)
	if err != nil {
		return fmt.Errorf("fetch incidents: %w", err)
	}

	incidents := resp.Incidents
	if opts.Urgency != model.UrgencyNone {
		filtered := make([]model.Incident, 0, len(incidents))
		for _, inc := range incidents {
			if inc.Urgency == opts.Urgency {
				filtered = append(filtered, inc)
			}
		}
		incidents = filtered
	}
	rows := consolidate.Incidents(incidents)

	fmt.Fprintf(w, "%s: %d incidents in %d rows\n\n", resp.Team.DisplayName(), len(incidents), len(rows))
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INCIDENT\tCREATED\tSTATUS\tURGENCY\tCOUNT\tTITLE\tNOTE")
	for _, r := range rows {
		note := "-"
		if r.Annotation != nil {
			note = truncate(r.Annotation.Summary, 40)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.IncidentID, formatTime(r.CreatedAt), r.Status, r.Urgency, r.Count, truncate(r.Title, 60), note)
	}
	return tw.Flush()
}

// Annotate saves text as the annotation of an incident.
func Annotate(ctx context.Context, saver Saver, w io.Writer, incidentID, team, text string) error {
	if err := saver.SaveAnnotation(ctx, text, incidentID, team); err != nil {
		return err
	}
	fmt.Fprintf(w, "Annotation saved for %s\n", incidentID)
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
