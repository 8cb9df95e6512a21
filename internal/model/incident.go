package model

import "time"

// Incident is one alert record as returned by the alerting backend, after
// validation. Timestamps are normalized to UTC.
type Incident struct {
	ID          int64       `json:"id"`
	IncidentID  string      `json:"incident_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Summary     string      `json:"summary"`
	Status      string      `json:"status"`
	Urgency     Urgency     `json:"urgency"`
	CreatedAt   time.Time   `json:"created_at"`
	Annotation  *Annotation `json:"annotation"`
	Team        int64       `json:"team"`
	Actionable  *bool       `json:"actionable"`
}

// Annotation is the free-text note attached to an incident.
type Annotation struct {
	CreatedAt time.Time `json:"created_at"`
	Summary   string    `json:"summary"`
}

// ConsolidatedIncident is a table row standing in for every incident that
// shares a title. The embedded Incident is the most recent occurrence.
type ConsolidatedIncident struct {
	Incident
	Occurrences []Incident `json:"occurrences"`
	Count       int        `json:"count"`
}

// RowID is the identity used for selection and manual reordering.
func (c ConsolidatedIncident) RowID() int64 {
	return c.ID
}

// IncidentsResponse is the envelope returned by the per-team incidents
// endpoint. It is only usable when every field validated.
type IncidentsResponse struct {
	Incidents []Incident    `json:"incidents"`
	Summary   *DailySummary `json:"summary"`
	Team      Team          `json:"team"`
}
