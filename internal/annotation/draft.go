package annotation

import "sync"

// Draft is the annotation text being edited for one incident.
type Draft struct {
	IncidentID string
	TeamID     string

	mu         sync.Mutex
	text       string
	submitting bool
}

// NewDraft starts a draft prefilled with the incident's current annotation.
func NewDraft(incidentID, teamID, text string) *Draft {
	return &Draft{IncidentID: incidentID, TeamID: teamID, text: text}
}

func (d *Draft) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.text
}

func (d *Draft) SetText(text string) {
	d.mu.Lock()
	d.text = text
	d.mu.Unlock()
}

// Submitting reports whether a save is running; the submit control is
// disabled while it is true.
func (d *Draft) Submitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitting
}

func (d *Draft) setSubmitting(v bool) {
	d.mu.Lock()
	d.submitting = v
	d.mu.Unlock()
}
