package request

import (
	"fmt"
	"time"
)

// IncidentsQuery is the body of POST /api/incidents/{team}.
type IncidentsQuery struct {
	Since    string `json:"since" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Until    string `json:"until" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Timezone string `json:"timezone" validate:"required,timezone"`
}

// CheckOrder rejects a range that ends before it starts.
func (q IncidentsQuery) CheckOrder() error {
	since, err := time.Parse(time.RFC3339, q.Since)
	if err != nil {
		return fmt.Errorf("since: %w", err)
	}
	until, err := time.Parse(time.RFC3339, q.Until)
	if err != nil {
		return fmt.Errorf("until: %w", err)
	}
	if until.Before(since) {
		return fmt.Errorf("until must not be before since")
	}
	return nil
}
