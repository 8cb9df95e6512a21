package model

import "time"

type Team struct {
	ID          int64     `json:"id"`
	TeamID      string    `json:"team_id"`
	Name        string    `json:"name"`
	Alias       *string   `json:"alias"`
	Summary     string    `json:"summary"`
	CreatedAt   time.Time `json:"created_at"`
	LastChecked time.Time `json:"last_checked"`
}

// DisplayName prefers the alias when one is set.
func (t Team) DisplayName() string {
	if t.Alias != nil && *t.Alias != "" {
		return *t.Alias
	}
	return t.Name
}
