package alerting

import "time"

// instantLayout matches JavaScript's Date.toISOString (millisecond precision, Z).
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// IncidentsQuery is the body of POST /api/incidents/{team}.
type IncidentsQuery struct {
	Since    string `json:"since"`
	Until    string `json:"until"`
	Timezone string `json:"timezone"`
}

// DayBounds widens since to the start of its day and until to the last
// millisecond of its day, both in loc.
func DayBounds(since, until time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	sy, sm, sd := since.In(loc).Date()
	uy, um, ud := until.In(loc).Date()
	start := time.Date(sy, sm, sd, 0, 0, 0, 0, loc)
	end := time.Date(uy, um, ud, 23, 59, 59, int(999*time.Millisecond), loc)
	return start, end
}

// NewIncidentsQuery builds the wire query for a date range in loc. The
// instants are absolute (UTC) so the day boundaries survive any server zone.
func NewIncidentsQuery(since, until time.Time, loc *time.Location) IncidentsQuery {
	if loc == nil {
		loc = time.UTC
	}
	start, end := DayBounds(since, until, loc)
	return IncidentsQuery{
		Since:    start.UTC().Format(instantLayout),
		Until:    end.UTC().Format(instantLayout),
		Timezone: loc.String(),
	}
}
