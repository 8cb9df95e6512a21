package model

// Incident status constants.
const (
	StatusTriggered    = "triggered"
	StatusAcknowledged = "acknowledged"
	StatusResolved     = "resolved"
)

// Urgency is the severity classification of an incident. The zero value
// means "no urgency selected" wherever it is used as a filter.
type Urgency string

// Urgency constants.
const (
	UrgencyHigh Urgency = "high"
	UrgencyLow  Urgency = "low"
	UrgencyNone Urgency = ""
)

// Urgencies lists the urgencies in chart series order.
var Urgencies = []Urgency{UrgencyHigh, UrgencyLow}

// ParseUrgency maps a string to an Urgency. The empty string is UrgencyNone.
func ParseUrgency(s string) (Urgency, bool) {
	switch Urgency(s) {
	case UrgencyHigh, UrgencyLow, UrgencyNone:
		return Urgency(s), true
	}
	return UrgencyNone, false
}
