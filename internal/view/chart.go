// Package view holds the server-side view state of a dashboard: the daily
// urgency chart, the consolidated incident table and the mediator that keeps
// the two cross-filtered.
package view

import (
	"errors"
	"fmt"

	"github.com/edvin/alertboard/internal/model"
)

// ErrUnknownSeries is returned when toggling a series the chart does not draw.
var ErrUnknownSeries = errors.New("unknown chart series")

// SeriesInfo describes how a chart series is labelled and drawn.
type SeriesInfo struct {
	Key   model.Urgency `json:"key"`
	Label string        `json:"label"`
	Color string        `json:"color"`
}

// Series lists the chart series in legend order.
var Series = []SeriesInfo{
	{Key: model.UrgencyHigh, Label: "High Priority", Color: "#dc2626"},
	{Key: model.UrgencyLow, Label: "Low Priority", Color: "#fbbf24"},
}

// Point is one day on the chart.
type Point struct {
	Date string `json:"date"`
	High int    `json:"high"`
	Low  int    `json:"low"`
}

// Value returns the count for a series.
func (p Point) Value(key model.Urgency) int {
	if key == model.UrgencyHigh {
		return p.High
	}
	return p.Low
}

// ChartState is a snapshot of the chart. Loading is distinct from a loaded
// but empty chart.
type ChartState struct {
	Loading  bool            `json:"loading"`
	Points   []Point         `json:"points"`
	Selected model.Urgency   `json:"selected"`
	Hidden   []model.Urgency `json:"hidden"`
}

// Visible reports whether a series should be drawn.
func (s ChartState) Visible(key model.Urgency) bool {
	for _, h := range s.Hidden {
		if h == key {
			return false
		}
	}
	return true
}

// Chart is the legend and data state of the daily urgency chart. It is not
// safe for concurrent use; Dashboard serializes access.
type Chart struct {
	loading  bool
	points   []Point
	selected model.Urgency
	hidden   map[model.Urgency]bool
}

// NewChart returns a chart in the loading state with every series shown.
func NewChart() *Chart {
	return &Chart{loading: true, hidden: map[model.Urgency]bool{}}
}

// SetSummary replaces the chart data. A nil summary puts the chart back into
// the loading state.
func (c *Chart) SetSummary(s *model.DailySummary) {
	if s == nil {
		c.loading = true
		c.points = nil
		return
	}
	points := make([]Point, 0, s.Len())
	s.Each(func(date string, count model.DayCount) {
		points = append(points, Point{Date: date, High: count.High, Low: count.Low})
	})
	c.loading = false
	c.points = points
}

// Toggle applies a legend click. Clicking the selected series shows every
// series again; clicking another series shows only that one. It returns the
// resulting selection, empty when nothing is selected.
func (c *Chart) Toggle(key model.Urgency) (model.Urgency, error) {
	if !knownSeries(key) {
		return c.selected, fmt.Errorf("%w: %q", ErrUnknownSeries, key)
	}
	if c.selected == key {
		c.clear()
	} else {
		c.only(key)
	}
	return c.selected, nil
}

// Sync mirrors an urgency chosen outside the chart, such as the table's
// urgency filter. An empty urgency shows every series.
func (c *Chart) Sync(external model.Urgency) {
	if external == model.UrgencyNone || !knownSeries(external) {
		c.clear()
		return
	}
	c.only(external)
}

// Selected returns the selected series, empty when none is.
func (c *Chart) Selected() model.Urgency {
	return c.selected
}

func (c *Chart) State() ChartState {
	points := make([]Point, len(c.points))
	copy(points, c.points)
	st := ChartState{
		Loading:  c.loading,
		Points:   points,
		Selected: c.selected,
		Hidden:   []model.Urgency{},
	}
	for _, s := range Series {
		if c.hidden[s.Key] {
			st.Hidden = append(st.Hidden, s.Key)
		}
	}
	return st
}

func (c *Chart) clear() {
	c.selected = model.UrgencyNone
	c.hidden = map[model.Urgency]bool{}
}

func (c *Chart) only(key model.Urgency) {
	c.selected = key
	c.hidden = map[model.Urgency]bool{}
	for _, s := range Series {
		if s.Key != key {
			c.hidden[s.Key] = true
		}
	}
}

func knownSeries(key model.Urgency) bool {
	for _, s := range Series {
		if s.Key == key {
			return true
		}
	}
	return false
}
