package model

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DayCount is the number of incidents of each urgency on one day.
type DayCount struct {
	High int `json:"high" validate:"min=0"`
	Low  int `json:"low" validate:"min=0"`
}

// DailySummary maps YYYY-MM-DD keys to per-urgency counts. Keys keep the
// order in which the backend emitted them; the chart uses it as x-axis order.
type DailySummary struct {
	days *orderedmap.OrderedMap[string, DayCount]
}

func NewDailySummary() *DailySummary {
	return &DailySummary{days: orderedmap.New[string, DayCount]()}
}

// Set stores the counts for date. Re-setting an existing date keeps its position.
func (s *DailySummary) Set(date string, c DayCount) {
	s.days.Set(date, c)
}

func (s *DailySummary) Get(date string) (DayCount, bool) {
	if s == nil {
		return DayCount{}, false
	}
	return s.days.Get(date)
}

func (s *DailySummary) Len() int {
	if s == nil {
		return 0
	}
	return s.days.Len()
}

// Each visits the days in emission order.
func (s *DailySummary) Each(fn func(date string, c DayCount)) {
	if s == nil {
		return
	}
	for pair := s.days.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Dates returns the keys in emission order.
func (s *DailySummary) Dates() []string {
	dates := make([]string, 0, s.Len())
	s.Each(func(date string, _ DayCount) {
		dates = append(dates, date)
	})
	return dates
}

func (s *DailySummary) MarshalJSON() ([]byte, error) {
	if s.days == nil {
		return []byte("{}"), nil
	}
	return s.days.MarshalJSON()
}

func (s *DailySummary) UnmarshalJSON(data []byte) error {
	s.days = orderedmap.New[string, DayCount]()
	return s.days.UnmarshalJSON(data)
}
