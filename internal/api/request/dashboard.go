package request

// Refresh selects the date range to load. Since and Until take precedence
// over Range; with neither the default range is used.
type Refresh struct {
	Since string `json:"since" validate:"required_with=Until,omitempty,datetime=2006-01-02"`
	Until string `json:"until" validate:"required_with=Since,omitempty,datetime=2006-01-02"`
	Range string `json:"range" validate:"omitempty,oneof=7d 30d 90d"`
}

type ToggleSeries struct {
	Series string `json:"series" validate:"required,oneof=high low"`
}

// UrgencyFilter sets or, when empty, clears the table's urgency filter.
type UrgencyFilter struct {
	Urgency string `json:"urgency" validate:"omitempty,oneof=high low"`
}

type ColumnFilter struct {
	Column string `json:"column" validate:"required"`
	Value  string `json:"value" validate:"max=200"`
}

type Filters struct {
	Filters []ColumnFilter `json:"filters" validate:"dive"`
}

type SortColumn struct {
	Column string `json:"column" validate:"required"`
	Desc   bool   `json:"desc"`
}

type Sorting struct {
	Sorting []SortColumn `json:"sorting" validate:"dive"`
}

type Pagination struct {
	PageIndex int `json:"page_index" validate:"min=0"`
	PageSize  int `json:"page_size" validate:"required,oneof=10 20 30 40 50"`
}

type Visibility struct {
	Visibility map[string]bool `json:"visibility" validate:"required"`
}

type Selection struct {
	Selected []int64 `json:"selected"`
}

// MoveRow drops the active row onto the over row. Zero is a valid row ID,
// so only a missing field is rejected.
type MoveRow struct {
	ActiveID *int64 `json:"active_id" validate:"required"`
	OverID   *int64 `json:"over_id" validate:"required"`
}

type Annotation struct {
	Annotation string `json:"annotation" validate:"max=10000"`
}
