package view

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/edvin/alertboard/internal/model"
)

// Table columns.
const (
	ColumnTitle      = "title"
	ColumnCreatedAt  = "created_at"
	ColumnStatus     = "status"
	ColumnUrgency    = "urgency"
	ColumnAnnotation = "annotation"
	ColumnCount      = "count"
)

// Columns lists the table columns in display order.
var Columns = []string{ColumnTitle, ColumnCreatedAt, ColumnStatus, ColumnUrgency, ColumnAnnotation, ColumnCount}

// PageSizes are the selectable page sizes.
var PageSizes = []int{10, 20, 30, 40, 50}

const DefaultPageSize = 10

var (
	ErrUnknownColumn    = errors.New("unknown column")
	ErrUnknownRow       = errors.New("unknown row")
	ErrNotHideable      = errors.New("column cannot be hidden")
	ErrNotFilterable    = errors.New("column cannot be filtered")
	ErrInvalidFilter    = errors.New("invalid filter value")
	ErrInvalidPageSize  = errors.New("invalid page size")
	ErrInvalidPageIndex = errors.New("invalid page index")
)

// SortSpec orders rows by one column. Earlier specs take precedence.
type SortSpec struct {
	Column string `json:"column"`
	Desc   bool   `json:"desc"`
}

// ColumnFilter narrows rows by one column's value.
type ColumnFilter struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// TablePage is the part of the table currently shown.
type TablePage struct {
	Rows       []model.ConsolidatedIncident `json:"rows"`
	PageIndex  int                          `json:"page_index"`
	PageSize   int                          `json:"page_size"`
	PageCount  int                          `json:"page_count"`
	RowCount   int                          `json:"row_count"`
	Sorting    []SortSpec                   `json:"sorting"`
	Filters    []ColumnFilter               `json:"filters"`
	Visibility map[string]bool              `json:"visibility"`
	Selected   []int64                      `json:"selected"`
}

// Table is the view state of the consolidated incident table. Rows keep a
// manual order that sorting is applied on top of. It is not safe for
// concurrent use; Dashboard serializes access.
type Table struct {
	rows      []model.ConsolidatedIncident
	sorting   []SortSpec
	filters   []ColumnFilter
	hidden    map[string]bool
	selected  map[int64]bool
	pageIndex int
	pageSize  int
}

func NewTable() *Table {
	return &Table{
		hidden:   map[string]bool{},
		selected: map[int64]bool{},
		pageSize: DefaultPageSize,
	}
}

// SetRows replaces the working rows. Any manual reordering is discarded,
// the page index resets and selections of rows that are gone are dropped.
func (t *Table) SetRows(rows []model.ConsolidatedIncident) {
	t.rows = append([]model.ConsolidatedIncident(nil), rows...)
	t.pageIndex = 0

	present := make(map[int64]bool, len(t.rows))
	for _, r := range t.rows {
		present[r.RowID()] = true
	}
	for id := range t.selected {
		if !present[id] {
			delete(t.selected, id)
		}
	}
}

// Rows returns every row in manual order, unfiltered and unsorted.
func (t *Table) Rows() []model.ConsolidatedIncident {
	return append([]model.ConsolidatedIncident(nil), t.rows...)
}

// Row finds a row by its ID.
func (t *Table) Row(id int64) (model.ConsolidatedIncident, bool) {
	i := t.indexOf(id)
	if i < 0 {
		return model.ConsolidatedIncident{}, false
	}
	return t.rows[i], true
}

func (t *Table) SetSorting(specs []SortSpec) error {
	for _, s := range specs {
		if !slices.Contains(Columns, s.Column) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, s.Column)
		}
	}
	t.sorting = append([]SortSpec(nil), specs...)
	return nil
}

// SetFilters replaces every column filter. Filters with an empty value are
// dropped. The page index resets.
func (t *Table) SetFilters(filters []ColumnFilter) error {
	kept := make([]ColumnFilter, 0, len(filters))
	for _, f := range filters {
		if f.Value == "" {
			continue
		}
		if err := checkFilter(f); err != nil {
			return err
		}
		kept = slices.DeleteFunc(kept, func(k ColumnFilter) bool { return k.Column == f.Column })
		kept = append(kept, f)
	}
	t.filters = kept
	t.pageIndex = 0
	return nil
}

func (t *Table) Filters() []ColumnFilter {
	return append([]ColumnFilter(nil), t.filters...)
}

// SetUrgencyFilter sets the urgency column filter, or removes it when u is
// empty. Filters on other columns are kept.
func (t *Table) SetUrgencyFilter(u model.Urgency) {
	t.filters = slices.DeleteFunc(t.filters, func(f ColumnFilter) bool { return f.Column == ColumnUrgency })
	if u != model.UrgencyNone {
		t.filters = append(t.filters, ColumnFilter{Column: ColumnUrgency, Value: string(u)})
	}
	t.pageIndex = 0
}

// UrgencyFilter returns the urgency column filter, empty when there is none.
func (t *Table) UrgencyFilter() model.Urgency {
	for _, f := range t.filters {
		if f.Column == ColumnUrgency {
			return model.Urgency(f.Value)
		}
	}
	return model.UrgencyNone
}

// SetColumnVisibility applies visibility flags. Columns not named keep their
// current visibility. The title column is always shown.
func (t *Table) SetColumnVisibility(visibility map[string]bool) error {
	for col, visible := range visibility {
		if !slices.Contains(Columns, col) {
			return fmt.Errorf("%w: %q", ErrUnknownColumn, col)
		}
		if col == ColumnTitle && !visible {
			return fmt.Errorf("%w: %q", ErrNotHideable, col)
		}
	}
	for col, visible := range visibility {
		if visible {
			delete(t.hidden, col)
		} else {
			t.hidden[col] = true
		}
	}
	return nil
}

// Visibility reports every column's visibility.
func (t *Table) Visibility() map[string]bool {
	out := make(map[string]bool, len(Columns))
	for _, col := range Columns {
		out[col] = !t.hidden[col]
	}
	return out
}

// SetSelection replaces the selected rows. IDs of rows that do not exist are
// ignored.
func (t *Table) SetSelection(ids []int64) {
	t.selected = make(map[int64]bool, len(ids))
	for _, id := range ids {
		if t.indexOf(id) >= 0 {
			t.selected[id] = true
		}
	}
}

// Selected returns the selected row IDs in manual row order.
func (t *Table) Selected() []int64 {
	out := make([]int64, 0, len(t.selected))
	for _, r := range t.rows {
		if t.selected[r.RowID()] {
			out = append(out, r.RowID())
		}
	}
	return out
}

func (t *Table) SetPagination(pageIndex, pageSize int) error {
	if !slices.Contains(PageSizes, pageSize) {
		return fmt.Errorf("%w: %d", ErrInvalidPageSize, pageSize)
	}
	if pageIndex < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPageIndex, pageIndex)
	}
	t.pageSize = pageSize
	t.pageIndex = pageIndex
	return nil
}

// Move places the row activeID at the position of overID, shifting the rows
// in between.
func (t *Table) Move(activeID, overID int64) error {
	from := t.indexOf(activeID)
	if from < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, activeID)
	}
	to := t.indexOf(overID)
	if to < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRow, overID)
	}
	if from == to {
		return nil
	}
	row := t.rows[from]
	t.rows = slices.Delete(t.rows, from, from+1)
	t.rows = slices.Insert(t.rows, to, row)
	return nil
}

// Page filters, sorts and paginates the rows. A page index past the end is
// clamped to the last page.
func (t *Table) Page() TablePage {
	visible := make([]model.ConsolidatedIncident, 0, len(t.rows))
	for _, r := range t.rows {
		if t.matches(r) {
			visible = append(visible, r)
		}
	}
	if len(t.sorting) > 0 {
		slices.SortStableFunc(visible, t.compare)
	}

	pageCount := (len(visible) + t.pageSize - 1) / t.pageSize
	pageIndex := t.pageIndex
	if pageCount > 0 && pageIndex >= pageCount {
		pageIndex = pageCount - 1
	}
	if pageCount == 0 {
		pageIndex = 0
	}
	start := min(pageIndex*t.pageSize, len(visible))
	end := min(start+t.pageSize, len(visible))

	return TablePage{
		Rows:       visible[start:end],
		PageIndex:  pageIndex,
		PageSize:   t.pageSize,
		PageCount:  pageCount,
		RowCount:   len(visible),
		Sorting:    append([]SortSpec{}, t.sorting...),
		Filters:    append([]ColumnFilter{}, t.filters...),
		Visibility: t.Visibility(),
		Selected:   t.Selected(),
	}
}

func (t *Table) indexOf(id int64) int {
	return slices.IndexFunc(t.rows, func(r model.ConsolidatedIncident) bool { return r.RowID() == id })
}

func (t *Table) matches(r model.ConsolidatedIncident) bool {
	for _, f := range t.filters {
		switch f.Column {
		case ColumnUrgency:
			if string(r.Urgency) != f.Value {
				return false
			}
		case ColumnStatus:
			if r.Status != f.Value {
				return false
			}
		case ColumnAnnotation:
			if hasNotes(r) != (f.Value == "yes") {
				return false
			}
		case ColumnTitle:
			if !strings.Contains(strings.ToLower(r.Title), strings.ToLower(f.Value)) {
				return false
			}
		}
	}
	return true
}

func (t *Table) compare(a, b model.ConsolidatedIncident) int {
	for _, s := range t.sorting {
		var c int
		switch s.Column {
		case ColumnTitle:
			c = strings.Compare(a.Title, b.Title)
		case ColumnCreatedAt:
			c = a.CreatedAt.Compare(b.CreatedAt)
		case ColumnStatus:
			c = strings.Compare(a.Status, b.Status)
		case ColumnUrgency:
			c = strings.Compare(string(a.Urgency), string(b.Urgency))
		case ColumnAnnotation:
			c = cmp.Compare(boolRank(hasNotes(a)), boolRank(hasNotes(b)))
		case ColumnCount:
			c = cmp.Compare(a.Count, b.Count)
		}
		if s.Desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

func checkFilter(f ColumnFilter) error {
	switch f.Column {
	case ColumnTitle:
		return nil
	case ColumnUrgency:
		if _, ok := model.ParseUrgency(f.Value); !ok {
			return fmt.Errorf("%w: urgency %q", ErrInvalidFilter, f.Value)
		}
	case ColumnStatus:
		switch f.Value {
		case model.StatusTriggered, model.StatusAcknowledged, model.StatusResolved:
		default:
			return fmt.Errorf("%w: status %q", ErrInvalidFilter, f.Value)
		}
	case ColumnAnnotation:
		if f.Value != "yes" && f.Value != "no" {
			return fmt.Errorf("%w: annotation %q", ErrInvalidFilter, f.Value)
		}
	case ColumnCreatedAt, ColumnCount:
		return fmt.Errorf("%w: %q", ErrNotFilterable, f.Column)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownColumn, f.Column)
	}
	return nil
}

func hasNotes(r model.ConsolidatedIncident) bool {
	return r.Annotation != nil
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Annotate sets the annotation of every loaded incident with incidentID,
// in place, keeping the manual row order.
func (t *Table) Annotate(incidentID string, note *model.Annotation) {
	for i := range t.rows {
		row := &t.rows[i]
		if row.IncidentID == incidentID {
			row.Annotation = note
		}
		occ := make([]model.Incident, len(row.Occurrences))
		copy(occ, row.Occurrences)
		for j := range occ {
			if occ[j].IncidentID == incidentID {
				occ[j].Annotation = note
			}
		}
		row.Occurrences = occ
	}
}
