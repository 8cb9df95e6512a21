package consolidate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/alertboard/internal/model"
)

func incident(id int64, title string, created time.Time) model.Incident {
	return model.Incident{
		ID:         id,
		IncidentID: "Q" + title,
		Title:      title,
		Status:     model.StatusTriggered,
		Urgency:    model.UrgencyHigh,
		CreatedAt:  created,
		Team:       98,
	}
}

func day(d int) time.Time {
	return time.Date(2025, 5, d, 0, 0, 0, 0, time.UTC)
}

func TestIncidents_GroupsSameTitle(t *testing.T) {
	rows := Incidents([]model.Incident{
		incident(1, "A", day(27)),
		incident(2, "A", day(28)),
	})

	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].Count)
	assert.Equal(t, int64(2), rows[0].RowID())
	assert.Equal(t, day(28), rows[0].CreatedAt)
	assert.Equal(t, int64(2), rows[0].Occurrences[0].ID)
	assert.Equal(t, int64(1), rows[0].Occurrences[1].ID)
}

func TestIncidents_FirstSeenOrder(t *testing.T) {
	rows := Incidents([]model.Incident{
		incident(1, "B", day(1)),
		incident(2, "A", day(2)),
		incident(3, "B", day(3)),
		incident(4, "C", day(4)),
	})

	titles := make([]string, 0, len(rows))
	for _, r := range rows {
		titles = append(titles, r.Title)
	}
	assert.Equal(t, []string{"B", "A", "C"}, titles)
}

func TestIncidents_TitleMatchIsExact(t *testing.T) {
	rows := Incidents([]model.Incident{
		incident(1, "Disk full", day(1)),
		incident(2, "disk full", day(1)),
		incident(3, "Disk full ", day(1)),
	})
	assert.Len(t, rows, 3)
}

func TestIncidents_TiesKeepInputOrder(t *testing.T) {
	rows := Incidents([]model.Incident{
		incident(1, "A", day(5)),
		incident(2, "A", day(5)),
		incident(3, "A", day(5)),
	})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].RowID())
	assert.Equal(t, []int64{1, 2, 3}, ids(rows[0].Occurrences))
}

func TestIncidents_CountsSumToInput(t *testing.T) {
	input := []model.Incident{
		incident(1, "A", day(1)),
		incident(2, "B", day(2)),
		incident(3, "A", day(3)),
		incident(4, "C", day(4)),
		incident(5, "A", day(2)),
	}
	rows := Incidents(input)

	total := 0
	for _, r := range rows {
		total += r.Count
		assert.Equal(t, len(r.Occurrences), r.Count)
	}
	assert.Equal(t, len(input), total)
	assert.ElementsMatch(t, ids(input), ids(Flatten(rows)))
}

func TestIncidents_Idempotent(t *testing.T) {
	input := []model.Incident{
		incident(1, "A", day(1)),
		incident(2, "B", day(2)),
		incident(3, "A", day(3)),
	}
	once := Incidents(input)
	twice := Incidents(Flatten(once))
	assert.Equal(t, once, twice)
}

func TestIncidents_DoesNotModifyInput(t *testing.T) {
	input := []model.Incident{
		incident(1, "A", day(1)),
		incident(2, "A", day(3)),
	}
	Incidents(input)
	assert.Equal(t, []int64{1, 2}, ids(input))
}

func TestIncidents_Empty(t *testing.T) {
	assert.Empty(t, Incidents(nil))
	assert.Empty(t, Flatten(nil))
}

func ids(incidents []model.Incident) []int64 {
	out := make([]int64, 0, len(incidents))
	for _, inc := range incidents {
		out = append(out, inc.ID)
	}
	return out
}
