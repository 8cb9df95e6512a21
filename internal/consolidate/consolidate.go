// Package consolidate groups repeated incidents into one table row.
package consolidate

import (
	"sort"

	"github.com/edvin/alertboard/internal/model"
)

// Incidents groups incidents by exact title. Within a group occurrences are
// ordered most recent first, and ties keep their input order. The primary
// incident of a group is its most recent occurrence. Groups are returned in
// the order their title was first seen.
func Incidents(incidents []model.Incident) []model.ConsolidatedIncident {
	if len(incidents) == 0 {
		return []model.ConsolidatedIncident{}
	}

	index := make(map[string]int)
	groups := make([][]model.Incident, 0)
	for _, inc := range incidents {
		i, ok := index[inc.Title]
		if !ok {
			i = len(groups)
			index[inc.Title] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], inc)
	}

	out := make([]model.ConsolidatedIncident, 0, len(groups))
	for _, occ := range groups {
		sort.SliceStable(occ, func(a, b int) bool {
			return occ[a].CreatedAt.After(occ[b].CreatedAt)
		})
		out = append(out, model.ConsolidatedIncident{
			Incident:    occ[0],
			Occurrences: occ,
			Count:       len(occ),
		})
	}
	return out
}

// Flatten returns every incident behind rows, row by row.
func Flatten(rows []model.ConsolidatedIncident) []model.Incident {
	var n int
	for _, r := range rows {
		n += len(r.Occurrences)
	}
	out := make([]model.Incident, 0, n)
	for _, r := range rows {
		out = append(out, r.Occurrences...)
	}
	return out
}
