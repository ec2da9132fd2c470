package overlap

import (
	"sort"
	"time"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

// MinDuration is the shortest intersection worth reporting; anything
// briefer is schedule noise.
const MinDuration = 15 * time.Minute

// Detect finds every pair of medium/high impact signals in the same area
// whose time ranges intersect for at least MinDuration. Signals from
// different areas are never paired; a street fair downtown does not
// compound a detour across town. Results are ordered by overlap start,
// longest first within the same start.
func Detect(signals []contracts.Signal) []contracts.Overlap {
	byArea := make(map[string][]contracts.Signal)
	for _, s := range signals {
		if s.Impact.Rank() < contracts.ImpactMedium.Rank() {
			continue
		}
		if !s.EndsAt.After(s.StartsAt) {
			continue
		}
		byArea[s.Key()] = append(byArea[s.Key()], s)
	}

	overlaps := make([]contracts.Overlap, 0)
	for _, significant := range byArea {
		for i := 0; i < len(significant); i++ {
			for j := i + 1; j < len(significant); j++ {
				if o, ok := intersect(significant[i], significant[j]); ok {
					overlaps = append(overlaps, o)
				}
			}
		}
	}

	sort.Slice(overlaps, func(i, j int) bool {
		if overlaps[i].StartsAt.Equal(overlaps[j].StartsAt) {
			return overlaps[i].DurationMinutes > overlaps[j].DurationMinutes
		}
		return overlaps[i].StartsAt.Before(overlaps[j].StartsAt)
	})

	return overlaps
}

func intersect(a, b contracts.Signal) (contracts.Overlap, bool) {
	start := a.StartsAt
	if b.StartsAt.After(start) {
		start = b.StartsAt
	}
	end := a.EndsAt
	if b.EndsAt.Before(end) {
		end = b.EndsAt
	}

	if end.Sub(start) < MinDuration {
		return contracts.Overlap{}, false
	}

	combined := a.Impact
	if b.Impact.Rank() > a.Impact.Rank() {
		combined = b.Impact
	}

	return contracts.Overlap{
		First:           ref(a),
		Second:          ref(b),
		StartsAt:        start,
		EndsAt:          end,
		DurationMinutes: int(end.Sub(start).Minutes()),
		CombinedImpact:  combined,
	}, true
}

func ref(s contracts.Signal) contracts.SignalRef {
	return contracts.SignalRef{
		SignalID: s.ID,
		Title:    s.Title,
		Category: s.Category,
		Impact:   s.Impact,
	}
}
