package overlap

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

var base = time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)

func sig(id string, impact contracts.Impact, start, end time.Time) contracts.Signal {
	return contracts.Signal{
		ID:       id,
		Area:     "riverside",
		Category: contracts.CategorySpecialEvent,
		Title:    "Signal " + id,
		Impact:   impact,
		StartsAt: start,
		EndsAt:   end,
	}
}

func TestDetectFindsConcurrentPair(t *testing.T) {
	a := sig("a", contracts.ImpactHigh, base, base.Add(2*time.Hour))
	b := sig("b", contracts.ImpactMedium, base.Add(time.Hour), base.Add(3*time.Hour))

	overlaps := Detect([]contracts.Signal{a, b})

	require.Len(t, overlaps, 1)
	o := overlaps[0]
	assert.Equal(t, "a", o.First.SignalID)
	assert.Equal(t, "b", o.Second.SignalID)
	assert.Equal(t, base.Add(time.Hour), o.StartsAt)
	assert.Equal(t, base.Add(2*time.Hour), o.EndsAt)
	assert.Equal(t, 60, o.DurationMinutes)
	assert.Equal(t, contracts.ImpactHigh, o.CombinedImpact)
}

func TestDetectIgnoresLowImpact(t *testing.T) {
	a := sig("a", contracts.ImpactLow, base, base.Add(2*time.Hour))
	b := sig("b", contracts.ImpactHigh, base, base.Add(2*time.Hour))

	overlaps := Detect([]contracts.Signal{a, b})

	assert.Empty(t, overlaps)
}

func TestDetectMinimumDuration(t *testing.T) {
	a := sig("a", contracts.ImpactMedium, base, base.Add(time.Hour))

	short := sig("b", contracts.ImpactMedium, base.Add(46*time.Minute), base.Add(2*time.Hour))
	assert.Empty(t, Detect([]contracts.Signal{a, short}))

	exact := sig("c", contracts.ImpactMedium, base.Add(45*time.Minute), base.Add(2*time.Hour))
	assert.Len(t, Detect([]contracts.Signal{a, exact}), 1)
}

func TestDetectIgnoresDegenerateRanges(t *testing.T) {
	a := sig("a", contracts.ImpactHigh, base.Add(time.Hour), base)
	b := sig("b", contracts.ImpactHigh, base, base.Add(2*time.Hour))

	assert.Empty(t, Detect([]contracts.Signal{a, b}))
}

func TestDetectOrdersByStartThenDuration(t *testing.T) {
	a := sig("a", contracts.ImpactHigh, base, base.Add(4*time.Hour))
	b := sig("b", contracts.ImpactMedium, base, base.Add(time.Hour))
	c := sig("c", contracts.ImpactMedium, base.Add(2*time.Hour), base.Add(3*time.Hour))

	overlaps := Detect([]contracts.Signal{a, b, c})

	require.Len(t, overlaps, 2)
	assert.Equal(t, base, overlaps[0].StartsAt)
	assert.Equal(t, base.Add(2*time.Hour), overlaps[1].StartsAt)
}

func TestDetectNeverPairsAcrossAreas(t *testing.T) {
	a := sig("a", contracts.ImpactHigh, base, base.Add(2*time.Hour))
	b := sig("b", contracts.ImpactHigh, base, base.Add(2*time.Hour))
	b.Area = "old-town"
	c := sig("c", contracts.ImpactHigh, base, base.Add(2*time.Hour))
	c.Area = "old-town"

	overlaps := Detect([]contracts.Signal{a, b, c})

	require.Len(t, overlaps, 1)
	assert.Equal(t, "b", overlaps[0].First.SignalID)
	assert.Equal(t, "c", overlaps[0].Second.SignalID)
}

func TestDetectAllPairs(t *testing.T) {
	a := sig("a", contracts.ImpactHigh, base, base.Add(3*time.Hour))
	b := sig("b", contracts.ImpactMedium, base, base.Add(3*time.Hour))
	c := sig("c", contracts.ImpactMedium, base, base.Add(3*time.Hour))

	overlaps := Detect([]contracts.Signal{a, b, c})

	assert.Len(t, overlaps, 3)
}
