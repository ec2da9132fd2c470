package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

func TestPlannerObserveBuildsPlanForArea(t *testing.T) {
	planner := NewPlanner(2*time.Hour, 8*time.Hour)

	now := time.Now().UTC()
	s := sig(contracts.ImpactHigh, 1.0, now, now.Add(3*time.Hour))
	s.Area = "old-town"

	plan := planner.Observe(s)

	assert.Equal(t, "old-town", plan.Area)
	assert.Equal(t, 120, plan.WindowMinutes)
	require.Len(t, plan.Windows, 4)
	assert.Positive(t, plan.Windows[0].Score)
}

func TestPlannerDropsExpiredSignals(t *testing.T) {
	planner := NewPlanner(2*time.Hour, 8*time.Hour)

	now := time.Now().UTC()
	expired := sig(contracts.ImpactHigh, 1.0, now.Add(-5*time.Hour), now.Add(-3*time.Hour))
	expired.Area = "midtown"
	planner.Observe(expired)

	fresh := sig(contracts.ImpactLow, 1.0, now, now.Add(time.Hour))
	fresh.Area = "midtown"
	plan := planner.Observe(fresh)

	require.NotEmpty(t, plan.Windows)
	for _, w := range plan.Windows {
		for _, c := range w.Contributions {
			assert.NotEqual(t, expired.ID, c.SignalID)
		}
	}
}

func TestPlannerKeepsAreasSeparate(t *testing.T) {
	planner := NewPlanner(time.Hour, 4*time.Hour)

	now := time.Now().UTC()
	a := sig(contracts.ImpactHigh, 1.0, now, now.Add(4*time.Hour))
	a.Area = "riverside"
	b := sig(contracts.ImpactLow, 0.5, now, now.Add(4*time.Hour))
	b.Area = "harbor-district"

	planner.Observe(a)
	plan := planner.Observe(b)

	assert.Equal(t, "harbor-district", plan.Area)
	for _, w := range plan.Windows {
		for _, c := range w.Contributions {
			assert.Equal(t, contracts.ImpactLow, c.Impact)
		}
	}
}

func TestPlannerBoundsWorkingSet(t *testing.T) {
	planner := NewPlanner(time.Hour, 2*time.Hour)

	now := time.Now().UTC()
	var plan contracts.PlanEvent
	for i := 0; i < maxSignalsPerArea+50; i++ {
		s := sig(contracts.ImpactLow, 0.1, now, now.Add(2*time.Hour))
		s.Area = "northgate"
		plan = planner.Observe(s)
	}

	assert.Equal(t, "northgate", plan.Area)
	assert.LessOrEqual(t, len(planner.byArea["northgate"]), maxSignalsPerArea)
}
