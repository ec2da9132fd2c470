package window

import (
	"sync"
	"time"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

// maxSignalsPerArea bounds the working set kept for one area.
const maxSignalsPerArea = 200

// Planner keeps a bounded per-area working set of signals and recomputes
// the area's window plan whenever a new signal arrives.
type Planner struct {
	mu      sync.Mutex
	size    time.Duration
	horizon time.Duration
	byArea  map[string][]contracts.Signal
}

func NewPlanner(size, horizon time.Duration) *Planner {
	return &Planner{
		size:    size,
		horizon: horizon,
		byArea:  make(map[string][]contracts.Signal),
	}
}

// Observe folds a signal into its area's working set and returns the
// recomputed plan for the planning horizon starting now.
func (p *Planner) Observe(s contracts.Signal) contracts.PlanEvent {
	now := time.Now().UTC().Truncate(time.Minute)
	area := s.Key()

	p.mu.Lock()
	defer p.mu.Unlock()

	entries := append(p.byArea[area], s)

	// Drop signals that ended before the horizon opened.
	kept := entries[:0]
	for _, sig := range entries {
		if sig.EndsAt.After(now) {
			kept = append(kept, sig)
		}
	}
	if len(kept) > maxSignalsPerArea {
		kept = kept[len(kept)-maxSignalsPerArea:]
	}
	p.byArea[area] = kept

	snapshot := make([]contracts.Signal, len(kept))
	copy(snapshot, kept)

	return BuildPlan(area, now, now.Add(p.horizon), p.size, snapshot)
}
