package window

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

// Score thresholds for the three-level window status.
const (
	CautionThreshold = 35.0
	AvoidThreshold   = 70.0
)

// maxWindows bounds the slice count for pathological ranges.
const maxWindows = 366

// Impact weights for a signal fully covering a window at confidence 1.
var impactWeights = map[contracts.Impact]float64{
	contracts.ImpactLow:    12,
	contracts.ImpactMedium: 26,
	contracts.ImpactHigh:   42,
}

const maxContributions = 5

type Window struct {
	StartsAt time.Time
	EndsAt   time.Time
}

// Slice cuts [from, to) into consecutive windows of the given size. The
// final window is truncated to end exactly at to.
func Slice(from, to time.Time, size time.Duration) []Window {
	if size <= 0 || !to.After(from) {
		return nil
	}

	windows := make([]Window, 0, 16)
	for cursor := from; cursor.Before(to) && len(windows) < maxWindows; cursor = cursor.Add(size) {
		end := cursor.Add(size)
		if end.After(to) {
			end = to
		}
		windows = append(windows, Window{StartsAt: cursor, EndsAt: end})
	}

	return windows
}

// ScoreWindow aggregates the signals overlapping w into a 0-100 disruption
// score with the contributions that explain it.
func ScoreWindow(w Window, signals []contracts.Signal) contracts.WindowScore {
	total := 0.0
	contributions := make([]contracts.Contribution, 0, len(signals))

	for _, s := range signals {
		if !s.EndsAt.After(s.StartsAt) {
			continue
		}
		coverage := coverageFraction(w, s)
		if coverage <= 0 {
			continue
		}

		points := impactWeights[s.Impact] * clamp(s.Confidence, 0, 1) * coverage
		if points <= 0 {
			continue
		}

		total += points
		contributions = append(contributions, contracts.Contribution{
			SignalID: s.ID,
			Title:    s.Title,
			Category: s.Category,
			Impact:   s.Impact,
			Coverage: round2(coverage),
			Points:   round2(points),
		})
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].Points > contributions[j].Points
	})
	if len(contributions) > maxContributions {
		contributions = contributions[:maxContributions]
	}

	score := round2(clamp(total, 0, 100))
	status := Classify(score)

	return contracts.WindowScore{
		StartsAt:      w.StartsAt,
		EndsAt:        w.EndsAt,
		Score:         score,
		Status:        status,
		Annotation:    annotate(status, contributions),
		Contributions: contributions,
	}
}

// Classify maps a score onto the three-level status.
func Classify(score float64) contracts.WindowStatus {
	switch {
	case score >= AvoidThreshold:
		return contracts.StatusAvoid
	case score >= CautionThreshold:
		return contracts.StatusCaution
	default:
		return contracts.StatusClear
	}
}

// BuildPlan slices the range, scores every window against the signal set,
// and rolls the windows up into a plan event.
func BuildPlan(area string, from, to time.Time, size time.Duration, signals []contracts.Signal) contracts.PlanEvent {
	windows := Slice(from, to, size)

	scored := make([]contracts.WindowScore, 0, len(windows))
	totalScore := 0.0
	avoidCount := 0
	var best *contracts.WindowScore

	for _, w := range windows {
		ws := ScoreWindow(w, signals)
		totalScore += ws.Score
		if ws.Status == contracts.StatusAvoid {
			avoidCount++
		}
		scored = append(scored, ws)
	}

	for i := range scored {
		if best == nil || scored[i].Score < best.Score {
			best = &scored[i]
		}
	}

	mean := 0.0
	if len(scored) > 0 {
		mean = round2(totalScore / float64(len(scored)))
	}

	return contracts.PlanEvent{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Area:          area,
		From:          from,
		To:            to,
		WindowMinutes: int(size.Minutes()),
		Windows:       scored,
		MeanScore:     mean,
		AvoidCount:    avoidCount,
		BestWindow:    best,
	}
}

func coverageFraction(w Window, s contracts.Signal) float64 {
	windowLen := w.EndsAt.Sub(w.StartsAt)
	if windowLen <= 0 {
		return 0
	}

	start := maxTime(w.StartsAt, s.StartsAt)
	end := minTime(w.EndsAt, s.EndsAt)
	if !end.After(start) {
		return 0
	}

	return clamp(float64(end.Sub(start))/float64(windowLen), 0, 1)
}

func annotate(status contracts.WindowStatus, contributions []contracts.Contribution) string {
	if len(contributions) == 0 {
		return "No known disruptions. Good window for field work."
	}

	lead := contributions[0]
	switch status {
	case contracts.StatusAvoid:
		if len(contributions) > 1 {
			return fmt.Sprintf("Avoid: %s plus %d more disruption(s) in this window.", describe(lead), len(contributions)-1)
		}
		return fmt.Sprintf("Avoid: %s dominates this window.", describe(lead))
	case contracts.StatusCaution:
		return fmt.Sprintf("Workable with care: plan around %s.", describe(lead))
	default:
		return fmt.Sprintf("Good window for field work; minor activity from %s.", describe(lead))
	}
}

func describe(c contracts.Contribution) string {
	if c.Title != "" {
		return fmt.Sprintf("%s (%s impact)", c.Title, c.Impact)
	}
	return fmt.Sprintf("%s (%s impact)", c.Category, c.Impact)
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
