package contracts

import "time"

type SignalCategory string

const (
	CategoryStreetCleaning    SignalCategory = "street_cleaning"
	CategorySpecialEvent      SignalCategory = "special_event"
	CategoryShelterHours      SignalCategory = "shelter_hours"
	CategoryTransitDisruption SignalCategory = "transit_disruption"
	CategoryCommunityNotice   SignalCategory = "community_notice"
)

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

// Rank orders impacts for comparisons; unknown impacts rank lowest.
func (i Impact) Rank() int {
	switch i {
	case ImpactHigh:
		return 3
	case ImpactMedium:
		return 2
	case ImpactLow:
		return 1
	default:
		return 0
	}
}

type WindowStatus string

const (
	StatusClear   WindowStatus = "clear"
	StatusCaution WindowStatus = "caution"
	StatusAvoid   WindowStatus = "avoid"
)

// Signal is a time-bounded disruption record for one outreach area.
type Signal struct {
	ID         string            `json:"id"`
	Area       string            `json:"area"`
	Category   SignalCategory    `json:"category"`
	Title      string            `json:"title"`
	Impact     Impact            `json:"impact"`
	Confidence float64           `json:"confidence"`
	StartsAt   time.Time         `json:"starts_at"`
	EndsAt     time.Time         `json:"ends_at"`
	Source     string            `json:"source"`
	Notes      string            `json:"notes,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (s Signal) Key() string {
	return s.Area
}

// Active reports whether the signal covers any part of [from, to).
func (s Signal) Active(from, to time.Time) bool {
	return s.StartsAt.Before(to) && s.EndsAt.After(from)
}

type Contribution struct {
	SignalID string         `json:"signal_id"`
	Title    string         `json:"title"`
	Category SignalCategory `json:"category"`
	Impact   Impact         `json:"impact"`
	Coverage float64        `json:"coverage"`
	Points   float64        `json:"points"`
}

// WindowScore is one scored slice of the planning range.
type WindowScore struct {
	StartsAt      time.Time      `json:"starts_at"`
	EndsAt        time.Time      `json:"ends_at"`
	Score         float64        `json:"score"`
	Status        WindowStatus   `json:"status"`
	Annotation    string         `json:"annotation"`
	Contributions []Contribution `json:"contributions,omitempty"`
}

// PlanEvent is the envelope the plan-engine publishes after recomputing
// an area's windows.
type PlanEvent struct {
	ID            string        `json:"id"`
	Timestamp     time.Time     `json:"timestamp"`
	Area          string        `json:"area"`
	From          time.Time     `json:"from"`
	To            time.Time     `json:"to"`
	WindowMinutes int           `json:"window_minutes"`
	Windows       []WindowScore `json:"windows"`
	MeanScore     float64       `json:"mean_score"`
	AvoidCount    int           `json:"avoid_count"`
	BestWindow    *WindowScore  `json:"best_window,omitempty"`
}

type SignalRef struct {
	SignalID string         `json:"signal_id"`
	Title    string         `json:"title"`
	Category SignalCategory `json:"category"`
	Impact   Impact         `json:"impact"`
}

// Overlap records two medium/high impact signals active at the same time.
type Overlap struct {
	First           SignalRef `json:"first"`
	Second          SignalRef `json:"second"`
	StartsAt        time.Time `json:"starts_at"`
	EndsAt          time.Time `json:"ends_at"`
	DurationMinutes int       `json:"duration_minutes"`
	CombinedImpact  Impact    `json:"combined_impact"`
}

type AdvisoryRecord struct {
	ID           string    `json:"id"`
	PlanID       string    `json:"plan_id"`
	Area         string    `json:"area"`
	WindowStarts time.Time `json:"window_starts"`
	WindowEnds   time.Time `json:"window_ends"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Score        float64   `json:"score"`
	Severity     string    `json:"severity"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
