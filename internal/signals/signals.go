package signals

import (
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

// Areas the simulator draws from.
var Areas = []string{
	"riverside", "old-town", "transit-mall", "northgate", "harbor-district", "midtown",
}

type template struct {
	category contracts.SignalCategory
	titles   []string
	minLen   time.Duration
	maxLen   time.Duration
	impacts  []contracts.Impact
}

var templates = []template{
	{
		category: contracts.CategoryStreetCleaning,
		titles:   []string{"Street sweeping", "Pressure washing crew", "Leaf pickup"},
		minLen:   time.Hour,
		maxLen:   3 * time.Hour,
		impacts:  []contracts.Impact{contracts.ImpactLow, contracts.ImpactMedium},
	},
	{
		category: contracts.CategorySpecialEvent,
		titles:   []string{"Farmers market", "Street fair", "Parade staging", "Stadium event egress"},
		minLen:   2 * time.Hour,
		maxLen:   6 * time.Hour,
		impacts:  []contracts.Impact{contracts.ImpactMedium, contracts.ImpactHigh},
	},
	{
		category: contracts.CategoryShelterHours,
		titles:   []string{"Shelter intake hours", "Day center meal service", "Warming center open"},
		minLen:   2 * time.Hour,
		maxLen:   5 * time.Hour,
		impacts:  []contracts.Impact{contracts.ImpactMedium, contracts.ImpactHigh},
	},
	{
		category: contracts.CategoryTransitDisruption,
		titles:   []string{"Bus line detour", "Light rail closure", "Bridge lift maintenance"},
		minLen:   time.Hour,
		maxLen:   8 * time.Hour,
		impacts:  []contracts.Impact{contracts.ImpactMedium, contracts.ImpactHigh},
	},
	{
		category: contracts.CategoryCommunityNotice,
		titles:   []string{"Utility work notice", "Film permit posting", "Block association meeting"},
		minLen:   time.Hour,
		maxLen:   4 * time.Hour,
		impacts:  []contracts.Impact{contracts.ImpactLow, contracts.ImpactMedium},
	},
}

// Random produces a simulated signal for the area, starting within the next
// 48 hours. An empty area picks one at random.
func Random(area string) contracts.Signal {
	if area == "" {
		area = Areas[rand.Intn(len(Areas))]
	}

	tpl := templates[rand.Intn(len(templates))]
	length := tpl.minLen + time.Duration(rand.Int63n(int64(tpl.maxLen-tpl.minLen)+1))
	start := time.Now().UTC().Truncate(time.Minute).Add(time.Duration(rand.Intn(48*60)) * time.Minute)

	return contracts.Signal{
		ID:         uuid.NewString(),
		Area:       area,
		Category:   tpl.category,
		Title:      tpl.titles[rand.Intn(len(tpl.titles))],
		Impact:     tpl.impacts[rand.Intn(len(tpl.impacts))],
		Confidence: 0.4 + rand.Float64()*0.6,
		StartsAt:   start,
		EndsAt:     start.Add(length),
		Source:     "simulator",
		CreatedAt:  time.Now().UTC(),
	}
}

// Normalize fills defaults and clamps fields on an incoming signal.
func Normalize(s *contracts.Signal) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	s.Area = strings.ToLower(strings.TrimSpace(s.Area))
	if s.Area == "" {
		s.Area = "citywide"
	}
	s.Title = strings.TrimSpace(s.Title)
	s.Source = strings.TrimSpace(s.Source)
	if s.Source == "" {
		s.Source = "manual"
	}
	if s.Category == "" {
		s.Category = contracts.CategoryCommunityNotice
	}
	if s.Impact.Rank() == 0 {
		s.Impact = contracts.ImpactLow
	}
	if s.Confidence <= 0 {
		s.Confidence = 0.6
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	if s.EndsAt.Before(s.StartsAt) {
		s.StartsAt, s.EndsAt = s.EndsAt, s.StartsAt
	}
}
