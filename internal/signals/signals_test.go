package signals

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

func TestRandomProducesValidSignal(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := Random("")

		assert.NotEmpty(t, s.ID)
		assert.Contains(t, Areas, s.Area)
		assert.NotEmpty(t, s.Title)
		assert.Equal(t, "simulator", s.Source)
		assert.GreaterOrEqual(t, s.Confidence, 0.4)
		assert.LessOrEqual(t, s.Confidence, 1.0)
		assert.True(t, s.EndsAt.After(s.StartsAt), "signal must have positive duration")
		assert.Positive(t, s.Impact.Rank())
	}
}

func TestRandomHonorsRequestedArea(t *testing.T) {
	s := Random("transit-mall")
	assert.Equal(t, "transit-mall", s.Area)
}

func TestNormalizeFillsDefaults(t *testing.T) {
	start := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	s := contracts.Signal{
		Title:    "  Water main repair  ",
		StartsAt: start,
		EndsAt:   start.Add(2 * time.Hour),
	}

	Normalize(&s)

	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
	assert.Equal(t, "citywide", s.Area)
	assert.Equal(t, "Water main repair", s.Title)
	assert.Equal(t, "manual", s.Source)
	assert.Equal(t, contracts.CategoryCommunityNotice, s.Category)
	assert.Equal(t, contracts.ImpactLow, s.Impact)
	assert.Equal(t, 0.6, s.Confidence)
}

func TestNormalizeLowercasesArea(t *testing.T) {
	s := contracts.Signal{Area: "  Old-Town ", StartsAt: time.Now(), EndsAt: time.Now().Add(time.Hour)}
	Normalize(&s)
	assert.Equal(t, "old-town", s.Area)
}

func TestNormalizeClampsConfidence(t *testing.T) {
	s := contracts.Signal{Confidence: 3.5, StartsAt: time.Now(), EndsAt: time.Now().Add(time.Hour)}
	Normalize(&s)
	assert.Equal(t, 1.0, s.Confidence)
}

func TestNormalizeSwapsReversedRange(t *testing.T) {
	start := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)
	s := contracts.Signal{StartsAt: start.Add(2 * time.Hour), EndsAt: start}

	Normalize(&s)

	require.True(t, s.EndsAt.After(s.StartsAt))
	assert.Equal(t, start, s.StartsAt)
}

func TestNormalizeKeepsExplicitFields(t *testing.T) {
	s := contracts.Signal{
		ID:         "fixed-id",
		Area:       "riverside",
		Category:   contracts.CategoryShelterHours,
		Impact:     contracts.ImpactHigh,
		Confidence: 0.9,
		Source:     "311-feed",
		StartsAt:   time.Now(),
		EndsAt:     time.Now().Add(time.Hour),
	}

	Normalize(&s)

	assert.Equal(t, "fixed-id", s.ID)
	assert.Equal(t, contracts.CategoryShelterHours, s.Category)
	assert.Equal(t, contracts.ImpactHigh, s.Impact)
	assert.Equal(t, 0.9, s.Confidence)
	assert.Equal(t, "311-feed", s.Source)
}
