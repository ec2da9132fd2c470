package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"localhost:19092"}, cfg.KafkaBrokers)
	assert.Equal(t, "signals.feed", cfg.KafkaTopicSignals)
	assert.Equal(t, "plans.scored", cfg.KafkaTopicPlans)
	assert.Equal(t, 2*time.Hour, cfg.WindowSize)
	assert.Equal(t, 48*time.Hour, cfg.PlanningHorizon)
	assert.Equal(t, 70.0, cfg.AdvisoryThreshold)
	assert.Equal(t, 45*time.Minute, cfg.AdvisoryCooldown)
	assert.Zero(t, cfg.SimulatorTick)
	assert.Equal(t, "outreachplanner", cfg.ConsumerGroupPrefix)
}

func TestLoadParsesBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", " broker-a:9092 , broker-b:9092 ,, ")

	cfg := Load()

	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("WINDOW_SIZE_MINUTES", "60")
	t.Setenv("PLANNING_HORIZON_HOURS", "24")
	t.Setenv("ADVISORY_THRESHOLD", "82.5")
	t.Setenv("SIMULATOR_TICK_SECONDS", "5")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.WindowSize)
	assert.Equal(t, 24*time.Hour, cfg.PlanningHorizon)
	assert.Equal(t, 82.5, cfg.AdvisoryThreshold)
	assert.Equal(t, 5*time.Second, cfg.SimulatorTick)
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("WINDOW_SIZE_MINUTES", "not-a-number")
	t.Setenv("PLANNING_HORIZON_HOURS", "-4")
	t.Setenv("ADVISORY_THRESHOLD", "high")

	cfg := Load()

	assert.Equal(t, 2*time.Hour, cfg.WindowSize)
	assert.Equal(t, 48*time.Hour, cfg.PlanningHorizon)
	assert.Equal(t, 70.0, cfg.AdvisoryThreshold)
}
