package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/buribe13/outreach-window-planner/internal/config"
	"github.com/buribe13/outreach-window-planner/internal/contracts"
	"github.com/buribe13/outreach-window-planner/internal/mq"
	"github.com/buribe13/outreach-window-planner/internal/storage"
)

type advisoryStore interface {
	HasOpenAdvisoryInCooldown(ctx context.Context, area string, windowStarts, windowEnds time.Time, cooldown time.Duration) (bool, error)
	InsertAdvisory(ctx context.Context, advisory contracts.AdvisoryRecord) error
}

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("advisory-service database error: %v", err)
	}
	defer dbPool.Close()

	repo := storage.NewRepository(dbPool)

	reader := mq.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicPlans, cfg.ConsumerGroupPrefix+"-advisory-service")
	defer reader.Close()

	log.Printf("advisory-service consuming %s threshold=%.2f", cfg.KafkaTopicPlans, cfg.AdvisoryThreshold)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Println("advisory-service shutting down")
				return
			}
			log.Printf("advisory-service read error: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		plan, err := mq.ParseMessageJSON[contracts.PlanEvent](msg)
		if err != nil {
			log.Printf("advisory-service decode plan error: %v", err)
			continue
		}

		processPlan(ctx, repo, cfg.AdvisoryThreshold, cfg.AdvisoryCooldown, plan)
	}
}

// processPlan raises an advisory for each window at or above the threshold,
// unless an open advisory already covers an overlapping window for the area
// within the cooldown. Returns the number of advisories created.
func processPlan(ctx context.Context, store advisoryStore, threshold float64, cooldown time.Duration, plan contracts.PlanEvent) int {
	created := 0
	for _, w := range plan.Windows {
		if w.Score < threshold {
			continue
		}

		exists, err := store.HasOpenAdvisoryInCooldown(ctx, plan.Area, w.StartsAt, w.EndsAt, cooldown)
		if err != nil {
			log.Printf("advisory-service cooldown check error: %v", err)
			continue
		}
		if exists {
			continue
		}

		advisory := contracts.AdvisoryRecord{
			ID:           uuid.NewString(),
			PlanID:       plan.ID,
			Area:         plan.Area,
			WindowStarts: w.StartsAt,
			WindowEnds:   w.EndsAt,
			Title:        fmt.Sprintf("High disruption window in %s", plan.Area),
			Description:  fmt.Sprintf("%s to %s scored %.2f. %s", w.StartsAt.Format(time.RFC3339), w.EndsAt.Format(time.RFC3339), w.Score, w.Annotation),
			Score:        w.Score,
			Severity:     severityFromScore(w.Score),
			Status:       "open",
		}

		if err := store.InsertAdvisory(ctx, advisory); err != nil {
			log.Printf("advisory-service insert advisory error: %v", err)
			continue
		}
		created++

		log.Printf("advisory created id=%s area=%s window=%s score=%.2f",
			advisory.ID, advisory.Area, advisory.WindowStarts.Format(time.RFC3339), advisory.Score)
	}

	return created
}

func severityFromScore(score float64) string {
	switch {
	case score >= 90:
		return "critical"
	case score >= 80:
		return "high"
	default:
		return "medium"
	}
}
