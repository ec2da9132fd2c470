package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/buribe13/outreach-window-planner/internal/config"
	"github.com/buribe13/outreach-window-planner/internal/contracts"
	"github.com/buribe13/outreach-window-planner/internal/mq"
	"github.com/buribe13/outreach-window-planner/internal/signals"
	"github.com/buribe13/outreach-window-planner/internal/storage"
	"github.com/buribe13/outreach-window-planner/internal/window"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("plan-engine database error: %v", err)
	}
	defer dbPool.Close()

	repo := storage.NewRepository(dbPool)

	reader := mq.NewReader(cfg.KafkaBrokers, cfg.KafkaTopicSignals, cfg.ConsumerGroupPrefix+"-plan-engine")
	defer reader.Close()

	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicPlans)
	defer writer.Close()

	planner := window.NewPlanner(cfg.WindowSize, cfg.PlanningHorizon)

	log.Printf("plan-engine consuming %s and producing %s window=%s horizon=%s",
		cfg.KafkaTopicSignals, cfg.KafkaTopicPlans, cfg.WindowSize, cfg.PlanningHorizon)
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Println("plan-engine shutting down")
				return
			}
			log.Printf("plan-engine read error: %v", err)
			time.Sleep(500 * time.Millisecond)
			continue
		}

		sig, err := mq.ParseMessageJSON[contracts.Signal](msg)
		if err != nil {
			log.Printf("plan-engine decode signal error: %v", err)
			continue
		}
		signals.Normalize(&sig)

		if err := repo.InsertSignal(ctx, sig); err != nil {
			log.Printf("plan-engine store signal error: %v", err)
		}

		plan := planner.Observe(sig)

		if err := repo.InsertPlan(ctx, plan); err != nil {
			log.Printf("plan-engine store plan error: %v", err)
		}

		if plan.AvoidCount > 0 {
			if err := mq.PublishJSON(ctx, writer, plan.Area, plan); err != nil {
				var temporary kafka.Error
				if errors.As(err, &temporary) {
					log.Printf("plan-engine kafka temporary error: %v", temporary)
				} else {
					log.Printf("plan-engine publish error: %v", err)
				}
				continue
			}
		}

		log.Printf("plan %s area=%s windows=%d mean=%.2f avoid=%d",
			plan.ID, plan.Area, len(plan.Windows), plan.MeanScore, plan.AvoidCount)
	}
}
