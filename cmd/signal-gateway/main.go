package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/kafka-go"

	"github.com/buribe13/outreach-window-planner/internal/config"
	"github.com/buribe13/outreach-window-planner/internal/contracts"
	"github.com/buribe13/outreach-window-planner/internal/httpx"
	"github.com/buribe13/outreach-window-planner/internal/mq"
	"github.com/buribe13/outreach-window-planner/internal/signals"
)

func main() {
	cfg := config.Load()

	writer := mq.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopicSignals)
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.SimulatorTick > 0 {
		go runSimulator(ctx, writer, cfg.SimulatorTick)
	}

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "signal-gateway"})
	})

	router.Post("/v1/signals", func(w http.ResponseWriter, r *http.Request) {
		var payload contracts.Signal
		if err := httpx.DecodeJSON(r, &payload); err != nil {
			httpx.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}

		if payload.StartsAt.IsZero() || payload.EndsAt.IsZero() {
			httpx.WriteError(w, http.StatusBadRequest, "starts_at and ends_at are required")
			return
		}
		if strings.TrimSpace(payload.Title) == "" {
			httpx.WriteError(w, http.StatusBadRequest, "title is required")
			return
		}

		signals.Normalize(&payload)
		if err := mq.PublishJSON(r.Context(), writer, payload.Key(), payload); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}

		httpx.WriteJSON(w, http.StatusAccepted, payload)
	})

	router.Post("/v1/simulate", func(w http.ResponseWriter, r *http.Request) {
		type req struct {
			Count int    `json:"count"`
			Area  string `json:"area"`
		}
		body := req{Count: 10}
		_ = httpx.DecodeJSON(r, &body)

		if body.Count <= 0 {
			body.Count = 10
		}
		if body.Count > 500 {
			body.Count = 500
		}

		sent := 0
		for i := 0; i < body.Count; i++ {
			s := signals.Random(body.Area)
			if err := mq.PublishJSON(r.Context(), writer, s.Key(), s); err != nil {
				log.Printf("simulate publish error: %v", err)
				break
			}
			sent++
		}

		httpx.WriteJSON(w, http.StatusAccepted, map[string]any{"requested": body.Count, "published": sent})
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("signal-gateway listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("signal-gateway server error: %v", err)
	}
}

func runSimulator(ctx context.Context, writer *kafka.Writer, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := signals.Random("")
			if err := mq.PublishJSON(ctx, writer, s.Key(), s); err != nil {
				log.Printf("simulator publish error: %v", err)
			}
		}
	}
}
