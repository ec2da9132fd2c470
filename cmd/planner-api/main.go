package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	"github.com/buribe13/outreach-window-planner/internal/config"
	"github.com/buribe13/outreach-window-planner/internal/contracts"
	"github.com/buribe13/outreach-window-planner/internal/httpx"
	"github.com/buribe13/outreach-window-planner/internal/overlap"
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
		log.Fatalf("planner-api database error: %v", err)
	}
	defer dbPool.Close()

	if err := storage.RunMigrations(ctx, dbPool); err != nil {
		log.Fatalf("planner-api migration error: %v", err)
	}

	repo := storage.NewRepository(dbPool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(15 * time.Second))

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "planner-api"})
	})

	router.Get("/v1/plan", func(w http.ResponseWriter, r *http.Request) {
		area := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("area")))
		if area == "" {
			httpx.WriteError(w, http.StatusBadRequest, "area is required")
			return
		}

		now := time.Now().UTC().Truncate(time.Minute)
		from, err := parseTime(r.URL.Query().Get("from"), now)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "from must be RFC3339")
			return
		}
		to, err := parseTime(r.URL.Query().Get("to"), from.Add(cfg.PlanningHorizon))
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "to must be RFC3339")
			return
		}
		if !to.After(from) {
			httpx.WriteError(w, http.StatusBadRequest, "to must be after from")
			return
		}

		size := cfg.WindowSize
		if raw := r.URL.Query().Get("window_minutes"); raw != "" {
			minutes, err := strconv.Atoi(raw)
			if err != nil || minutes < 15 || minutes > 24*60 {
				httpx.WriteError(w, http.StatusBadRequest, "window_minutes must be between 15 and 1440")
				return
			}
			size = time.Duration(minutes) * time.Minute
		}

		stored, err := repo.ListSignals(r.Context(), area, "", from, to, 0)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}

		plan := window.BuildPlan(area, from, to, size, stored)
		httpx.WriteJSON(w, http.StatusOK, plan)
	})

	router.Get("/v1/plan/latest", func(w http.ResponseWriter, r *http.Request) {
		area := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("area")))
		if area == "" {
			httpx.WriteError(w, http.StatusBadRequest, "area is required")
			return
		}

		windows, err := repo.LatestPlanWindows(r.Context(), area, parseLimit(r.URL.Query().Get("limit"), 100))
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"area": area, "windows": windows})
	})

	router.Get("/v1/overlaps", func(w http.ResponseWriter, r *http.Request) {
		area := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("area")))

		now := time.Now().UTC().Truncate(time.Minute)
		from, err := parseTime(r.URL.Query().Get("from"), now)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "from must be RFC3339")
			return
		}
		to, err := parseTime(r.URL.Query().Get("to"), from.Add(cfg.PlanningHorizon))
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "to must be RFC3339")
			return
		}

		stored, err := repo.ListSignals(r.Context(), area, "", from, to, 0)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}

		overlaps := overlap.Detect(stored)
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": overlaps})
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
		if err := repo.InsertSignal(r.Context(), payload); err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, payload)
	})

	router.Get("/v1/signals", func(w http.ResponseWriter, r *http.Request) {
		area := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("area")))
		category := strings.TrimSpace(r.URL.Query().Get("category"))
		limit := parseLimit(r.URL.Query().Get("limit"), 200)

		var from, to time.Time
		var err error
		if raw := r.URL.Query().Get("from"); raw != "" {
			if from, err = time.Parse(time.RFC3339, raw); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "from must be RFC3339")
				return
			}
		}
		if raw := r.URL.Query().Get("to"); raw != "" {
			if to, err = time.Parse(time.RFC3339, raw); err != nil {
				httpx.WriteError(w, http.StatusBadRequest, "to must be RFC3339")
				return
			}
		}

		stored, err := repo.ListSignals(r.Context(), area, category, from, to, limit)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": stored})
	})

	router.Delete("/v1/signals/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.DeleteSignal(r.Context(), id); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				httpx.WriteError(w, http.StatusNotFound, "signal not found")
				return
			}
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
	})

	router.Get("/v1/advisories", func(w http.ResponseWriter, r *http.Request) {
		status := r.URL.Query().Get("status")
		limit := parseLimit(r.URL.Query().Get("limit"), 100)

		advisories, err := repo.ListAdvisories(r.Context(), status, limit)
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"items": advisories})
	})

	router.Patch("/v1/advisories/{id}/ack", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.UpdateAdvisoryStatus(r.Context(), id, "acknowledged"); err != nil {
			handleStatusUpdateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": "acknowledged"})
	})

	router.Patch("/v1/advisories/{id}/resolve", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := repo.UpdateAdvisoryStatus(r.Context(), id, "resolved"); err != nil {
			handleStatusUpdateError(w, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "status": "resolved"})
	})

	router.Get("/v1/dashboard/summary", func(w http.ResponseWriter, r *http.Request) {
		summary, err := repo.DashboardSummary(r.Context())
		if err != nil {
			httpx.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		httpx.WriteJSON(w, http.StatusOK, summary)
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

	log.Printf("planner-api listening on %s", cfg.HTTPAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("planner-api server error: %v", err)
	}
}

func parseTime(raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseLimit(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if n <= 0 {
		return fallback
	}
	return n
}

func handleStatusUpdateError(w http.ResponseWriter, err error) {
	if errors.Is(err, pgx.ErrNoRows) {
		httpx.WriteError(w, http.StatusNotFound, "advisory not found")
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, err.Error())
}
