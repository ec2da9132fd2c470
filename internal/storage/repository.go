package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/buribe13/outreach-window-planner/internal/contracts"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) InsertSignal(ctx context.Context, s contracts.Signal) error {
	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
        INSERT INTO signals
            (id, area, category, title, impact, confidence, starts_at, ends_at, source, notes, metadata, created_at)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)
        ON CONFLICT (id) DO NOTHING
    `, s.ID, s.Area, s.Category, s.Title, s.Impact, s.Confidence, s.StartsAt, s.EndsAt, s.Source, s.Notes, string(metadata), s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert signal: %w", err)
	}

	return nil
}

// ListSignals returns signals overlapping [from, to), optionally filtered by
// area and category. Zero from/to means no range filter.
func (r *Repository) ListSignals(ctx context.Context, area string, category string, from, to time.Time, limit int) ([]contracts.Signal, error) {
	if limit <= 0 || limit > 500 {
		limit = 200
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, area, category, title, impact, confidence, starts_at, ends_at, source, notes, COALESCE(metadata, 'null'::jsonb), created_at
        FROM signals
        WHERE ($1 = '' OR area = $1)
          AND ($2 = '' OR category = $2)
          AND ($3::timestamptz IS NULL OR ends_at > $3)
          AND ($4::timestamptz IS NULL OR starts_at < $4)
        ORDER BY starts_at ASC
        LIMIT $5
    `, area, category, nullableTime(from), nullableTime(to), limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.Signal, 0, limit)
	for rows.Next() {
		var s contracts.Signal
		var metadataRaw []byte
		if err := rows.Scan(
			&s.ID,
			&s.Area,
			&s.Category,
			&s.Title,
			&s.Impact,
			&s.Confidence,
			&s.StartsAt,
			&s.EndsAt,
			&s.Source,
			&s.Notes,
			&metadataRaw,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}

		_ = json.Unmarshal(metadataRaw, &s.Metadata)
		results = append(results, s)
	}

	return results, nil
}

func (r *Repository) DeleteSignal(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM signals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete signal: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// InsertPlan stores every window of a computed plan, replacing older windows
// for the same area and window start.
func (r *Repository) InsertPlan(ctx context.Context, plan contracts.PlanEvent) error {
	for _, w := range plan.Windows {
		contributions, err := json.Marshal(w.Contributions)
		if err != nil {
			return fmt.Errorf("marshal contributions: %w", err)
		}

		_, err = r.pool.Exec(ctx, `
            INSERT INTO window_plans
                (id, area, window_starts, window_ends, score, status, annotation, contributions, computed_at)
            VALUES
                ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
            ON CONFLICT (area, window_starts) DO UPDATE
            SET id = EXCLUDED.id,
                window_ends = EXCLUDED.window_ends,
                score = EXCLUDED.score,
                status = EXCLUDED.status,
                annotation = EXCLUDED.annotation,
                contributions = EXCLUDED.contributions,
                computed_at = EXCLUDED.computed_at
        `, plan.ID, plan.Area, w.StartsAt, w.EndsAt, w.Score, w.Status, w.Annotation, string(contributions), plan.Timestamp)
		if err != nil {
			return fmt.Errorf("insert window plan: %w", err)
		}
	}

	return nil
}

// LatestPlanWindows returns the most recently computed windows for an area.
func (r *Repository) LatestPlanWindows(ctx context.Context, area string, limit int) ([]contracts.WindowScore, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT window_starts, window_ends, score, status, annotation, COALESCE(contributions, 'null'::jsonb)
        FROM window_plans
        WHERE area = $1
          AND id = (
              SELECT id FROM window_plans
              WHERE area = $1
              ORDER BY computed_at DESC
              LIMIT 1
          )
        ORDER BY window_starts ASC
        LIMIT $2
    `, area, limit)
	if err != nil {
		return nil, fmt.Errorf("query plan windows: %w", err)
	}
	defer rows.Close()

	windows := make([]contracts.WindowScore, 0, limit)
	for rows.Next() {
		var w contracts.WindowScore
		var contributionsRaw []byte
		if err := rows.Scan(&w.StartsAt, &w.EndsAt, &w.Score, &w.Status, &w.Annotation, &contributionsRaw); err != nil {
			return nil, fmt.Errorf("scan plan window: %w", err)
		}
		_ = json.Unmarshal(contributionsRaw, &w.Contributions)
		windows = append(windows, w)
	}

	return windows, nil
}

// HasOpenAdvisoryInCooldown reports whether an open or acknowledged
// advisory already covers any part of [windowStarts, windowEnds) for the
// area within the cooldown. Window starts drift as plans are re-anchored
// to the wall clock, so the check matches on range overlap rather than
// exact start.
func (r *Repository) HasOpenAdvisoryInCooldown(ctx context.Context, area string, windowStarts, windowEnds time.Time, cooldown time.Duration) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1
            FROM advisories
            WHERE status IN ('open', 'acknowledged')
              AND area = $1
              AND window_starts < $3
              AND window_ends > $2
              AND created_at >= NOW() - $4::interval
        )
    `, area, windowStarts, windowEnds, fmt.Sprintf("%f seconds", cooldown.Seconds())).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check cooldown advisory: %w", err)
	}
	return exists, nil
}

func (r *Repository) InsertAdvisory(ctx context.Context, advisory contracts.AdvisoryRecord) error {
	if advisory.ID == "" {
		advisory.ID = uuid.NewString()
	}

	_, err := r.pool.Exec(ctx, `
        INSERT INTO advisories
            (id, plan_id, area, window_starts, window_ends, title, description, score, severity, status)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, advisory.ID, nullableUUID(advisory.PlanID), advisory.Area, advisory.WindowStarts, advisory.WindowEnds, advisory.Title, advisory.Description, advisory.Score, advisory.Severity, advisory.Status)
	if err != nil {
		return fmt.Errorf("insert advisory: %w", err)
	}

	return nil
}

func (r *Repository) ListAdvisories(ctx context.Context, status string, limit int) ([]contracts.AdvisoryRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, COALESCE(plan_id::text,''), area, window_starts, window_ends, title, description, score, severity, status, created_at, updated_at
        FROM advisories
        WHERE ($1 = '' OR status = $1)
        ORDER BY created_at DESC
        LIMIT $2
    `, status, limit)
	if err != nil {
		return nil, fmt.Errorf("query advisories: %w", err)
	}
	defer rows.Close()

	advisories := make([]contracts.AdvisoryRecord, 0, limit)
	for rows.Next() {
		var advisory contracts.AdvisoryRecord
		if err := rows.Scan(
			&advisory.ID,
			&advisory.PlanID,
			&advisory.Area,
			&advisory.WindowStarts,
			&advisory.WindowEnds,
			&advisory.Title,
			&advisory.Description,
			&advisory.Score,
			&advisory.Severity,
			&advisory.Status,
			&advisory.CreatedAt,
			&advisory.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan advisory: %w", err)
		}
		advisories = append(advisories, advisory)
	}

	return advisories, nil
}

func (r *Repository) UpdateAdvisoryStatus(ctx context.Context, id, status string) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE advisories
        SET status = $2,
            updated_at = NOW(),
            acknowledged_at = CASE WHEN $2 = 'acknowledged' THEN NOW() ELSE acknowledged_at END,
            resolved_at = CASE WHEN $2 = 'resolved' THEN NOW() ELSE resolved_at END
        WHERE id = $1
    `, id, status)
	if err != nil {
		return fmt.Errorf("update advisory status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

type DashboardSummary struct {
	OpenAdvisories   int     `json:"open_advisories"`
	Acknowledged     int     `json:"acknowledged_advisories"`
	Resolved24h      int     `json:"resolved_last_24h"`
	AvgWindowScore   float64 `json:"avg_window_score_24h"`
	SignalsActiveNow int     `json:"signals_active_now"`
}

func (r *Repository) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	var summary DashboardSummary
	err := r.pool.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE status = 'open') AS open_advisories,
            COUNT(*) FILTER (WHERE status = 'acknowledged') AS acknowledged_advisories,
            COUNT(*) FILTER (WHERE status = 'resolved' AND resolved_at >= NOW() - INTERVAL '24 hours') AS resolved_last_24h,
            COALESCE((SELECT AVG(score) FROM window_plans WHERE computed_at >= NOW() - INTERVAL '24 hours'), 0),
            COALESCE((SELECT COUNT(*) FROM signals WHERE starts_at <= NOW() AND ends_at > NOW()), 0)
        FROM advisories
    `).Scan(&summary.OpenAdvisories, &summary.Acknowledged, &summary.Resolved24h, &summary.AvgWindowScore, &summary.SignalsActiveNow)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	return summary, nil
}

func nullableUUID(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
