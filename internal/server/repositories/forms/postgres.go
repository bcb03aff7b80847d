package forms

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/common"
	"github.com/dmitrijs2005/onboarding/internal/dbx"
	"github.com/dmitrijs2005/onboarding/internal/server/models"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const entryColumns = `id, user_id, steps, completed, completed_at, created_at, updated_at`

// PostgresRepository keeps steps in a single jsonb column keyed by step number.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) GetOrCreate(ctx context.Context, userID string) (*models.FormEntry, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `INSERT INTO form_entries (id, user_id) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING ` + entryColumns

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, uuid.NewString(), userID))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) Find(ctx context.Context, userID string) (*models.FormEntry, error) {
	query := `SELECT ` + entryColumns + ` FROM form_entries WHERE user_id = $1`

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func (r *PostgresRepository) MergeStep(ctx context.Context, userID, key string, patch models.StepData) (models.StepData, error) {
	if patch == nil {
		patch = models.StepData{}
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode patch: %w", err)
	}

	query := `INSERT INTO form_entries (id, user_id, steps)
		VALUES ($1, $2, jsonb_build_object($3::text, $4::jsonb))
		ON CONFLICT (user_id) DO UPDATE SET
			steps = form_entries.steps || jsonb_build_object($3::text,
				COALESCE(form_entries.steps -> $3::text, '{}'::jsonb) || $4::jsonb),
			updated_at = now()
		RETURNING steps -> $3::text`

	var merged []byte
	if err := r.db.QueryRowContext(ctx, query, uuid.NewString(), userID, key, string(raw)).Scan(&merged); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	out := models.StepData{}
	if err := json.Unmarshal(merged, &out); err != nil {
		return nil, fmt.Errorf("decode step: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) MarkCompleted(ctx context.Context, userID string, at time.Time) (*models.FormEntry, error) {
	query := `UPDATE form_entries
		SET completed = TRUE, completed_at = $2, updated_at = $2
		WHERE user_id = $1
		RETURNING ` + entryColumns

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, userID, at))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return entry, nil
}

func scanEntry(row *sql.Row) (*models.FormEntry, error) {
	var (
		e           models.FormEntry
		steps       []byte
		completedAt sql.NullTime
	)
	if err := row.Scan(&e.ID, &e.UserID, &steps, &e.Completed, &completedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}

	e.Steps = map[string]models.StepData{}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &e.Steps); err != nil {
			return nil, fmt.Errorf("decode steps: %w", err)
		}
	}
	if completedAt.Valid {
		t := completedAt.Time
		e.CompletedAt = &t
	}
	return &e, nil
}
