package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

// PreferenceRepository persists per-term planner filters and weights.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository instantiates a preference repository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// FindByTerm loads the stored preference for a term.
func (r *PreferenceRepository) FindByTerm(ctx context.Context, termID string) (*models.PlannerPreference, error) {
	const query = `SELECT id, term_id, filters, weights, created_at, updated_at FROM planner_preferences WHERE term_id = $1`
	var pref models.PlannerPreference
	if err := r.db.GetContext(ctx, &pref, query, termID); err != nil {
		return nil, err
	}
	return &pref, nil
}

// Upsert stores the preference, replacing any previous one for the term.
func (r *PreferenceRepository) Upsert(ctx context.Context, pref *models.PlannerPreference) error {
	if pref.ID == "" {
		pref.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if pref.CreatedAt.IsZero() {
		pref.CreatedAt = now
	}
	pref.UpdatedAt = now

	const query = `INSERT INTO planner_preferences (id, term_id, filters, weights, created_at, updated_at) VALUES (:id, :term_id, :filters, :weights, :created_at, :updated_at) ON CONFLICT (term_id) DO UPDATE SET filters = EXCLUDED.filters, weights = EXCLUDED.weights, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert preference: %w", err)
	}
	return nil
}

// Delete removes the stored preference for a term.
func (r *PreferenceRepository) Delete(ctx context.Context, termID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM planner_preferences WHERE term_id = $1`, termID); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}
	return nil
}
