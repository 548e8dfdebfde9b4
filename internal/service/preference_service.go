package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/models"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
)

type preferenceRepository interface {
	FindByTerm(ctx context.Context, termID string) (*models.PlannerPreference, error)
	Upsert(ctx context.Context, pref *models.PlannerPreference) error
	Delete(ctx context.Context, termID string) error
}

type preferenceTermReader interface {
	FindByID(ctx context.Context, id string) (*models.Term, error)
}

// PreferenceService stores the student's planner filters and weights per term.
type PreferenceService struct {
	terms     preferenceTermReader
	prefs     preferenceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPreferenceService constructs a preference service.
func NewPreferenceService(terms preferenceTermReader, prefs preferenceRepository, validate *validator.Validate, logger *zap.Logger) *PreferenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceService{terms: terms, prefs: prefs, validator: validate, logger: logger}
}

// Save upserts the preference for a term.
func (s *PreferenceService) Save(ctx context.Context, req dto.SavePreferenceRequest) (*dto.PreferenceResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid preference payload")
	}
	if _, err := s.terms.FindByID(ctx, req.TermID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term")
	}

	filterBytes, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode filters")
	}
	weightBytes, err := json.Marshal(req.Weights)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode weights")
	}

	pref := &models.PlannerPreference{
		TermID:  req.TermID,
		Filters: types.JSONText(filterBytes),
		Weights: types.JSONText(weightBytes),
	}
	if err := s.prefs.Upsert(ctx, pref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store preference")
	}

	return &dto.PreferenceResponse{TermID: req.TermID, Filters: req.Filters, Weights: req.Weights}, nil
}

// Get returns the stored preference for a term, falling back to defaults
// when nothing was saved yet.
func (s *PreferenceService) Get(ctx context.Context, termID string) (*dto.PreferenceResponse, error) {
	if termID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term id is required")
	}
	pref, err := s.prefs.FindByTerm(ctx, termID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			defaults := models.DefaultScoreWeights()
			return &dto.PreferenceResponse{
				TermID: termID,
				Weights: dto.ScoreWeightsRequest{
					FreeDays:  defaults.FreeDays,
					LateStart: defaults.LateStart,
					Gaps:      defaults.Gaps,
					Spread:    defaults.Spread,
				},
			}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load preference")
	}

	resp := &dto.PreferenceResponse{TermID: termID}
	if len(pref.Filters) > 0 {
		if err := json.Unmarshal(pref.Filters, &resp.Filters); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode stored filters")
		}
	}
	if len(pref.Weights) > 0 {
		if err := json.Unmarshal(pref.Weights, &resp.Weights); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode stored weights")
		}
	}
	return resp, nil
}

// Delete removes the stored preference for a term.
func (s *PreferenceService) Delete(ctx context.Context, termID string) error {
	if termID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "term id is required")
	}
	if err := s.prefs.Delete(ctx, termID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete preference")
	}
	return nil
}
