package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/uniplanner/uniplanner-api/internal/dto"
	"github.com/uniplanner/uniplanner-api/internal/models"
	appErrors "github.com/uniplanner/uniplanner-api/pkg/errors"
)

type preferenceRepoStub struct {
	items map[string]*models.PlannerPreference
}

func (s *preferenceRepoStub) FindByTerm(ctx context.Context, termID string) (*models.PlannerPreference, error) {
	if pref, ok := s.items[termID]; ok {
		return pref, nil
	}
	return nil, sql.ErrNoRows
}

func (s *preferenceRepoStub) Upsert(ctx context.Context, pref *models.PlannerPreference) error {
	if s.items == nil {
		s.items = make(map[string]*models.PlannerPreference)
	}
	copied := *pref
	s.items[pref.TermID] = &copied
	return nil
}

func (s *preferenceRepoStub) Delete(ctx context.Context, termID string) error {
	delete(s.items, termID)
	return nil
}

func newPreferenceFixture() (*PreferenceService, *preferenceRepoStub) {
	repo := &preferenceRepoStub{}
	terms := termReaderStub{terms: map[string]*models.Term{"term-1": {ID: "term-1", Name: "Fall"}}}
	return NewPreferenceService(terms, repo, validator.New(), zap.NewNop()), repo
}

func TestPreferenceRoundTrip(t *testing.T) {
	service, _ := newPreferenceFixture()

	start := 540
	saved, err := service.Save(context.Background(), dto.SavePreferenceRequest{
		TermID:  "term-1",
		Filters: dto.ScheduleFiltersRequest{EarliestStart: &start, LunchBreak: true, MinFreeDays: 1},
		Weights: dto.ScoreWeightsRequest{FreeDays: 90, LateStart: 10, Gaps: 60, Spread: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, "term-1", saved.TermID)

	loaded, err := service.Get(context.Background(), "term-1")
	require.NoError(t, err)
	require.NotNil(t, loaded.Filters.EarliestStart)
	assert.Equal(t, 540, *loaded.Filters.EarliestStart)
	assert.True(t, loaded.Filters.LunchBreak)
	assert.Equal(t, 90, loaded.Weights.FreeDays)
}

func TestPreferenceDefaultsWhenUnset(t *testing.T) {
	service, _ := newPreferenceFixture()

	loaded, err := service.Get(context.Background(), "term-1")
	require.NoError(t, err)
	defaults := models.DefaultScoreWeights()
	assert.Equal(t, defaults.FreeDays, loaded.Weights.FreeDays)
	assert.Equal(t, defaults.Spread, loaded.Weights.Spread)
	assert.Nil(t, loaded.Filters.EarliestStart)
}

func TestPreferenceSaveUnknownTerm(t *testing.T) {
	service, _ := newPreferenceFixture()

	_, err := service.Save(context.Background(), dto.SavePreferenceRequest{TermID: "missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPreferenceSaveRejectsOutOfRangeSliders(t *testing.T) {
	service, _ := newPreferenceFixture()

	_, err := service.Save(context.Background(), dto.SavePreferenceRequest{
		TermID:  "term-1",
		Weights: dto.ScoreWeightsRequest{FreeDays: 150},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
