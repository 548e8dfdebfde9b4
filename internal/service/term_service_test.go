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

type termRepoStub struct {
	items       map[string]*models.Term
	courseCount map[string]int
}

func (s *termRepoStub) List(ctx context.Context, filter models.TermFilter) ([]models.Term, int, error) {
	var out []models.Term
	for _, term := range s.items {
		out = append(out, *term)
	}
	return out, len(out), nil
}

func (s *termRepoStub) FindByID(ctx context.Context, id string) (*models.Term, error) {
	if term, ok := s.items[id]; ok {
		copied := *term
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (s *termRepoStub) FindActive(ctx context.Context) (*models.Term, error) {
	for _, term := range s.items {
		if term.IsActive {
			copied := *term
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *termRepoStub) Create(ctx context.Context, term *models.Term) error {
	if term.ID == "" {
		term.ID = term.Name
	}
	if s.items == nil {
		s.items = make(map[string]*models.Term)
	}
	copied := *term
	s.items[term.ID] = &copied
	return nil
}

func (s *termRepoStub) Update(ctx context.Context, term *models.Term) error {
	copied := *term
	s.items[term.ID] = &copied
	return nil
}

func (s *termRepoStub) SetActive(ctx context.Context, id string) error {
	for _, term := range s.items {
		term.IsActive = term.ID == id
	}
	return nil
}

func (s *termRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.items, id)
	return nil
}

func (s *termRepoStub) CountCourses(ctx context.Context, id string) (int, error) {
	return s.courseCount[id], nil
}

func newTermFixture() (*TermService, *termRepoStub) {
	repo := &termRepoStub{items: map[string]*models.Term{}, courseCount: map[string]int{}}
	return NewTermService(repo, validator.New(), zap.NewNop()), repo
}

func TestTermCreateAndActivate(t *testing.T) {
	service, repo := newTermFixture()

	term, err := service.Create(context.Background(), dto.CreateTermRequest{Name: "Fall", AcademicYear: "2026-2027"})
	require.NoError(t, err)
	assert.NotEmpty(t, term.ID)

	require.NoError(t, service.SetActive(context.Background(), term.ID))
	assert.True(t, repo.items[term.ID].IsActive)

	active, err := service.GetActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, term.ID, active.ID)
}

func TestTermDeleteBlockedByCourses(t *testing.T) {
	service, repo := newTermFixture()
	repo.items["t1"] = &models.Term{ID: "t1", Name: "Fall"}
	repo.courseCount["t1"] = 3

	err := service.Delete(context.Background(), "t1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTermGetUnknown(t *testing.T) {
	service, _ := newTermFixture()

	_, err := service.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTermUpdate(t *testing.T) {
	service, repo := newTermFixture()
	repo.items["t1"] = &models.Term{ID: "t1", Name: "Fall", AcademicYear: "2025-2026"}

	updated, err := service.Update(context.Background(), "t1", dto.UpdateTermRequest{Name: "Fall 2026", AcademicYear: "2026-2027"})
	require.NoError(t, err)
	assert.Equal(t, "Fall 2026", updated.Name)
	assert.Equal(t, "2026-2027", repo.items["t1"].AcademicYear)
}
