package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

func TestUpsertPreference(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectExec("INSERT INTO planner_preferences").WillReturnResult(sqlmock.NewResult(1, 1))

	pref := &models.PlannerPreference{
		TermID:  "t1",
		Filters: types.JSONText(`{"lunchBreak":true}`),
		Weights: types.JSONText(`{"freeDays":80}`),
	}
	err := repo.Upsert(context.Background(), pref)
	require.NoError(t, err)
	assert.NotEmpty(t, pref.ID)
	assert.False(t, pref.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPreferenceByTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "term_id", "filters", "weights", "created_at", "updated_at"}).
		AddRow("p1", "t1", []byte(`{"minFreeDays":1}`), []byte(`{"gaps":40}`), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, term_id, filters, weights, created_at, updated_at FROM planner_preferences WHERE term_id = $1")).
		WithArgs("t1").
		WillReturnRows(rows)

	pref, err := repo.FindByTerm(context.Background(), "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"minFreeDays":1}`, string(pref.Filters))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePreference(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPreferenceRepository(db)

	mock.ExpectExec("DELETE FROM planner_preferences").
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "t1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
