package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uniplanner/uniplanner-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestListTerms(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	now := time.Now()
	listRows := sqlmock.NewRows([]string{"id", "name", "academic_year", "is_active", "created_at", "updated_at"}).
		AddRow("t1", "Fall", "2025-2026", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, academic_year, is_active, created_at, updated_at FROM terms WHERE 1=1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WillReturnRows(listRows)

	countRows := sqlmock.NewRows([]string{"count"}).AddRow(1)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM terms WHERE 1=1")).WillReturnRows(countRows)

	terms, total, err := repo.List(context.Background(), models.TermFilter{})
	require.NoError(t, err)
	assert.Len(t, terms, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindTermByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "name", "academic_year", "is_active", "created_at", "updated_at"}).
		AddRow("t1", "Fall", "2025-2026", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, academic_year, is_active, created_at, updated_at FROM terms WHERE id = $1")).
		WithArgs("t1").
		WillReturnRows(rows)

	term, err := repo.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Fall", term.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectExec("INSERT INTO terms").WillReturnResult(sqlmock.NewResult(1, 1))

	term := &models.Term{Name: "Spring", AcademicYear: "2025-2026"}
	err := repo.Create(context.Background(), term)
	require.NoError(t, err)
	assert.NotEmpty(t, term.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActiveTerm(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTermRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE terms SET is_active = FALSE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE terms SET is_active = TRUE").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.SetActive(context.Background(), "t1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
