package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/lmichaud/caq-advisor/internal/models"
)

func newAssessmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAssessmentRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newAssessmentRepoMock(t)
	defer cleanup()

	repo := NewAssessmentRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO assessments")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	score := 75
	assessment := &models.Assessment{
		ConsultantID: "user-1",
		Kind:         models.AssessmentTimeline,
		Outcome:      "AT_RISK",
		Score:        &score,
		Result:       []byte(`{"score":75}`),
	}
	require.NoError(t, repo.Create(context.Background(), assessment))
	require.NotEmpty(t, assessment.ID)

	rows := sqlmock.NewRows([]string{"id", "consultant_id", "kind", "outcome", "score", "blocking_count", "major_count", "result", "created_at"}).
		AddRow(assessment.ID, "user-1", "TIMELINE", "AT_RISK", 75, 0, 0, []byte(`{"score":75}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, consultant_id, kind")).
		WithArgs(assessment.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), assessment.ID)
	require.NoError(t, err)
	require.Equal(t, assessment.ID, found.ID)
	require.JSONEq(t, `{"score":75}`, string(found.Result))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAssessmentRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newAssessmentRepoMock(t)
	defer cleanup()

	repo := NewAssessmentRepository(db)
	rows := sqlmock.NewRows([]string{"id", "consultant_id", "kind", "outcome", "score", "blocking_count", "major_count", "result", "created_at"}).
		AddRow("as-1", "user-1", "DOSSIER", "HIGH_RISK", nil, 2, 1, []byte(`{}`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, consultant_id, kind")).
		WithArgs("DOSSIER", "user-1").
		WillReturnRows(rows)

	list, err := repo.List(context.Background(), AssessmentFilter{
		Kind:         models.AssessmentDossier,
		ConsultantID: "user-1",
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "as-1", list[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
