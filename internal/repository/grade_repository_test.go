package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeListByYears(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "year_id", "subject_id", "value", "out_of", "coefficient", "passed_at", "created_at"}).
		AddRow("g1", "u1", "y1", "math", 1500, 2000, 100, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM grades WHERE year_id = ANY($1)")).
		WithArgs(pq.Array([]string{"y1", "y2"})).
		WillReturnRows(rows)

	grades, err := repo.ListByYears(context.Background(), []string{"y1", "y2"})
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, 1500, grades[0].Value)
	assert.Equal(t, "math", grades[0].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeListByYearsSkipsEmptySelection(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	grades, err := repo.ListByYears(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, grades)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeListForReview(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	passed := time.Date(2024, 10, 8, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "subject_id", "subject_name", "value", "out_of", "coefficient", "passed_at"}).
		AddRow("g1", "s1", "History", 1700, 2000, 100, passed)
	mock.ExpectQuery(`SELECT g\.id, g\.subject_id, s\.name AS subject_name.*FROM grades g\s+JOIN subjects s ON s\.id = g\.subject_id\s+WHERE g\.user_id = \$1 AND g\.passed_at >= \$2 AND g\.passed_at < \$3`).
		WithArgs("u1", from, until).
		WillReturnRows(rows)

	grades, err := repo.ListForReview(context.Background(), "u1", from, until)
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, "History", grades[0].SubjectName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradePopulation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	from := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	until := from.AddDate(1, 0, 0)
	rows := sqlmock.NewRows([]string{"user_id", "grade_count"}).AddRow("u1", 5).AddRow("u2", 9)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT user_id, COUNT(*) AS grade_count FROM grades WHERE passed_at >= $1 AND passed_at < $2 GROUP BY user_id")).
		WithArgs(from, until).
		WillReturnRows(rows)

	entries, err := repo.Population(context.Background(), from, until)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 9, entries[1].GradeCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM grades")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT user_id) FROM grades")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, total)

	active, err := repo.CountActiveUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, active)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeUserCreationSeriesScopesByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	since := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 0, 30)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM grades WHERE created_at < $1 AND user_id = $2")).
		WithArgs(since, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM grades WHERE created_at >= $1 AND created_at < $2 AND user_id = $3 ORDER BY created_at ASC")).
		WithArgs(since, until, "u1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

	events, baseline, err := repo.UserCreationSeries(context.Background(), "u1", since, until)
	require.NoError(t, err)
	assert.Equal(t, 3, baseline)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeCreationSeriesWrapsErrors(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM grades")).WillReturnError(assert.AnError)

	_, _, err := repo.CreationSeries(context.Background(), time.Now(), time.Now())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "count grades before window")
}
