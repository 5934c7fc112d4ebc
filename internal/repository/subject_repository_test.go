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

func TestSubjectListByYears(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "year_id", "parent_id", "name", "coefficient", "is_display_subject", "depth", "created_at"}).
		AddRow("sci", "y1", nil, "Sciences", 100, true, 0, now).
		AddRow("phy", "y1", "sci", "Physics", 200, false, 1, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE year_id = ANY($1) ORDER BY year_id ASC, depth ASC")).
		WithArgs(pq.Array([]string{"y1"})).
		WillReturnRows(rows)

	subjects, err := repo.ListByYears(context.Background(), []string{"y1"})
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Nil(t, subjects[0].ParentID)
	assert.True(t, subjects[0].IsDisplaySubject)
	require.NotNil(t, subjects[1].ParentID)
	assert.Equal(t, "sci", *subjects[1].ParentID)
	assert.Equal(t, 200, subjects[1].Coefficient)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectCount(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(18))

	total, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 18, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
