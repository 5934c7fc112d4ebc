package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomAverageFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCustomAverageRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year_id, name FROM custom_averages WHERE id = $1 LIMIT 1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "year_id", "name"}).AddRow("c1", "y1", "Sciences only"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT subject_id, coefficient, include_children FROM custom_average_subjects WHERE custom_average_id = $1")).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id", "coefficient", "include_children"}).
			AddRow("phy", 300, false).
			AddRow("bio", nil, true))

	custom, err := repo.FindByID(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "Sciences only", custom.Name)
	require.Len(t, custom.Subjects, 2)
	require.NotNil(t, custom.Subjects[0].Coefficient)
	assert.Equal(t, 300, *custom.Subjects[0].Coefficient)
	assert.Nil(t, custom.Subjects[1].Coefficient)
	assert.True(t, custom.Subjects[1].IncludeChildren)
	assert.NoError(t, mock.ExpectationsWereMet())
}
