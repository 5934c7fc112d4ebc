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

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestListUsers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "roles", "created_at"}).
		AddRow("u1", "admin,beta", now).
		AddRow("u2", "", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, roles, created_at FROM users ORDER BY created_at ASC, id ASC")).
		WillReturnRows(rows)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, models.RoleSet{models.RoleAdmin, models.RoleBeta}, users[0].Roles)
	assert.Empty(t, users[1].Roles)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersRejectsUnknownRole(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "roles", "created_at"}).AddRow("u1", "superuser", time.Now())
	mock.ExpectQuery("SELECT id, roles, created_at FROM users").WillReturnRows(rows)

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreationSeries(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	until := since.AddDate(0, 0, 7)
	first := since.Add(3 * time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users WHERE created_at < $1")).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT created_at FROM users WHERE created_at >= $1 AND created_at < $2 ORDER BY created_at ASC")).
		WithArgs(since, until).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(first))

	events, baseline, err := repo.CreationSeries(context.Background(), since, until)
	require.NoError(t, err)
	assert.Equal(t, 12, baseline)
	require.Len(t, events, 1)
	assert.True(t, first.Equal(events[0]))
	assert.NoError(t, mock.ExpectationsWereMet())
}
