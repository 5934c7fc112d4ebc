package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

// UserRepository provides read access to accounts.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns every user in signup order.
func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	const query = `SELECT id, roles, created_at FROM users ORDER BY created_at ASC, id ASC`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// CreationSeries returns signup times inside [since, until) and the count before since.
func (r *UserRepository) CreationSeries(ctx context.Context, since, until time.Time) ([]time.Time, int, error) {
	return loadCreationSeries(ctx, r.db, "users", since, until, nil)
}
