package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

const yearColumns = "id, user_id, name, starts_at, ends_at, created_at"

// YearRepository reads workspaces.
type YearRepository struct {
	db *sqlx.DB
}

// NewYearRepository creates a new instance of YearRepository.
func NewYearRepository(db *sqlx.DB) *YearRepository {
	return &YearRepository{db: db}
}

// FindByID returns one year. sql.ErrNoRows is returned untouched.
func (r *YearRepository) FindByID(ctx context.Context, id string) (*models.Year, error) {
	query := "SELECT " + yearColumns + " FROM years WHERE id = $1 LIMIT 1"
	var year models.Year
	if err := r.db.GetContext(ctx, &year, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find year by id: %w", err)
	}
	return &year, nil
}

// ListByUser returns every workspace of a user, oldest first.
func (r *YearRepository) ListByUser(ctx context.Context, userID string) ([]models.Year, error) {
	query := "SELECT " + yearColumns + " FROM years WHERE user_id = $1 ORDER BY starts_at ASC, id ASC"
	var years []models.Year
	if err := r.db.SelectContext(ctx, &years, query, userID); err != nil {
		return nil, fmt.Errorf("list years by user: %w", err)
	}
	return years, nil
}

// ListAll returns every workspace, grouped by owner.
func (r *YearRepository) ListAll(ctx context.Context) ([]models.Year, error) {
	query := "SELECT " + yearColumns + " FROM years ORDER BY user_id ASC, starts_at ASC, id ASC"
	var years []models.Year
	if err := r.db.SelectContext(ctx, &years, query); err != nil {
		return nil, fmt.Errorf("list years: %w", err)
	}
	return years, nil
}
