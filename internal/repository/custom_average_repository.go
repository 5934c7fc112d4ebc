package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

// CustomAverageRepository reads user-defined subject selections.
type CustomAverageRepository struct {
	db *sqlx.DB
}

// NewCustomAverageRepository creates a new instance of CustomAverageRepository.
func NewCustomAverageRepository(db *sqlx.DB) *CustomAverageRepository {
	return &CustomAverageRepository{db: db}
}

// FindByID returns a custom average with its selected subjects. sql.ErrNoRows is returned untouched.
func (r *CustomAverageRepository) FindByID(ctx context.Context, id string) (*models.CustomAverage, error) {
	const header = `SELECT id, year_id, name FROM custom_averages WHERE id = $1 LIMIT 1`
	var custom models.CustomAverage
	if err := r.db.GetContext(ctx, &custom, header, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find custom average: %w", err)
	}

	const selection = `SELECT subject_id, coefficient, include_children FROM custom_average_subjects WHERE custom_average_id = $1 ORDER BY position ASC, subject_id ASC`
	if err := r.db.SelectContext(ctx, &custom.Subjects, selection, id); err != nil {
		return nil, fmt.Errorf("list custom average subjects: %w", err)
	}
	return &custom, nil
}
