package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

// SubjectRepository reads subject trees.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new instance of SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// ListByYears returns the subjects of the given years, parents before children.
func (r *SubjectRepository) ListByYears(ctx context.Context, yearIDs []string) ([]models.Subject, error) {
	if len(yearIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, year_id, parent_id, name, coefficient, is_display_subject, depth, created_at FROM subjects WHERE year_id = ANY($1) ORDER BY year_id ASC, depth ASC, created_at ASC, id ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, pq.Array(yearIDs)); err != nil {
		return nil, fmt.Errorf("list subjects by years: %w", err)
	}
	return subjects, nil
}

// Count returns the number of subjects across all years.
func (r *SubjectRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM subjects"); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return total, nil
}

// CreationSeries returns subject creation times inside [since, until) and the count before since.
func (r *SubjectRepository) CreationSeries(ctx context.Context, since, until time.Time) ([]time.Time, int, error) {
	return loadCreationSeries(ctx, r.db, "subjects", since, until, nil)
}
