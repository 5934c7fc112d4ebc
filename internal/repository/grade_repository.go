package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

// GradeRepository reads grades for averages, timelines and the year in review.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository creates a new instance of GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// ListByYears returns every grade stored in the given years.
func (r *GradeRepository) ListByYears(ctx context.Context, yearIDs []string) ([]models.Grade, error) {
	if len(yearIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT id, user_id, year_id, subject_id, value, out_of, coefficient, passed_at, created_at FROM grades WHERE year_id = ANY($1) ORDER BY passed_at ASC, id ASC`
	var grades []models.Grade
	if err := r.db.SelectContext(ctx, &grades, query, pq.Array(yearIDs)); err != nil {
		return nil, fmt.Errorf("list grades by years: %w", err)
	}
	return grades, nil
}

// ListForReview returns a user's grades passed inside [from, until), joined with the subject name.
func (r *GradeRepository) ListForReview(ctx context.Context, userID string, from, until time.Time) ([]models.ReviewGrade, error) {
	const query = `SELECT g.id, g.subject_id, s.name AS subject_name, g.value, g.out_of, g.coefficient, g.passed_at
        FROM grades g
        JOIN subjects s ON s.id = g.subject_id
        WHERE g.user_id = $1 AND g.passed_at >= $2 AND g.passed_at < $3
        ORDER BY g.passed_at ASC, g.id ASC`
	var grades []models.ReviewGrade
	if err := r.db.SelectContext(ctx, &grades, query, userID, from, until); err != nil {
		return nil, fmt.Errorf("list review grades: %w", err)
	}
	return grades, nil
}

// Population returns the grade count of every user who passed at least one grade inside [from, until).
func (r *GradeRepository) Population(ctx context.Context, from, until time.Time) ([]models.PopulationEntry, error) {
	const query = `SELECT user_id, COUNT(*) AS grade_count FROM grades WHERE passed_at >= $1 AND passed_at < $2 GROUP BY user_id ORDER BY user_id ASC`
	var entries []models.PopulationEntry
	if err := r.db.SelectContext(ctx, &entries, query, from, until); err != nil {
		return nil, fmt.Errorf("grade population: %w", err)
	}
	return entries, nil
}

// Count returns the number of grades.
func (r *GradeRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM grades"); err != nil {
		return 0, fmt.Errorf("count grades: %w", err)
	}
	return total, nil
}

// CountActiveUsers returns the number of users owning at least one grade.
func (r *GradeRepository) CountActiveUsers(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(DISTINCT user_id) FROM grades"); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}
	return total, nil
}

// CreationSeries returns grade creation times inside [since, until) and the count before since.
func (r *GradeRepository) CreationSeries(ctx context.Context, since, until time.Time) ([]time.Time, int, error) {
	return loadCreationSeries(ctx, r.db, "grades", since, until, nil)
}

// UserCreationSeries is CreationSeries restricted to one user's grades.
func (r *GradeRepository) UserCreationSeries(ctx context.Context, userID string, since, until time.Time) ([]time.Time, int, error) {
	return loadCreationSeries(ctx, r.db, "grades", since, until, &seriesScope{column: "user_id", value: userID})
}
