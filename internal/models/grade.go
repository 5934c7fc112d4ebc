package models

import "time"

// DefaultCoefficient is the stored ×100 weight meaning "×1".
const DefaultCoefficient = 100

// Grade is one scored assessment. Value, OutOf and Coefficient are stored ×100.
type Grade struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	YearID      string    `db:"year_id" json:"year_id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	Value       int       `db:"value" json:"value"`
	OutOf       int       `db:"out_of" json:"out_of"`
	Coefficient int       `db:"coefficient" json:"coefficient"`
	PassedAt    time.Time `db:"passed_at" json:"passed_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Scorable reports whether the grade can enter an average.
func (g Grade) Scorable() bool {
	return g.OutOf > 0
}

// ReviewGrade is a grade joined with its subject name for the year in review.
type ReviewGrade struct {
	ID          string    `db:"id" json:"id"`
	SubjectID   string    `db:"subject_id" json:"subject_id"`
	SubjectName string    `db:"subject_name" json:"subject_name"`
	Value       int       `db:"value" json:"value"`
	OutOf       int       `db:"out_of" json:"out_of"`
	Coefficient int       `db:"coefficient" json:"coefficient"`
	PassedAt    time.Time `db:"passed_at" json:"passed_at"`
}

// PopulationEntry is one user's grade count inside a date window.
type PopulationEntry struct {
	UserID     string `db:"user_id" json:"user_id"`
	GradeCount int    `db:"grade_count" json:"grade_count"`
}
