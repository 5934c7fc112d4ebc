package models

// CustomAverage is a named subset of subjects averaged together.
type CustomAverage struct {
	ID       string                 `db:"id" json:"id"`
	YearID   string                 `db:"year_id" json:"year_id"`
	Name     string                 `db:"name" json:"name"`
	Subjects []CustomAverageSubject `json:"subjects"`
}

// CustomAverageSubject selects one subject; Coefficient overrides the subject's own weight when set.
type CustomAverageSubject struct {
	SubjectID       string `db:"subject_id" json:"subject_id"`
	Coefficient     *int   `db:"coefficient" json:"coefficient,omitempty"`
	IncludeChildren bool   `db:"include_children" json:"include_children"`
}

// CustomAverageResult is the computed value of a custom average.
type CustomAverageResult struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Average *float64 `json:"average"`
}
