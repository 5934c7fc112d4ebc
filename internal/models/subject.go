package models

import "time"

// Subject is a node of a per-year subject tree. Display subjects only group children.
type Subject struct {
	ID               string    `db:"id" json:"id"`
	YearID           string    `db:"year_id" json:"year_id"`
	ParentID         *string   `db:"parent_id" json:"parent_id,omitempty"`
	Name             string    `db:"name" json:"name"`
	Coefficient      int       `db:"coefficient" json:"coefficient"`
	IsDisplaySubject bool      `db:"is_display_subject" json:"is_display_subject"`
	Depth            int       `db:"depth" json:"depth"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// SubjectAverage is the computed average of one subject; Average is nil when there is no data.
type SubjectAverage struct {
	SubjectID string   `json:"subject_id"`
	Name      string   `json:"name"`
	ParentID  *string  `json:"parent_id,omitempty"`
	Depth     int      `json:"depth"`
	Average   *float64 `json:"average"`
}
