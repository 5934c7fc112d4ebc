package models

import "time"

// Year is a user-scoped workspace holding one subject tree and its grades.
type Year struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Name      string    `db:"name" json:"name"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// YearAverage is the average of one workspace.
type YearAverage struct {
	YearID  string   `json:"year_id"`
	Average *float64 `json:"average"`
}

// UserAverage is the unweighted mean of a user's workspace averages.
type UserAverage struct {
	UserID  string        `json:"user_id"`
	Average *float64      `json:"average"`
	Years   []YearAverage `json:"years"`
}
