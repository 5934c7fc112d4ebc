package analytics

import (
	"time"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

func subject(id, parent string, coefficient int, display bool) models.Subject {
	s := models.Subject{ID: id, Name: id, Coefficient: coefficient, IsDisplaySubject: display}
	if parent != "" {
		p := parent
		s.ParentID = &p
	}
	return s
}

func grade(id, subjectID string, value, outOf, coefficient int) models.Grade {
	return models.Grade{ID: id, SubjectID: subjectID, Value: value, OutOf: outOf, Coefficient: coefficient}
}

func date(raw string) time.Time {
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		panic(err)
	}
	return t
}
