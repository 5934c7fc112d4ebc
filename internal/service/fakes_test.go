package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
)

type stubCacheRepo struct {
	mu    sync.Mutex
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store = nil
	return nil
}

func (s *stubCacheRepo) has(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.store[key]
	return ok
}

// gradebook is an in-memory stand-in for the year, subject, grade and custom average tables.
type gradebook struct {
	years    []models.Year
	subjects []models.Subject
	grades   []models.Grade
	customs  map[string]*models.CustomAverage
	users    []models.User

	mu         sync.Mutex
	gradeCalls int
	err        error
}

func (g *gradebook) FindByID(_ context.Context, id string) (*models.Year, error) {
	for _, y := range g.years {
		if y.ID == id {
			year := y
			return &year, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (g *gradebook) ListByUser(_ context.Context, userID string) ([]models.Year, error) {
	var out []models.Year
	for _, y := range g.years {
		if y.UserID == userID {
			out = append(out, y)
		}
	}
	return out, nil
}

func (g *gradebook) ListAll(_ context.Context) ([]models.Year, error) {
	return g.years, nil
}

func (g *gradebook) List(_ context.Context) ([]models.User, error) {
	return g.users, nil
}

type subjectTable struct{ *gradebook }

func (s subjectTable) ListByYears(_ context.Context, ids []string) ([]models.Subject, error) {
	var out []models.Subject
	for _, subject := range s.subjects {
		if contains(ids, subject.YearID) {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (s subjectTable) Count(_ context.Context) (int, error) {
	return len(s.subjects), nil
}

type gradeTable struct{ *gradebook }

func (g gradeTable) ListByYears(_ context.Context, ids []string) ([]models.Grade, error) {
	g.mu.Lock()
	g.gradeCalls++
	g.mu.Unlock()
	if g.err != nil {
		return nil, g.err
	}
	var out []models.Grade
	for _, grade := range g.grades {
		if contains(ids, grade.YearID) {
			out = append(out, grade)
		}
	}
	return out, nil
}

func (g gradeTable) Count(_ context.Context) (int, error) {
	return len(g.grades), nil
}

func (g gradeTable) CountActiveUsers(_ context.Context) (int, error) {
	seen := make(map[string]struct{})
	for _, grade := range g.grades {
		seen[grade.UserID] = struct{}{}
	}
	return len(seen), nil
}

func (g gradeTable) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gradeCalls
}

type customTable struct{ *gradebook }

func (c customTable) FindByID(_ context.Context, id string) (*models.CustomAverage, error) {
	custom, ok := c.customs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return custom, nil
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }

func subjectRow(id, yearID string, parent *string, coefficient int, display bool) models.Subject {
	return models.Subject{ID: id, YearID: yearID, ParentID: parent, Name: id, Coefficient: coefficient, IsDisplaySubject: display}
}

func gradeRow(id, userID, yearID, subjectID string, value, outOf int) models.Grade {
	return models.Grade{ID: id, UserID: userID, YearID: yearID, SubjectID: subjectID, Value: value, OutOf: outOf, Coefficient: models.DefaultCoefficient}
}

// twoYearBook holds u1 with a 15.0 year and an 11.0 year, and u2 with a single 18.0 year.
func twoYearBook() *gradebook {
	return &gradebook{
		years: []models.Year{
			{ID: "y1", UserID: "u1", Name: "Premiere"},
			{ID: "y2", UserID: "u1", Name: "Terminale"},
			{ID: "y3", UserID: "u2", Name: "Seconde"},
		},
		subjects: []models.Subject{
			subjectRow("math", "y1", nil, 100, false),
			subjectRow("phy", "y2", nil, 100, false),
			subjectRow("bio", "y2", nil, 100, false),
			subjectRow("art", "y3", nil, 100, false),
		},
		grades: []models.Grade{
			gradeRow("g1", "u1", "y1", "math", 1500, 2000),
			gradeRow("g2", "u1", "y2", "phy", 1200, 2000),
			gradeRow("g3", "u1", "y2", "bio", 1000, 2000),
			gradeRow("g4", "u2", "y3", "art", 1800, 2000),
		},
		customs: map[string]*models.CustomAverage{
			"c1": {ID: "c1", YearID: "y2", Name: "Physics only", Subjects: []models.CustomAverageSubject{{SubjectID: "phy"}}},
			"c2": {ID: "c2", YearID: "y3", Name: "Foreign", Subjects: []models.CustomAverageSubject{{SubjectID: "art"}}},
		},
		users: []models.User{
			{ID: "u1", Roles: models.RoleSet{models.RoleBeta}},
			{ID: "u2", Roles: models.RoleSet{models.RoleAdmin, models.RoleBeta}},
			{ID: "u3"},
		},
	}
}
