package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/grade-analytics-api/internal/analytics"
	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
)

// YearRepository describes workspace lookups.
type YearRepository interface {
	FindByID(ctx context.Context, id string) (*models.Year, error)
	ListByUser(ctx context.Context, userID string) ([]models.Year, error)
}

// SubjectRepository describes subject tree lookups.
type SubjectRepository interface {
	ListByYears(ctx context.Context, yearIDs []string) ([]models.Subject, error)
}

// GradeRepository describes the grade rows averages are computed from.
type GradeRepository interface {
	ListByYears(ctx context.Context, yearIDs []string) ([]models.Grade, error)
}

// CustomAverageRepository describes custom average lookups.
type CustomAverageRepository interface {
	FindByID(ctx context.Context, id string) (*models.CustomAverage, error)
}

// AverageService computes subject, year and user averages with cache integration.
type AverageService struct {
	years    YearRepository
	subjects SubjectRepository
	grades   GradeRepository
	customs  CustomAverageRepository
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewAverageService constructs an average service.
func NewAverageService(years YearRepository, subjects SubjectRepository, grades GradeRepository, customs CustomAverageRepository, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AverageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AverageService{years: years, subjects: subjects, grades: grades, customs: customs, cache: cache, metrics: metrics, logger: logger}
}

// UserAverage returns the unweighted mean of every workspace average of a user.
func (s *AverageService) UserAverage(ctx context.Context, userID string) (*models.UserAverage, bool, error) {
	key := makeAnalyticsCacheKey("user", userID, "average")
	return cached(ctx, s.cache, key, func(ctx context.Context) (*models.UserAverage, error) {
		years, err := s.years.ListByUser(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.computeUserAverage(ctx, userID, years)
	})
}

func (s *AverageService) computeUserAverage(ctx context.Context, userID string, years []models.Year) (*models.UserAverage, error) {
	inputs, err := s.loadWorkspaces(ctx, years)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	avg, perYear, err := analytics.CrossWorkspaceAverage(inputs)
	s.metrics.ObserveComputation("user_average", time.Since(start))
	if err != nil {
		return nil, integrityError(err)
	}
	return &models.UserAverage{UserID: userID, Average: avg, Years: perYear}, nil
}

// YearAverage returns the average of one workspace owned by userID.
func (s *AverageService) YearAverage(ctx context.Context, userID, yearID string) (*models.YearAverage, bool, error) {
	year, err := s.ownedYear(ctx, userID, yearID)
	if err != nil {
		return nil, false, err
	}
	key := makeAnalyticsCacheKey("user", userID, "year", yearID, "average")
	return cached(ctx, s.cache, key, func(ctx context.Context) (*models.YearAverage, error) {
		inputs, err := s.loadWorkspaces(ctx, []models.Year{*year})
		if err != nil {
			return nil, err
		}
		start := time.Now()
		avg, err := analytics.WorkspaceAverage(inputs[0])
		s.metrics.ObserveComputation("year_average", time.Since(start))
		if err != nil {
			return nil, integrityError(err)
		}
		return &models.YearAverage{YearID: yearID, Average: avg}, nil
	})
}

// SubjectAverages returns the average of every subject of one workspace in tree order.
func (s *AverageService) SubjectAverages(ctx context.Context, userID, yearID string) ([]models.SubjectAverage, bool, error) {
	year, err := s.ownedYear(ctx, userID, yearID)
	if err != nil {
		return nil, false, err
	}
	key := makeAnalyticsCacheKey("user", userID, "year", yearID, "subjects")
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.SubjectAverage, error) {
		inputs, err := s.loadWorkspaces(ctx, []models.Year{*year})
		if err != nil {
			return nil, err
		}
		start := time.Now()
		tree, err := analytics.NewSubjectTree(inputs[0].Subjects, inputs[0].Grades)
		if err != nil {
			return nil, integrityError(err)
		}
		averages := tree.Averages()
		s.metrics.ObserveComputation("subject_averages", time.Since(start))
		return averages, nil
	})
}

// CustomAverage evaluates a saved custom average owned by userID.
func (s *AverageService) CustomAverage(ctx context.Context, userID, customID string) (*models.CustomAverageResult, bool, error) {
	custom, err := s.customs.FindByID(ctx, customID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "custom average not found")
		}
		return nil, false, err
	}
	year, err := s.ownedYear(ctx, userID, custom.YearID)
	if err != nil {
		return nil, false, err
	}

	key := makeAnalyticsCacheKey("user", userID, "custom", customID, "average")
	return cached(ctx, s.cache, key, func(ctx context.Context) (*models.CustomAverageResult, error) {
		inputs, err := s.loadWorkspaces(ctx, []models.Year{*year})
		if err != nil {
			return nil, err
		}
		start := time.Now()
		avg, err := analytics.CustomAverage(*custom, inputs[0].Subjects, inputs[0].Grades)
		s.metrics.ObserveComputation("custom_average", time.Since(start))
		if err != nil {
			return nil, integrityError(err)
		}
		return &models.CustomAverageResult{ID: custom.ID, Name: custom.Name, Average: avg}, nil
	})
}

func (s *AverageService) ownedYear(ctx context.Context, userID, yearID string) (*models.Year, error) {
	year, err := s.years.FindByID(ctx, yearID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
		}
		return nil, err
	}
	if year.UserID != userID {
		// Foreign workspaces are reported as missing so ids cannot be probed.
		return nil, appErrors.Clone(appErrors.ErrNotFound, "year not found")
	}
	return year, nil
}

// loadWorkspaces fetches subjects and grades for the given years in two queries
// and splits them per year, keeping the order of years.
func (s *AverageService) loadWorkspaces(ctx context.Context, years []models.Year) ([]analytics.WorkspaceInput, error) {
	return loadWorkspaces(ctx, s.subjects, s.grades, s.metrics, years)
}

func loadWorkspaces(ctx context.Context, subjects SubjectRepository, grades GradeRepository, metrics *MetricsService, years []models.Year) ([]analytics.WorkspaceInput, error) {
	if len(years) == 0 {
		return nil, nil
	}
	ids := make([]string, len(years))
	index := make(map[string]int, len(years))
	inputs := make([]analytics.WorkspaceInput, len(years))
	for i, year := range years {
		ids[i] = year.ID
		index[year.ID] = i
		inputs[i].YearID = year.ID
	}

	start := time.Now()
	subjectRows, err := subjects.ListByYears(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	gradeRows, err := grades.ListByYears(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load grades: %w", err)
	}
	metrics.ObserveDBQuery("workspace_rows", time.Since(start))

	for _, subject := range subjectRows {
		if i, ok := index[subject.YearID]; ok {
			inputs[i].Subjects = append(inputs[i].Subjects, subject)
		}
	}
	for _, grade := range gradeRows {
		if i, ok := index[grade.YearID]; ok {
			inputs[i].Grades = append(inputs[i].Grades, grade)
		}
	}
	return inputs, nil
}

// integrityError maps engine faults onto the API error surface.
func integrityError(err error) error {
	switch {
	case errors.Is(err, analytics.ErrUnknownSubject),
		errors.Is(err, analytics.ErrUnknownParent),
		errors.Is(err, analytics.ErrDuplicateSubject),
		errors.Is(err, analytics.ErrSubjectCycle),
		errors.Is(err, analytics.ErrGradeOnDisplay),
		errors.Is(err, analytics.ErrUnsortedSeries):
		return appErrors.Wrap(err, appErrors.ErrDataIntegrity.Code, appErrors.ErrDataIntegrity.Status, appErrors.ErrDataIntegrity.Message)
	default:
		return err
	}
}
