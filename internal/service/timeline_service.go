package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/grade-analytics-api/internal/analytics"
	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
)

// CreationSeriesSource yields ascending creation times inside [since, until) and the count before since.
type CreationSeriesSource interface {
	CreationSeries(ctx context.Context, since, until time.Time) ([]time.Time, int, error)
}

// UserGradeSeriesSource yields one user's grade creation times.
type UserGradeSeriesSource interface {
	UserCreationSeries(ctx context.Context, userID string, since, until time.Time) ([]time.Time, int, error)
}

// TimelineConfig bounds timeline requests.
type TimelineConfig struct {
	DefaultDays int
	MaxDays     int
}

// TimelineService builds day-bucketed growth charts.
type TimelineService struct {
	users      CreationSeriesSource
	grades     CreationSeriesSource
	subjects   CreationSeriesSource
	userGrades UserGradeSeriesSource
	cfg        TimelineConfig
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	now        func() time.Time
}

// NewTimelineService constructs a timeline service.
func NewTimelineService(users, grades, subjects CreationSeriesSource, userGrades UserGradeSeriesSource, cfg TimelineConfig, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *TimelineService {
	if cfg.DefaultDays <= 0 {
		cfg.DefaultDays = 30
	}
	if cfg.MaxDays < cfg.DefaultDays {
		cfg.MaxDays = cfg.DefaultDays
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimelineService{
		users:      users,
		grades:     grades,
		subjects:   subjects,
		userGrades: userGrades,
		cfg:        cfg,
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// Window resolves a requested day count into the [start, until) window ending today (UTC).
func (s *TimelineService) Window(days int) (time.Time, time.Time, int, error) {
	if days == 0 {
		days = s.cfg.DefaultDays
	}
	if days < 1 || days > s.cfg.MaxDays {
		return time.Time{}, time.Time{}, 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("days must be between 1 and %d", s.cfg.MaxDays))
	}
	until := analytics.StartOfDayUTC(s.now()).AddDate(0, 0, 1)
	start := until.AddDate(0, 0, -days)
	return start, until, days, nil
}

// Growth returns the platform growth chart for users, grades and subjects.
func (s *TimelineService) Growth(ctx context.Context, days int) ([]models.GrowthPoint, bool, error) {
	start, until, days, err := s.Window(days)
	if err != nil {
		return nil, false, err
	}
	key := makeAnalyticsCacheKey("growth", start.Format("2006-01-02"), strconv.Itoa(days))
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.GrowthPoint, error) {
		users, err := s.series(ctx, "users", s.users, start, until)
		if err != nil {
			return nil, err
		}
		grades, err := s.series(ctx, "grades", s.grades, start, until)
		if err != nil {
			return nil, err
		}
		subjects, err := s.series(ctx, "subjects", s.subjects, start, until)
		if err != nil {
			return nil, err
		}

		begin := time.Now()
		points, err := analytics.BuildGrowthTimeline(start, days, users, grades, subjects)
		s.metrics.ObserveComputation("growth_timeline", time.Since(begin))
		if err != nil {
			return nil, integrityError(err)
		}
		return points, nil
	})
}

// UserGrades returns one user's grade growth chart.
func (s *TimelineService) UserGrades(ctx context.Context, userID string, days int) ([]models.GradeTimelinePoint, bool, error) {
	start, until, days, err := s.Window(days)
	if err != nil {
		return nil, false, err
	}
	key := makeAnalyticsCacheKey("user", userID, "timeline", start.Format("2006-01-02"), strconv.Itoa(days))
	return cached(ctx, s.cache, key, func(ctx context.Context) ([]models.GradeTimelinePoint, error) {
		begin := time.Now()
		events, baseline, err := s.userGrades.UserCreationSeries(ctx, userID, start, until)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveDBQuery("timeline_user_grades", time.Since(begin))

		begin = time.Now()
		points, err := analytics.BuildGradeTimeline(start, days, analytics.Series{Events: events, Baseline: baseline})
		s.metrics.ObserveComputation("grade_timeline", time.Since(begin))
		if err != nil {
			return nil, integrityError(err)
		}
		return points, nil
	})
}

func (s *TimelineService) series(ctx context.Context, label string, source CreationSeriesSource, start, until time.Time) (analytics.Series, error) {
	begin := time.Now()
	events, baseline, err := source.CreationSeries(ctx, start, until)
	if err != nil {
		return analytics.Series{}, fmt.Errorf("load %s series: %w", label, err)
	}
	s.metrics.ObserveDBQuery("timeline_"+label, time.Since(begin))
	return analytics.Series{Events: events, Baseline: baseline}, nil
}
