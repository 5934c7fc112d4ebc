package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/grade-analytics-api/internal/analytics"
	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
	"github.com/noah-isme/grade-analytics-api/pkg/jobs"
)

const warmJobType = "year_review.warm"

// ReviewGradeRepository describes the window queries of the year in review.
type ReviewGradeRepository interface {
	ListForReview(ctx context.Context, userID string, from, until time.Time) ([]models.ReviewGrade, error)
	Population(ctx context.Context, from, until time.Time) ([]models.PopulationEntry, error)
}

// UserAverager yields a user's cross-workspace average.
type UserAverager interface {
	UserAverage(ctx context.Context, userID string) (*models.UserAverage, bool, error)
}

// YearReviewConfig pins the review window and sizes the warmup pool.
type YearReviewConfig struct {
	From        time.Time
	To          time.Time
	WarmWorkers int
	WarmRetries int
	RetryDelay  time.Duration
}

// WarmResult lists the jobs accepted by a warmup request.
type WarmResult struct {
	JobIDs   []string `json:"job_ids"`
	Accepted int      `json:"accepted"`
	Rejected int      `json:"rejected"`
}

// YearReviewService computes the year in review and precomputes it in the background.
type YearReviewService struct {
	grades   ReviewGradeRepository
	averages UserAverager
	cfg      YearReviewConfig
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	queue    *jobs.Queue
}

// NewYearReviewService constructs the service and its warmup queue. Call Start before Warm.
func NewYearReviewService(grades ReviewGradeRepository, averages UserAverager, cfg YearReviewConfig, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *YearReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &YearReviewService{grades: grades, averages: averages, cfg: cfg, cache: cache, metrics: metrics, logger: logger}
	s.queue = jobs.NewQueue("year-review-warm", s.handleWarm, jobs.QueueConfig{
		Workers:    cfg.WarmWorkers,
		BufferSize: 256,
		MaxRetries: cfg.WarmRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		OnResult: func(job jobs.Job, err error) {
			if err != nil {
				metrics.RecordWarmJob("failed")
				return
			}
			metrics.RecordWarmJob("succeeded")
		},
	})
	return s
}

// Start launches the warmup workers.
func (s *YearReviewService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the warmup workers.
func (s *YearReviewService) Stop() {
	s.queue.Stop()
}

// Review returns the year in review of one user over the configured window.
// A user without any grade in the window gets appErrors.ErrNoData.
func (s *YearReviewService) Review(ctx context.Context, userID string) (*models.YearReviewStats, bool, error) {
	return cached(ctx, s.cache, s.cacheKey(userID), func(ctx context.Context) (*models.YearReviewStats, error) {
		return s.compute(ctx, userID)
	})
}

// Warm schedules a background recomputation for each user. An empty list warms
// every user active in the window. Jobs that do not fit the queue are counted as rejected.
func (s *YearReviewService) Warm(ctx context.Context, userIDs []string) (*WarmResult, error) {
	if len(userIDs) == 0 {
		population, err := s.grades.Population(ctx, s.from(), s.until())
		if err != nil {
			return nil, err
		}
		for _, entry := range population {
			userIDs = append(userIDs, entry.UserID)
		}
	}

	result := &WarmResult{JobIDs: make([]string, 0, len(userIDs))}
	for _, userID := range userIDs {
		id, err := s.queue.TryEnqueue(jobs.Job{Type: warmJobType, Payload: userID})
		if err != nil {
			if errors.Is(err, jobs.ErrQueueFull) {
				result.Rejected++
				continue
			}
			return nil, err
		}
		result.JobIDs = append(result.JobIDs, id)
		result.Accepted++
		s.metrics.RecordWarmJob("enqueued")
	}
	s.logger.Info("year review warmup scheduled", zap.Int("accepted", result.Accepted), zap.Int("rejected", result.Rejected))
	return result, nil
}

func (s *YearReviewService) handleWarm(ctx context.Context, job jobs.Job) error {
	userID, ok := job.Payload.(string)
	if !ok {
		return fmt.Errorf("unexpected warm payload %T", job.Payload)
	}
	stats, err := s.compute(ctx, userID)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoData) {
			return nil
		}
		return err
	}
	return s.cache.Set(ctx, s.cacheKey(userID), stats, 0)
}

func (s *YearReviewService) compute(ctx context.Context, userID string) (*models.YearReviewStats, error) {
	from, until := s.from(), s.until()

	begin := time.Now()
	grades, err := s.grades.ListForReview(ctx, userID, from, until)
	if err != nil {
		return nil, err
	}
	population, err := s.grades.Population(ctx, from, until)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("year_review_rows", time.Since(begin))

	begin = time.Now()
	stats, ok := analytics.ComputeYearReview(analytics.YearReviewInput{
		UserID:     userID,
		From:       s.cfg.From,
		To:         s.cfg.To,
		Grades:     grades,
		Population: population,
	})
	s.metrics.ObserveComputation("year_review", time.Since(begin))
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNoData, "no grades in the year in review window")
	}

	if s.averages != nil {
		overall, _, err := s.averages.UserAverage(ctx, userID)
		if err != nil {
			return nil, err
		}
		stats.OverallAverage = overall.Average
	}
	return stats, nil
}

func (s *YearReviewService) from() time.Time {
	return analytics.StartOfDayUTC(s.cfg.From)
}

// until is the exclusive upper bound: midnight after the last window day.
func (s *YearReviewService) until() time.Time {
	return analytics.StartOfDayUTC(s.cfg.To).AddDate(0, 0, 1)
}

func (s *YearReviewService) cacheKey(userID string) string {
	return makeAnalyticsCacheKey("user", userID, "year-review", s.from().Format("2006-01-02"), s.cfg.To.Format("2006-01-02"))
}
