package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/grade-analytics-api/internal/analytics"
	"github.com/noah-isme/grade-analytics-api/internal/models"
)

// UserLister lists every account.
type UserLister interface {
	List(ctx context.Context) ([]models.User, error)
}

// YearLister lists every workspace.
type YearLister interface {
	ListAll(ctx context.Context) ([]models.Year, error)
}

// SubjectCounter counts subjects.
type SubjectCounter interface {
	Count(ctx context.Context) (int, error)
}

// GradeCounter counts grades and the users owning them.
type GradeCounter interface {
	Count(ctx context.Context) (int, error)
	CountActiveUsers(ctx context.Context) (int, error)
}

// GrowthSource yields the platform growth chart.
type GrowthSource interface {
	Growth(ctx context.Context, days int) ([]models.GrowthPoint, bool, error)
}

// AdminRepositories groups the readers the admin overview needs.
type AdminRepositories struct {
	Users         UserLister
	Years         YearLister
	Subjects      SubjectRepository
	SubjectCounts SubjectCounter
	Grades        GradeRepository
	GradeCounts   GradeCounter
}

// AdminService assembles adoption and engagement statistics for the admin console.
type AdminService struct {
	repos   AdminRepositories
	growth  GrowthSource
	workers int
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
	now     func() time.Time
}

// NewAdminService constructs an admin service. workers bounds the per-user average fan-out.
func NewAdminService(repos AdminRepositories, growth GrowthSource, workers int, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *AdminService {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{repos: repos, growth: growth, workers: workers, cache: cache, metrics: metrics, logger: logger, now: time.Now}
}

// Overview returns the admin statistics snapshot.
func (s *AdminService) Overview(ctx context.Context) (*models.AdminOverview, bool, error) {
	return cached(ctx, s.cache, makeAnalyticsCacheKey("admin", "overview"), s.compute)
}

func (s *AdminService) compute(ctx context.Context) (*models.AdminOverview, error) {
	begin := time.Now()
	users, err := s.repos.Users.List(ctx)
	if err != nil {
		return nil, err
	}
	years, err := s.repos.Years.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	totalSubjects, err := s.repos.SubjectCounts.Count(ctx)
	if err != nil {
		return nil, err
	}
	totalGrades, err := s.repos.GradeCounts.Count(ctx)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.repos.GradeCounts.CountActiveUsers(ctx)
	if err != nil {
		return nil, err
	}
	workspaces, err := loadWorkspaces(ctx, s.repos.Subjects, s.repos.Grades, s.metrics, years)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveDBQuery("admin_overview_rows", time.Since(begin))

	averages, err := s.userAverages(ctx, users, years, workspaces)
	if err != nil {
		return nil, err
	}

	overview := &models.AdminOverview{
		TotalUsers:       len(users),
		ActiveUsers:      activeUsers,
		TotalYears:       len(years),
		TotalSubjects:    totalSubjects,
		TotalGrades:      totalGrades,
		RoleDistribution: roleDistribution(users),
		GeneratedAt:      s.now().UTC(),
	}
	if activeUsers > 0 {
		overview.GradesPerActiveUser = float64(totalGrades) / float64(activeUsers)
	}
	overview.GlobalAverage, overview.Ranking = rankUsers(users, averages)

	if s.growth != nil {
		growth, _, err := s.growth.Growth(ctx, 0)
		if err != nil {
			return nil, err
		}
		overview.Growth = growth
	}
	return overview, nil
}

// userAverages computes every user's cross-workspace average concurrently.
// averages[i] belongs to users[i].
func (s *AdminService) userAverages(ctx context.Context, users []models.User, years []models.Year, workspaces []analytics.WorkspaceInput) ([]*float64, error) {
	byUser := make(map[string][]analytics.WorkspaceInput, len(users))
	for i, year := range years {
		byUser[year.UserID] = append(byUser[year.UserID], workspaces[i])
	}

	averages := make([]*float64, len(users))
	begin := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, user := range users {
		inputs := byUser[user.ID]
		if len(inputs) == 0 {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			avg, _, err := analytics.CrossWorkspaceAverage(inputs)
			if err != nil {
				return integrityError(err)
			}
			averages[i] = avg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.metrics.ObserveComputation("admin_user_averages", time.Since(begin))
	return averages, nil
}

// roleDistribution counts roles in first-seen order. Users without a role count as plain users.
func roleDistribution(users []models.User) []models.RoleCount {
	var out []models.RoleCount
	index := make(map[models.Role]int)
	add := func(role models.Role) {
		if i, ok := index[role]; ok {
			out[i].Count++
			return
		}
		index[role] = len(out)
		out = append(out, models.RoleCount{Role: role, Count: 1})
	}
	for _, user := range users {
		if len(user.Roles) == 0 {
			add(models.RoleUser)
			continue
		}
		for _, role := range user.Roles {
			add(role)
		}
	}
	return out
}

// rankUsers returns the mean of the non-null user averages and the ranking
// ordered by average descending, then user id ascending.
func rankUsers(users []models.User, averages []*float64) (*float64, []models.RankedUser) {
	ranking := make([]models.RankedUser, 0, len(users))
	var sum float64
	for i, avg := range averages {
		if avg == nil {
			continue
		}
		sum += *avg
		ranking = append(ranking, models.RankedUser{UserID: users[i].ID, Average: *avg})
	}
	if len(ranking) == 0 {
		return nil, ranking
	}
	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Average != ranking[j].Average {
			return ranking[i].Average > ranking[j].Average
		}
		return ranking[i].UserID < ranking[j].UserID
	})
	for i := range ranking {
		ranking[i].Rank = i + 1
	}
	global := sum / float64(len(ranking))
	return &global, ranking
}
