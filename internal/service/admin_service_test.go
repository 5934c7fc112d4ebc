package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/grade-analytics-api/internal/models"
	appErrors "github.com/noah-isme/grade-analytics-api/pkg/errors"
)

type staticGrowth struct {
	points []models.GrowthPoint
	days   int
}

func (s *staticGrowth) Growth(_ context.Context, days int) ([]models.GrowthPoint, bool, error) {
	s.days = days
	return s.points, false, nil
}

func newAdminService(book *gradebook, growth GrowthSource) *AdminService {
	repos := AdminRepositories{
		Users:         book,
		Years:         book,
		Subjects:      subjectTable{book},
		SubjectCounts: subjectTable{book},
		Grades:        gradeTable{book},
		GradeCounts:   gradeTable{book},
	}
	svc := NewAdminService(repos, growth, 3, NewCacheService(nil, nil, time.Minute, zap.NewNop(), false), NewMetricsService(), zap.NewNop())
	svc.now = func() time.Time { return at("2025-03-10T12:00:00Z") }
	return svc
}

func TestAdminServiceOverview(t *testing.T) {
	growth := &staticGrowth{points: []models.GrowthPoint{{Date: "2025-03-10", Users: 3}}}
	svc := newAdminService(twoYearBook(), growth)

	overview, _, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, overview.TotalUsers)
	assert.Equal(t, 2, overview.ActiveUsers)
	assert.Equal(t, 3, overview.TotalYears)
	assert.Equal(t, 4, overview.TotalSubjects)
	assert.Equal(t, 4, overview.TotalGrades)
	assert.InDelta(t, 2.0, overview.GradesPerActiveUser, 1e-9)

	require.NotNil(t, overview.GlobalAverage)
	assert.InDelta(t, 15.5, *overview.GlobalAverage, 1e-9)
	require.Len(t, overview.Ranking, 2)
	assert.Equal(t, 1, overview.Ranking[0].Rank)
	assert.Equal(t, "u2", overview.Ranking[0].UserID)
	assert.InDelta(t, 18.0, overview.Ranking[0].Average, 1e-9)
	assert.Equal(t, 2, overview.Ranking[1].Rank)
	assert.Equal(t, "u1", overview.Ranking[1].UserID)
	assert.InDelta(t, 13.0, overview.Ranking[1].Average, 1e-9)

	assert.Equal(t, []models.RoleCount{
		{Role: models.RoleBeta, Count: 2},
		{Role: models.RoleAdmin, Count: 1},
		{Role: models.RoleUser, Count: 1},
	}, overview.RoleDistribution)

	assert.Equal(t, growth.points, overview.Growth)
	assert.Equal(t, 0, growth.days)
	assert.Equal(t, at("2025-03-10T12:00:00Z"), overview.GeneratedAt)
}

func TestAdminServiceOverviewIntegrityFault(t *testing.T) {
	book := twoYearBook()
	book.grades = append(book.grades, gradeRow("orphan", "u2", "y3", "ghost", 1000, 2000))
	svc := newAdminService(book, nil)

	_, _, err := svc.Overview(context.Background())
	assert.ErrorIs(t, err, appErrors.ErrDataIntegrity)
}

func TestRankUsersBreaksTiesByUserID(t *testing.T) {
	twelve, fifteen := 12.0, 15.0
	users := []models.User{{ID: "b"}, {ID: "a"}, {ID: "c"}, {ID: "d"}}

	global, ranking := rankUsers(users, []*float64{&twelve, &twelve, nil, &fifteen})
	require.NotNil(t, global)
	assert.InDelta(t, 13.0, *global, 1e-9)
	assert.Equal(t, []models.RankedUser{
		{Rank: 1, UserID: "d", Average: 15},
		{Rank: 2, UserID: "a", Average: 12},
		{Rank: 3, UserID: "b", Average: 12},
	}, ranking)

	none, empty := rankUsers(users, make([]*float64, len(users)))
	assert.Nil(t, none)
	assert.Empty(t, empty)
}
