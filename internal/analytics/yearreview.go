package analytics

import (
	"sort"
	"time"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

const (
	monthLayout = "2006-01"
	topSubjects = 3
)

// YearReviewInput is everything the year in review needs: the user's grades,
// the inclusive [From, To] date window and the window grade count of every user.
type YearReviewInput struct {
	UserID     string
	From       time.Time
	To         time.Time
	Grades     []models.ReviewGrade
	Population []models.PopulationEntry
}

// runningAverage is a coefficient-weighted mean on the 0-20 scale.
type runningAverage struct {
	weightedSum float64
	totalWeight float64
}

func (r *runningAverage) add(on20, coefficient float64) {
	r.weightedSum += on20 * coefficient
	r.totalWeight += coefficient
}

func (r *runningAverage) value() float64 {
	if r.totalWeight == 0 {
		return 0
	}
	return r.weightedSum / r.totalWeight
}

// streakTracker counts consecutive strict increases of the running average.
// The first observation only seeds the comparison.
type streakTracker struct {
	previous float64
	seeded   bool
	current  int
	longest  int
}

func (s *streakTracker) observe(avg float64) {
	if s.seeded {
		if avg > s.previous {
			s.current++
			if s.current > s.longest {
				s.longest = s.current
			}
		} else {
			s.current = 0
		}
	}
	s.previous = avg
	s.seeded = true
}

type progressPoint struct {
	on20     float64
	passedAt time.Time
}

type subjectAccumulator struct {
	id      string
	name    string
	average runningAverage
	points  []progressPoint
}

// ComputeYearReview runs the year in review over the grades passed inside the
// window. The boolean is false when the user has no grade in the window.
func ComputeYearReview(in YearReviewInput) (*models.YearReviewStats, bool) {
	from := StartOfDayUTC(in.From)
	until := StartOfDayUTC(in.To).Add(day)

	grades := make([]models.ReviewGrade, 0, len(in.Grades))
	for _, g := range in.Grades {
		if g.PassedAt.Before(from) || !g.PassedAt.Before(until) {
			continue
		}
		grades = append(grades, g)
	}
	if len(grades) == 0 {
		return nil, false
	}
	sort.SliceStable(grades, func(i, j int) bool { return grades[i].PassedAt.Before(grades[j].PassedAt) })

	stats := &models.YearReviewStats{
		UserID:      in.UserID,
		From:        from.Format(dateLayout),
		To:          StartOfDayUTC(in.To).Format(dateLayout),
		GradesCount: len(grades),
	}

	var (
		overall    runningAverage
		firstMonth runningAverage
		streak     streakTracker
		below8     int
		heatmap    = newOrderedCounter()
		months     = newOrderedCounter()
		weekdays   = newOrderedCounter()
		subjects   = make(map[string]*subjectAccumulator)
		order      []string
	)
	firstMonthCutoff := grades[0].PassedAt.AddDate(0, 1, 0)

	for _, g := range grades {
		stats.TotalPoints += float64(g.Value) / 100
		stats.TotalOutOf += float64(g.OutOf) / 100

		passed := g.PassedAt.UTC()
		heatmap.inc(passed.Format(dateLayout))
		months.inc(passed.Format(monthLayout))
		weekdays.inc(passed.Weekday().String())

		if g.OutOf <= 0 {
			continue
		}
		on20 := float64(g.Value) / float64(g.OutOf) * Scale
		coefficient := float64(g.Coefficient) / 100
		if on20 < 8 {
			below8++
		}

		overall.add(on20, coefficient)
		current := overall.value()
		streak.observe(current)
		if stats.PrimeTime == nil || current > stats.PrimeTime.Average {
			stats.PrimeTime = &models.PrimeTime{Date: passed.Format(dateLayout), Average: current}
		}
		if !g.PassedAt.After(firstMonthCutoff) {
			firstMonth.add(on20, coefficient)
		}

		acc, ok := subjects[g.SubjectID]
		if !ok {
			acc = &subjectAccumulator{id: g.SubjectID, name: g.SubjectName}
			subjects[g.SubjectID] = acc
			order = append(order, g.SubjectID)
		}
		acc.average.add(on20, coefficient)
		acc.points = append(acc.points, progressPoint{on20: on20, passedAt: g.PassedAt})
	}

	stats.Average = overall.value()
	stats.LongestStreak = streak.longest

	stats.Heatmap = make([]models.HeatmapDay, 0, len(heatmap.keys))
	heatmap.each(func(key string, count int) {
		stats.Heatmap = append(stats.Heatmap, models.HeatmapDay{Date: key, Count: count})
	})
	stats.MostActiveMonth.Key, stats.MostActiveMonth.Count = months.max()
	stats.MostActiveDay.Key, stats.MostActiveDay.Count = weekdays.max()

	accumulators := make([]*subjectAccumulator, len(order))
	for i, id := range order {
		accumulators[i] = subjects[id]
	}
	stats.TopSubjects = rankSubjects(accumulators)
	stats.BestProgression = bestProgression(accumulators)

	own := 0
	for _, entry := range in.Population {
		if entry.UserID == in.UserID {
			own = entry.GradeCount
		}
	}
	if own == 0 {
		own = len(grades)
	}
	stats.Ranking = RankByGradeCount(in.UserID, own, in.Population)

	stats.Award = ClassifyAward(awardInputFrom(stats, below8, firstMonth.value(), accumulators))
	return stats, true
}

// rankSubjects orders subjects by descending average; equal averages keep
// first-seen order.
func rankSubjects(accumulators []*subjectAccumulator) []models.ReviewSubject {
	ranked := make([]models.ReviewSubject, len(accumulators))
	for i, acc := range accumulators {
		ranked[i] = models.ReviewSubject{
			SubjectID: acc.id,
			Name:      acc.name,
			Average:   acc.average.value(),
			Count:     len(acc.points),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Average > ranked[j].Average })
	if len(ranked) > topSubjects {
		ranked = ranked[:topSubjects]
	}
	return ranked
}

// bestProgression picks the largest last-minus-first difference among subjects
// with at least two grades. The difference may be negative.
func bestProgression(accumulators []*subjectAccumulator) models.Progression {
	best := models.Progression{Subject: "N/A"}
	found := false
	for _, acc := range accumulators {
		if len(acc.points) < 2 {
			continue
		}
		points := append([]progressPoint(nil), acc.points...)
		sort.SliceStable(points, func(i, j int) bool { return points[i].passedAt.Before(points[j].passedAt) })
		diff := points[len(points)-1].on20 - points[0].on20
		if !found || diff > best.Value {
			best = models.Progression{SubjectID: acc.id, Subject: acc.name, Value: diff}
			found = true
		}
	}
	return best
}

// RankByGradeCount ranks a user by window grade count against every user with
// at least one grade. Ties share the better rank. A population of one always
// yields percentile 1.
func RankByGradeCount(userID string, count int, population []models.PopulationEntry) models.Ranking {
	size := 0
	ahead := 0
	present := false
	for _, entry := range population {
		if entry.GradeCount < 1 {
			continue
		}
		size++
		if entry.UserID == userID {
			present = true
			continue
		}
		if entry.GradeCount > count {
			ahead++
		}
	}
	if !present && count > 0 {
		size++
	}
	if size == 0 {
		return models.Ranking{}
	}

	rank := ahead + 1
	percentile := 1
	if size > 1 {
		percentile = (rank*100 + size - 1) / size
	}
	return models.Ranking{Rank: rank, PopulationSize: size, Percentile: percentile}
}
