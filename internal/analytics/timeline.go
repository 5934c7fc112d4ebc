package analytics

import (
	"fmt"
	"time"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

const (
	day        = 24 * time.Hour
	dateLayout = "2006-01-02"
)

// Series is one ascending stream of creation times plus the number of events
// that happened strictly before the timeline start.
type Series struct {
	Events   []time.Time
	Baseline int
}

// StartOfDayUTC truncates t to midnight UTC.
func StartOfDayUTC(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// BuildTimeline buckets every series into days consecutive UTC days starting
// at start. Each series keeps a monotonic cursor, so the whole build is a
// single linear merge. Events earlier than start are already part of the
// baseline and are stepped over.
func BuildTimeline(start time.Time, days int, series ...Series) ([]models.TimelineBucket, error) {
	if days <= 0 {
		return []models.TimelineBucket{}, nil
	}
	for i, s := range series {
		for j := 1; j < len(s.Events); j++ {
			if s.Events[j].Before(s.Events[j-1]) {
				return nil, fmt.Errorf("%w: series %d at index %d", ErrUnsortedSeries, i, j)
			}
		}
	}

	origin := StartOfDayUTC(start)
	cursors := make([]int, len(series))
	running := make([]int, len(series))
	for i, s := range series {
		running[i] = s.Baseline
		for cursors[i] < len(s.Events) && s.Events[cursors[i]].Before(origin) {
			cursors[i]++
		}
	}

	buckets := make([]models.TimelineBucket, 0, days)
	for d := 0; d < days; d++ {
		dayStart := origin.AddDate(0, 0, d)
		dayEnd := dayStart.Add(day)
		bucket := models.TimelineBucket{
			Date:       dayStart,
			New:        make([]int, len(series)),
			Cumulative: make([]int, len(series)),
		}
		for i, s := range series {
			for cursors[i] < len(s.Events) && s.Events[cursors[i]].Before(dayEnd) {
				bucket.New[i]++
				cursors[i]++
			}
			running[i] += bucket.New[i]
			bucket.Cumulative[i] = running[i]
		}
		buckets = append(buckets, bucket)
	}
	return buckets, nil
}

// BuildGrowthTimeline is the three-series form used by the admin growth chart.
func BuildGrowthTimeline(start time.Time, days int, users, grades, subjects Series) ([]models.GrowthPoint, error) {
	buckets, err := BuildTimeline(start, days, users, grades, subjects)
	if err != nil {
		return nil, err
	}
	points := make([]models.GrowthPoint, len(buckets))
	for i, b := range buckets {
		points[i] = models.GrowthPoint{
			Date:        b.Date.Format(dateLayout),
			Users:       b.Cumulative[0],
			NewUsers:    b.New[0],
			Grades:      b.Cumulative[1],
			NewGrades:   b.New[1],
			Subjects:    b.Cumulative[2],
			NewSubjects: b.New[2],
		}
	}
	return points, nil
}

// BuildGradeTimeline is the single-series form used for one user's grades.
func BuildGradeTimeline(start time.Time, days int, grades Series) ([]models.GradeTimelinePoint, error) {
	buckets, err := BuildTimeline(start, days, grades)
	if err != nil {
		return nil, err
	}
	points := make([]models.GradeTimelinePoint, len(buckets))
	for i, b := range buckets {
		points[i] = models.GradeTimelinePoint{
			Date:      b.Date.Format(dateLayout),
			Grades:    b.Cumulative[0],
			NewGrades: b.New[0],
		}
	}
	return points, nil
}
