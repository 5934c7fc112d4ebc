package analytics

import (
	"math"

	"github.com/noah-isme/grade-analytics-api/internal/models"
)

// AwardInput carries the figures the award decision list reads.
type AwardInput struct {
	Average           float64
	GradesCount       int
	GradesBelow8      int
	FirstMonthAverage float64
	SubjectAverages   []float64
	SubjectStdDevs    []float64
}

// ClassifyAward walks the ordered decision list; the first matching rule wins.
func ClassifyAward(in AwardInput) models.Award {
	switch {
	case in.Average >= 10 && in.Average <= 11 && in.GradesBelow8 >= 3:
		return models.AwardTightrope
	case in.FirstMonthAverage > 0 && in.Average > in.FirstMonthAverage+2:
		return models.AwardComeback
	case subjectSpread(in.SubjectAverages) > 5:
		return models.AwardAllIn
	case in.Average > 15:
		return models.AwardMasterclass
	case fractionOf(in.SubjectStdDevs, func(sd float64) bool { return sd > 4 }) >= 0.25:
		return models.AwardUnpredictable
	case fractionOf(in.SubjectStdDevs, func(sd float64) bool { return sd < 2 }) >= 0.5:
		return models.AwardPrecision
	case in.GradesCount >= 40:
		return models.AwardLegend
	case in.GradesCount >= 15:
		return models.AwardAvermatien
	default:
		return models.AwardTourist
	}
}

func awardInputFrom(stats *models.YearReviewStats, below8 int, firstMonthAverage float64, subjects []*subjectAccumulator) AwardInput {
	in := AwardInput{
		Average:           stats.Average,
		GradesCount:       stats.GradesCount,
		GradesBelow8:      below8,
		FirstMonthAverage: firstMonthAverage,
		SubjectAverages:   make([]float64, len(subjects)),
		SubjectStdDevs:    make([]float64, len(subjects)),
	}
	for i, acc := range subjects {
		mean := acc.average.value()
		in.SubjectAverages[i] = mean
		in.SubjectStdDevs[i] = populationStdDev(acc.points, mean)
	}
	return in
}

// populationStdDev measures the spread of raw 0-20 values around the
// subject's coefficient-weighted mean.
func populationStdDev(points []progressPoint, mean float64) float64 {
	if len(points) == 0 {
		return 0
	}
	var squares float64
	for _, p := range points {
		delta := p.on20 - mean
		squares += delta * delta
	}
	return math.Sqrt(squares / float64(len(points)))
}

func subjectSpread(averages []float64) float64 {
	if len(averages) == 0 {
		return 0
	}
	best, worst := averages[0], averages[0]
	for _, avg := range averages[1:] {
		best = math.Max(best, avg)
		worst = math.Min(worst, avg)
	}
	return best - worst
}

func fractionOf(values []float64, match func(float64) bool) float64 {
	if len(values) == 0 {
		return 0
	}
	hits := 0
	for _, v := range values {
		if match(v) {
			hits++
		}
	}
	return float64(hits) / float64(len(values))
}
