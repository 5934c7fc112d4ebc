package models

import "time"

// TimelineBucket is one UTC day of a multi-series timeline; index i of New and
// Cumulative refers to the i-th input series.
type TimelineBucket struct {
	Date       time.Time `json:"date"`
	New        []int     `json:"new"`
	Cumulative []int     `json:"cumulative"`
}

// GrowthPoint is one day of the platform growth chart.
type GrowthPoint struct {
	Date        string `json:"date"`
	Users       int    `json:"users"`
	NewUsers    int    `json:"new_users"`
	Grades      int    `json:"grades"`
	NewGrades   int    `json:"new_grades"`
	Subjects    int    `json:"subjects"`
	NewSubjects int    `json:"new_subjects"`
}

// GradeTimelinePoint is one day of a single user's grade growth chart.
type GradeTimelinePoint struct {
	Date      string `json:"date"`
	Grades    int    `json:"grades"`
	NewGrades int    `json:"new_grades"`
}

// Award is the gamified year in review classification.
type Award string

const (
	AwardTightrope     Award = "tightrope"
	AwardComeback      Award = "comeback"
	AwardAllIn         Award = "allin"
	AwardMasterclass   Award = "masterclass"
	AwardUnpredictable Award = "unpredictable"
	AwardPrecision     Award = "precision"
	AwardLegend        Award = "legend"
	AwardAvermatien    Award = "avermatien"
	AwardTourist       Award = "tourist"
)

// HeatmapDay counts grades passed on one calendar date.
type HeatmapDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// ActivityPeak names the busiest bucket (month or weekday).
type ActivityPeak struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// PrimeTime is the moment the running average peaked.
type PrimeTime struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"`
}

// ReviewSubject is a subject's whole-window weighted average.
type ReviewSubject struct {
	SubjectID string  `json:"subject_id"`
	Name      string  `json:"name"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

// Progression is the best first-to-last improvement inside one subject.
type Progression struct {
	SubjectID string  `json:"subject_id,omitempty"`
	Subject   string  `json:"subject"`
	Value     float64 `json:"value"`
}

// Ranking places the user among everyone who graded something in the window.
type Ranking struct {
	Rank           int `json:"rank"`
	PopulationSize int `json:"population_size"`
	Percentile     int `json:"percentile"`
}

// YearReviewStats is the full year in review payload.
type YearReviewStats struct {
	UserID          string          `json:"user_id"`
	From            string          `json:"from"`
	To              string          `json:"to"`
	GradesCount     int             `json:"grades_count"`
	TotalPoints     float64         `json:"total_points"`
	TotalOutOf      float64         `json:"total_out_of"`
	Average         float64         `json:"average"`
	OverallAverage  *float64        `json:"overall_average,omitempty"`
	Heatmap         []HeatmapDay    `json:"heatmap"`
	MostActiveMonth ActivityPeak    `json:"most_active_month"`
	MostActiveDay   ActivityPeak    `json:"most_active_day"`
	LongestStreak   int             `json:"longest_streak"`
	PrimeTime       *PrimeTime      `json:"prime_time,omitempty"`
	TopSubjects     []ReviewSubject `json:"top_subjects"`
	BestProgression Progression     `json:"best_progression"`
	Ranking         Ranking         `json:"ranking"`
	Award           Award           `json:"award"`
}

// RoleCount is one entry of the admin role distribution.
type RoleCount struct {
	Role  Role `json:"role"`
	Count int  `json:"count"`
}

// RankedUser is one row of the admin average ranking.
type RankedUser struct {
	Rank    int     `json:"rank"`
	UserID  string  `json:"user_id"`
	Average float64 `json:"average"`
}

// AdminOverview aggregates adoption and engagement statistics.
type AdminOverview struct {
	TotalUsers          int           `json:"total_users"`
	ActiveUsers         int           `json:"active_users"`
	TotalYears          int           `json:"total_years"`
	TotalSubjects       int           `json:"total_subjects"`
	TotalGrades         int           `json:"total_grades"`
	GradesPerActiveUser float64       `json:"grades_per_active_user"`
	GlobalAverage       *float64      `json:"global_average"`
	RoleDistribution    []RoleCount   `json:"role_distribution"`
	Ranking             []RankedUser  `json:"ranking"`
	Growth              []GrowthPoint `json:"growth"`
	GeneratedAt         time.Time     `json:"generated_at"`
}

// AnalyticsSystemMetrics represents system level analytics captured from instrumentation.
type AnalyticsSystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	Computations             uint64    `json:"computations"`
	WarmJobsSucceeded        uint64    `json:"warm_jobs_succeeded"`
	WarmJobsFailed           uint64    `json:"warm_jobs_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
