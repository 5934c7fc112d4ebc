package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/grade-analytics-api/internal/models"
	"github.com/noah-isme/grade-analytics-api/pkg/export"
)

// YearReviewer yields a user's year in review.
type YearReviewer interface {
	Review(ctx context.Context, userID string) (*models.YearReviewStats, bool, error)
}

// OverviewSource yields the admin overview.
type OverviewSource interface {
	Overview(ctx context.Context) (*models.AdminOverview, bool, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type reportRenderer interface {
	Render(report export.Report) ([]byte, error)
}

// ExportService renders analytics into downloadable documents.
type ExportService struct {
	reviews  YearReviewer
	growth   GrowthSource
	overview OverviewSource
	csv      csvRenderer
	pdf      reportRenderer
	xlsx     reportRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers fall back to the pkg/export defaults.
func NewExportService(reviews YearReviewer, growth GrowthSource, overview OverviewSource, logger *zap.Logger, csv csvRenderer, pdf, xlsx reportRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if xlsx == nil {
		xlsx = export.NewXLSXExporter()
	}
	return &ExportService{reviews: reviews, growth: growth, overview: overview, csv: csv, pdf: pdf, xlsx: xlsx, logger: logger}
}

// YearReviewPDF renders a user's year in review.
func (s *ExportService) YearReviewPDF(ctx context.Context, userID string) ([]byte, error) {
	stats, _, err := s.reviews.Review(ctx, userID)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(yearReviewReport(stats))
	if err != nil {
		return nil, fmt.Errorf("render year review pdf: %w", err)
	}
	s.logger.Debug("year review exported", zap.String("user_id", userID), zap.Int("bytes", len(payload)))
	return payload, nil
}

// GrowthCSV renders the platform growth chart.
func (s *ExportService) GrowthCSV(ctx context.Context, days int) ([]byte, error) {
	points, _, err := s.growth.Growth(ctx, days)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(growthDataset(points))
	if err != nil {
		return nil, fmt.Errorf("render growth csv: %w", err)
	}
	return payload, nil
}

// OverviewXLSX renders the admin overview as a workbook.
func (s *ExportService) OverviewXLSX(ctx context.Context) ([]byte, error) {
	overview, _, err := s.overview.Overview(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := s.xlsx.Render(overviewReport(overview))
	if err != nil {
		return nil, fmt.Errorf("render overview xlsx: %w", err)
	}
	return payload, nil
}

func yearReviewReport(stats *models.YearReviewStats) export.Report {
	report := export.Report{
		Title:    "Year in review",
		Subtitle: fmt.Sprintf("%s to %s", stats.From, stats.To),
		Summary: []export.Field{
			{Label: "Award", Value: string(stats.Award)},
			{Label: "Grades", Value: strconv.Itoa(stats.GradesCount)},
			{Label: "Points", Value: fmt.Sprintf("%s / %s", formatFloat(stats.TotalPoints), formatFloat(stats.TotalOutOf))},
			{Label: "Window average", Value: formatFloat(stats.Average)},
			{Label: "Overall average", Value: formatOptional(stats.OverallAverage)},
			{Label: "Longest streak", Value: strconv.Itoa(stats.LongestStreak)},
			{Label: "Most active month", Value: fmt.Sprintf("%s (%d)", stats.MostActiveMonth.Key, stats.MostActiveMonth.Count)},
			{Label: "Most active day", Value: fmt.Sprintf("%s (%d)", stats.MostActiveDay.Key, stats.MostActiveDay.Count)},
			{Label: "Best progression", Value: fmt.Sprintf("%s (%+.2f)", stats.BestProgression.Subject, stats.BestProgression.Value)},
			{Label: "Rank", Value: fmt.Sprintf("%d of %d (top %d%%)", stats.Ranking.Rank, stats.Ranking.PopulationSize, stats.Ranking.Percentile)},
		},
	}
	if stats.PrimeTime != nil {
		report.Summary = append(report.Summary, export.Field{Label: "Prime time", Value: fmt.Sprintf("%s (%s)", stats.PrimeTime.Date, formatFloat(stats.PrimeTime.Average))})
	}

	top := export.Dataset{Name: "Top subjects", Headers: []string{"Subject", "Average", "Grades"}}
	for _, subject := range stats.TopSubjects {
		top.Rows = append(top.Rows, map[string]string{
			"Subject": subject.Name,
			"Average": formatFloat(subject.Average),
			"Grades":  strconv.Itoa(subject.Count),
		})
	}
	report.Tables = append(report.Tables, top)
	return report
}

func growthDataset(points []models.GrowthPoint) export.Dataset {
	data := export.Dataset{
		Name:    "Growth",
		Headers: []string{"date", "users", "new_users", "grades", "new_grades", "subjects", "new_subjects"},
		Rows:    make([]map[string]string, 0, len(points)),
	}
	for _, p := range points {
		data.Rows = append(data.Rows, map[string]string{
			"date":         p.Date,
			"users":        strconv.Itoa(p.Users),
			"new_users":    strconv.Itoa(p.NewUsers),
			"grades":       strconv.Itoa(p.Grades),
			"new_grades":   strconv.Itoa(p.NewGrades),
			"subjects":     strconv.Itoa(p.Subjects),
			"new_subjects": strconv.Itoa(p.NewSubjects),
		})
	}
	return data
}

func overviewReport(overview *models.AdminOverview) export.Report {
	report := export.Report{
		Title: "Admin overview",
		Summary: []export.Field{
			{Label: "Generated at", Value: overview.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{Label: "Total users", Value: strconv.Itoa(overview.TotalUsers)},
			{Label: "Active users", Value: strconv.Itoa(overview.ActiveUsers)},
			{Label: "Total years", Value: strconv.Itoa(overview.TotalYears)},
			{Label: "Total subjects", Value: strconv.Itoa(overview.TotalSubjects)},
			{Label: "Total grades", Value: strconv.Itoa(overview.TotalGrades)},
			{Label: "Grades per active user", Value: formatFloat(overview.GradesPerActiveUser)},
			{Label: "Global average", Value: formatOptional(overview.GlobalAverage)},
		},
	}

	roles := export.Dataset{Name: "Roles", Headers: []string{"role", "count"}}
	for _, rc := range overview.RoleDistribution {
		roles.Rows = append(roles.Rows, map[string]string{"role": string(rc.Role), "count": strconv.Itoa(rc.Count)})
	}
	ranking := export.Dataset{Name: "Ranking", Headers: []string{"rank", "user_id", "average"}}
	for _, ru := range overview.Ranking {
		ranking.Rows = append(ranking.Rows, map[string]string{"rank": strconv.Itoa(ru.Rank), "user_id": ru.UserID, "average": formatFloat(ru.Average)})
	}
	report.Tables = append(report.Tables, roles, ranking, growthDataset(overview.Growth))
	return report
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return formatFloat(*v)
}
