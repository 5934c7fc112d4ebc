package service

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/me/average", http.StatusOK, 4*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/me/average", http.StatusOK, 2*time.Millisecond)
	m.ObserveDBQuery("workspace_rows", 10*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordWarmJob("enqueued")
	m.RecordWarmJob("enqueued")
	m.RecordWarmJob("succeeded")
	m.RecordWarmJob("failed")

	snapshot := m.Snapshot()
	assert.Equal(t, uint64(2), snapshot.RequestsTotal)
	assert.InDelta(t, 3.0, snapshot.AverageRequestDurationMs, 1e-9)
	assert.Equal(t, uint64(1), snapshot.DBQueryCount)
	assert.InDelta(t, 10.0, snapshot.AverageDBQueryDurationMs, 1e-9)
	assert.InDelta(t, 1.0/3.0, snapshot.CacheHitRatio, 1e-9)
	assert.Equal(t, uint64(1), snapshot.WarmJobsSucceeded)
	assert.Equal(t, uint64(1), snapshot.WarmJobsFailed)
}

func TestMetricsServiceExposition(t *testing.T) {
	m := NewMetricsService()
	m.ObserveComputation("year_review", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `grade_analytics_computation_seconds_count{kind="year_review"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestNilMetricsServiceIsNoop(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordWarmJob("failed")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Zero(t, m.Snapshot().RequestsTotal)
}

func TestMetricsServiceCountsComputations(t *testing.T) {
	metrics := NewMetricsService()
	metrics.ObserveComputation("year_review", time.Millisecond)
	metrics.ObserveComputation("growth_timeline", 2*time.Millisecond)
	metrics.RecordWarmJob("succeeded")

	assert.Equal(t, uint64(2), metrics.Snapshot().Computations)

	var nilMetrics *MetricsService
	nilMetrics.ObserveComputation("noop", time.Millisecond)
	assert.Zero(t, nilMetrics.Snapshot().Computations)
}
