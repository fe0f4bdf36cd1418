package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slms-api/internal/models"
	"github.com/noah-isme/slms-api/internal/risk"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type fakeRoster struct {
	students []models.Student
	err      error
}

func (f *fakeRoster) ListAll(ctx context.Context) ([]models.Student, error) {
	return f.students, f.err
}

type studentStats struct {
	percent      int
	windowLeaves int
	monthLeaves  int
}

type fakeStudentMetrics struct {
	stats map[string]studentStats
}

func (f *fakeStudentMetrics) AttendancePercent(ctx context.Context, studentID string) (int, error) {
	return f.stats[studentID].percent, nil
}

func (f *fakeStudentMetrics) MonthlyLeaveCount(ctx context.Context, studentID string) (int, error) {
	return f.stats[studentID].monthLeaves, nil
}

func (f *fakeStudentMetrics) ApprovedLeavesInWindow(ctx context.Context, studentID string, windowDays int) ([]models.LeaveRequest, error) {
	n := f.stats[studentID].windowLeaves
	leaves := make([]models.LeaveRequest, n)
	return leaves, nil
}

type fakeCacheStore struct {
	data map[string][]byte
	gets int
	sets int
}

func (f *fakeCacheStore) Get(ctx context.Context, key string, dest interface{}) error {
	f.gets++
	raw, ok := f.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheStore) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCacheStore) DeleteByPattern(ctx context.Context, pattern string) error {
	f.data = map[string][]byte{}
	return nil
}

func newCohortService(roster *fakeRoster, metrics *fakeStudentMetrics, store *fakeCacheStore) *CohortService {
	var cache *CacheService
	if store != nil {
		cache = NewCacheService(store, nil, time.Minute, nil, true)
	} else {
		cache = NewCacheService(nil, nil, time.Minute, nil, false)
	}
	return NewCohortService(CohortServiceParams{
		Students: roster,
		Metrics:  metrics,
		Cache:    cache,
	})
}

func TestAnalyzeSortsByDescendingScore(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: "safe", FullName: "Safe Student", RollNumber: "01"},
		{ID: "critical", FullName: "Critical Student", RollNumber: "02"},
		{ID: "monitor", FullName: "Monitor Student", RollNumber: "03"},
	}}
	metrics := &fakeStudentMetrics{stats: map[string]studentStats{
		"safe":     {percent: 95, windowLeaves: 0},
		"critical": {percent: 50, windowLeaves: 6},
		"monitor":  {percent: 80, windowLeaves: 1},
	}}
	svc := newCohortService(roster, metrics, nil)

	report, cacheHit, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.False(t, cacheHit)
	require.Len(t, report.Students, 3)

	assert.Equal(t, "critical", report.Students[0].StudentID)
	assert.Equal(t, "monitor", report.Students[1].StudentID)
	assert.Equal(t, "safe", report.Students[2].StudentID)
	for i := 1; i < len(report.Students); i++ {
		assert.GreaterOrEqual(t, report.Students[i-1].RiskScore, report.Students[i].RiskScore)
	}
}

func TestAnalyzeBucketCountsSumToTotal(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"},
	}}
	metrics := &fakeStudentMetrics{stats: map[string]studentStats{
		"a": {percent: 50, windowLeaves: 6}, // critical
		"b": {percent: 65, windowLeaves: 2}, // at risk
		"c": {percent: 80, windowLeaves: 1}, // monitor
		"d": {percent: 95, windowLeaves: 0}, // safe
	}}
	svc := newCohortService(roster, metrics, nil)

	report, _, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.TotalStudents)
	assert.Equal(t, report.TotalStudents, report.Critical+report.AtRisk+report.Monitor+report.Safe)
	assert.Equal(t, 1, report.Critical)
	assert.Equal(t, 1, report.Safe)
}

func TestAnalyzeEmptyRoster(t *testing.T) {
	svc := newCohortService(&fakeRoster{}, &fakeStudentMetrics{}, nil)

	report, _, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, report.TotalStudents)
	assert.Empty(t, report.Students)
}

func TestAnalyzeStableOrderForEqualScores(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: "r1", RollNumber: "01"},
		{ID: "r2", RollNumber: "02"},
		{ID: "r3", RollNumber: "03"},
	}}
	metrics := &fakeStudentMetrics{stats: map[string]studentStats{
		"r1": {percent: 95},
		"r2": {percent: 95},
		"r3": {percent: 95},
	}}
	svc := newCohortService(roster, metrics, nil)

	report, _, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "r1", report.Students[0].StudentID)
	assert.Equal(t, "r2", report.Students[1].StudentID)
	assert.Equal(t, "r3", report.Students[2].StudentID)
}

func TestAnalyzeUsesCacheOnSecondCall(t *testing.T) {
	store := &fakeCacheStore{}
	roster := &fakeRoster{students: []models.Student{{ID: "a"}}}
	metrics := &fakeStudentMetrics{stats: map[string]studentStats{"a": {percent: 95}}}
	svc := newCohortService(roster, metrics, store)

	_, hit, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 1, store.sets)

	report, hit, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, report.TotalStudents)
	assert.Equal(t, 1, store.sets)
}

func TestInvalidateDropsCachedReport(t *testing.T) {
	store := &fakeCacheStore{}
	roster := &fakeRoster{students: []models.Student{{ID: "a"}}}
	metrics := &fakeStudentMetrics{stats: map[string]studentStats{"a": {percent: 95}}}
	svc := newCohortService(roster, metrics, store)

	_, _, err := svc.Analyze(context.Background())
	require.NoError(t, err)

	svc.Invalidate(context.Background())

	_, hit, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, store.sets)
}

func TestAnalyzeRowCarriesLabelAndRecommendation(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{{ID: "a", FullName: "A", RollNumber: "01"}}}
	metrics := &fakeStudentMetrics{stats: map[string]studentStats{
		"a": {percent: 50, windowLeaves: 6, monthLeaves: 2},
	}}
	svc := newCohortService(roster, metrics, nil)

	report, _, err := svc.Analyze(context.Background())
	require.NoError(t, err)
	row := report.Students[0]
	assert.Equal(t, risk.Score(50, 6), row.RiskScore)
	assert.Equal(t, risk.LabelCritical, row.RiskLabel)
	assert.Equal(t, 2, row.LeavesThisMonth)
	assert.NotEmpty(t, row.Recommendation)
}

func TestExportDatasetShapesRows(t *testing.T) {
	roster := &fakeRoster{students: []models.Student{
		{ID: "a", FullName: "A", RollNumber: "01", Branch: "CSE", Semester: 4},
	}}
	metrics := &fakeStudentMetrics{stats: map[string]studentStats{"a": {percent: 88, windowLeaves: 1}}}
	svc := newCohortService(roster, metrics, nil)

	report, _, err := svc.Analyze(context.Background())
	require.NoError(t, err)

	dataset := svc.ExportDataset(report)
	require.Len(t, dataset.Rows, 1)
	assert.Contains(t, dataset.Headers, "Risk Score")
	assert.Equal(t, "01", dataset.Rows[0]["Roll Number"])
	assert.Equal(t, "88", dataset.Rows[0]["Attendance %"])
}
