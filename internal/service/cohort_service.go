package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/dto"
	"github.com/noah-isme/slms-api/internal/models"
	"github.com/noah-isme/slms-api/internal/risk"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
	"github.com/noah-isme/slms-api/pkg/export"
)

const cohortCacheKey = "risk:cohort"

type studentRosterReader interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type studentMetricsProvider interface {
	AttendancePercent(ctx context.Context, studentID string) (int, error)
	MonthlyLeaveCount(ctx context.Context, studentID string) (int, error)
	ApprovedLeavesInWindow(ctx context.Context, studentID string, windowDays int) ([]models.LeaveRequest, error)
}

// CohortServiceConfig tunes analyzer behaviour.
type CohortServiceConfig struct {
	RiskWindowDays int
	CacheTTL       time.Duration
}

// CohortServiceParams groups constructor dependencies.
type CohortServiceParams struct {
	Students studentRosterReader
	Metrics  studentMetricsProvider
	Cache    *CacheService
	Logger   *zap.Logger
	Config   CohortServiceConfig
}

// CohortService aggregates per-student risk scoring into a cohort report.
type CohortService struct {
	students studentRosterReader
	metrics  studentMetricsProvider
	cache    *CacheService
	logger   *zap.Logger
	now      func() time.Time
	cfg      CohortServiceConfig
}

// NewCohortService constructs a CohortService with sane defaults.
func NewCohortService(params CohortServiceParams) *CohortService {
	cfg := params.Config
	if cfg.RiskWindowDays <= 0 {
		cfg.RiskWindowDays = 60
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CohortService{
		students: params.Students,
		metrics:  params.Metrics,
		cache:    params.Cache,
		logger:   logger,
		now:      time.Now,
		cfg:      cfg,
	}
}

// Analyze builds the cohort report and indicates cache utilisation.
func (s *CohortService) Analyze(ctx context.Context) (*dto.CohortReport, bool, error) {
	if s.cache.Enabled() {
		var cached dto.CohortReport
		if hit, err := s.cache.Get(ctx, cohortCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	report, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}

	if err := s.cache.Set(ctx, cohortCacheKey, report, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("failed to cache cohort report", zap.Error(err))
	}
	return report, false, nil
}

// Invalidate drops the cached report, typically after a sweep or a decision
// changes the underlying data.
func (s *CohortService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cohortCacheKey); err != nil {
		s.logger.Warn("failed to invalidate cohort cache", zap.Error(err))
	}
}

func (s *CohortService) compose(ctx context.Context) (*dto.CohortReport, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student roster")
	}

	rows := make([]dto.StudentRiskRow, 0, len(students))
	for _, student := range students {
		row, err := s.analyzeStudent(ctx, student)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}

	// Stable sort keeps roster order between equal scores, so repeated runs
	// over unchanged data produce identical reports.
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].RiskScore > rows[j].RiskScore
	})

	report := &dto.CohortReport{
		AnalyzedAt:    s.now().UTC(),
		TotalStudents: len(rows),
		Students:      rows,
	}
	for _, row := range rows {
		switch row.RiskLabel {
		case risk.LabelCritical:
			report.Critical++
		case risk.LabelAtRisk:
			report.AtRisk++
		case risk.LabelMonitor:
			report.Monitor++
		default:
			report.Safe++
		}
	}
	return report, nil
}

func (s *CohortService) analyzeStudent(ctx context.Context, student models.Student) (dto.StudentRiskRow, error) {
	percent, err := s.metrics.AttendancePercent(ctx, student.ID)
	if err != nil {
		return dto.StudentRiskRow{}, err
	}
	windowLeaves, err := s.metrics.ApprovedLeavesInWindow(ctx, student.ID, s.cfg.RiskWindowDays)
	if err != nil {
		return dto.StudentRiskRow{}, err
	}
	monthCount, err := s.metrics.MonthlyLeaveCount(ctx, student.ID)
	if err != nil {
		return dto.StudentRiskRow{}, err
	}

	score := risk.Score(percent, len(windowLeaves))
	return dto.StudentRiskRow{
		StudentID:         student.ID,
		FullName:          student.FullName,
		RollNumber:        student.RollNumber,
		Branch:            student.Branch,
		Semester:          student.Semester,
		AttendancePercent: percent,
		LeavesLast60Days:  len(windowLeaves),
		LeavesThisMonth:   monthCount,
		RiskScore:         score,
		RiskLabel:         risk.Label(score),
		Recommendation:    risk.Recommendation(score),
	}, nil
}

// ExportDataset flattens a report into the tabular form the exporters accept.
func (s *CohortService) ExportDataset(report *dto.CohortReport) export.Dataset {
	headers := []string{"Roll Number", "Name", "Branch", "Semester", "Attendance %", "Leaves (60d)", "Leaves (month)", "Risk Score", "Risk Label"}
	rows := make([]map[string]string, 0, len(report.Students))
	for _, row := range report.Students {
		rows = append(rows, map[string]string{
			"Roll Number":    row.RollNumber,
			"Name":           row.FullName,
			"Branch":         row.Branch,
			"Semester":       strconv.Itoa(row.Semester),
			"Attendance %":   strconv.Itoa(row.AttendancePercent),
			"Leaves (60d)":   strconv.Itoa(row.LeavesLast60Days),
			"Leaves (month)": strconv.Itoa(row.LeavesThisMonth),
			"Risk Score":     strconv.Itoa(row.RiskScore),
			"Risk Label":     row.RiskLabel,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

// ExportTitle names a rendered report file.
func (s *CohortService) ExportTitle(report *dto.CohortReport) string {
	return fmt.Sprintf("Cohort risk report %s", report.AnalyzedAt.Format(dateLayout))
}
