package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/dto"
	"github.com/noah-isme/slms-api/internal/models"
	"github.com/noah-isme/slms-api/internal/repository"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type absentRosterReader interface {
	AbsentStudentIDs(ctx context.Context, date time.Time) ([]string, error)
}

type leaveCoverageReader interface {
	HasApprovedCovering(ctx context.Context, studentID string, date time.Time) (bool, error)
}

type alertWriter interface {
	ExistsForDate(ctx context.Context, studentID string, date time.Time) (bool, error)
	Create(ctx context.Context, alert *models.AbsenceAlert) error
}

// SweepServiceParams groups constructor dependencies.
type SweepServiceParams struct {
	Attendance absentRosterReader
	Leaves     leaveCoverageReader
	Alerts     alertWriter
	Metrics    *MetricsService
	Logger     *zap.Logger
}

// SweepService flags uninformed absences. The scheduler or an admin endpoint
// supplies the "today" tick; the service owns the rest.
type SweepService struct {
	attendance absentRosterReader
	leaves     leaveCoverageReader
	alerts     alertWriter
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewSweepService constructs a SweepService.
func NewSweepService(params SweepServiceParams) *SweepService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SweepService{
		attendance: params.Attendance,
		leaves:     params.Leaves,
		alerts:     params.Alerts,
		metrics:    params.Metrics,
		logger:     logger,
	}
}

// Run performs one sweep for the given date. Re-running for the same date is
// a no-op for already-processed students, so the job is safe to retrigger.
// A failure on one student is logged and skipped; the batch never aborts for
// a single bad record.
func (s *SweepService) Run(ctx context.Context, today time.Time) (*dto.SweepResult, error) {
	day := today.UTC().Truncate(24 * time.Hour)

	absent, err := s.attendance.AbsentStudentIDs(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absent students")
	}

	result := &dto.SweepResult{
		Date:        day.Format(dateLayout),
		AbsentToday: len(absent),
	}

	for _, studentID := range absent {
		created, err := s.processStudent(ctx, studentID, day)
		if err != nil {
			result.Failed++
			s.logger.Error("absence sweep failed for student",
				zap.String("student_id", studentID),
				zap.String("date", result.Date),
				zap.Error(err),
			)
			continue
		}
		if created {
			result.AlertsCreated++
			s.logger.Info("uninformed absence alert created",
				zap.String("student_id", studentID),
				zap.String("date", result.Date),
			)
		} else {
			result.Skipped++
		}
	}

	s.metrics.RecordSweep(result.AlertsCreated, result.Failed)
	s.logger.Info("absence sweep finished",
		zap.String("date", result.Date),
		zap.Int("absent_today", result.AbsentToday),
		zap.Int("alerts_created", result.AlertsCreated),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// processStudent reports whether a new alert was created for the student.
func (s *SweepService) processStudent(ctx context.Context, studentID string, day time.Time) (bool, error) {
	covered, err := s.leaves.HasApprovedCovering(ctx, studentID, day)
	if err != nil {
		return false, err
	}
	if covered {
		// Excused: an approved leave spans today.
		return false, nil
	}

	exists, err := s.alerts.ExistsForDate(ctx, studentID, day)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	alert := &models.AbsenceAlert{
		StudentID: studentID,
		Date:      day,
		Type:      models.AlertTypeUninformed,
		Resolved:  false,
	}
	if err := s.alerts.Create(ctx, alert); err != nil {
		if errors.Is(err, repository.ErrDuplicateAlert) {
			// A concurrent run won the insert; nothing left to do.
			return false, nil
		}
		return false, err
	}
	return true, nil
}
