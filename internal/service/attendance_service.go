package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type attendanceTallyReader interface {
	Tally(ctx context.Context, studentID string) (*models.AttendanceTally, error)
}

type leaveCountReader interface {
	CountInMonth(ctx context.Context, studentID string, day time.Time) (int, error)
	ListApprovedSince(ctx context.Context, studentID string, since time.Time) ([]models.LeaveRequest, error)
}

// AttendanceService computes attendance metrics from raw attendance and leave
// records.
type AttendanceService struct {
	attendance attendanceTallyReader
	leaves     leaveCountReader
	logger     *zap.Logger
	now        func() time.Time
}

// NewAttendanceService constructs an AttendanceService.
func NewAttendanceService(attendance attendanceTallyReader, leaves leaveCountReader, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{attendance: attendance, leaves: leaves, logger: logger, now: time.Now}
}

// AttendancePercent returns the rounded attendance percentage for a student.
// A student with no recorded days is treated as fully attending, so new
// students are not penalised before any history exists. Approved-leave days
// count toward attendance the same as presence.
func (s *AttendanceService) AttendancePercent(ctx context.Context, studentID string) (int, error) {
	tally, err := s.attendance.Tally(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attendance")
	}
	if tally.Total == 0 {
		return 100, nil
	}
	percent := math.Round(float64(tally.PresentOrLeave) / float64(tally.Total) * 100)
	return int(percent), nil
}

// MonthlyLeaveCount counts pending and approved requests starting in the
// current calendar month. A request spanning month-end belongs to the month
// it started in and is never re-counted.
func (s *AttendanceService) MonthlyLeaveCount(ctx context.Context, studentID string) (int, error) {
	count, err := s.leaves.CountInMonth(ctx, studentID, s.now().UTC())
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count monthly leaves")
	}
	return count, nil
}

// ApprovedLeavesInWindow returns approved requests whose from_date falls
// within the trailing window of the given length.
func (s *AttendanceService) ApprovedLeavesInWindow(ctx context.Context, studentID string, windowDays int) ([]models.LeaveRequest, error) {
	since := s.now().UTC().AddDate(0, 0, -windowDays)
	leaves, err := s.leaves.ListApprovedSince(ctx, studentID, since)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list approved leaves")
	}
	return leaves, nil
}
