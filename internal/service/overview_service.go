package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/dto"
	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type studentCounter interface {
	Count(ctx context.Context) (int, error)
}

type mentorCounter interface {
	Count(ctx context.Context) (int, error)
}

type leaveStatusCounter interface {
	CountByStatus(ctx context.Context, status models.LeaveStatus) (int, error)
}

type alertCounter interface {
	CountUnresolved(ctx context.Context) (int, error)
}

// OverviewService composes the admin landing-page counters.
type OverviewService struct {
	students studentCounter
	mentors  mentorCounter
	leaves   leaveStatusCounter
	alerts   alertCounter
	logger   *zap.Logger
}

// NewOverviewService constructs an OverviewService.
func NewOverviewService(students studentCounter, mentors mentorCounter, leaves leaveStatusCounter, alerts alertCounter, logger *zap.Logger) *OverviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverviewService{students: students, mentors: mentors, leaves: leaves, alerts: alerts, logger: logger}
}

// Overview returns the headline counters.
func (s *OverviewService) Overview(ctx context.Context) (*dto.AdminOverview, error) {
	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	totalMentors, err := s.mentors.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count mentors")
	}
	pending, err := s.leaves.CountByStatus(ctx, models.LeaveStatusPending)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending leaves")
	}
	approved, err := s.leaves.CountByStatus(ctx, models.LeaveStatusApproved)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count approved leaves")
	}
	openAlerts, err := s.alerts.CountUnresolved(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count open alerts")
	}

	return &dto.AdminOverview{
		TotalStudents:  totalStudents,
		TotalMentors:   totalMentors,
		PendingLeaves:  pending,
		ApprovedLeaves: approved,
		OpenAlerts:     openAlerts,
	}, nil
}
