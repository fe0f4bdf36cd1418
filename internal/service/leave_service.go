package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type leaveRepository interface {
	Create(ctx context.Context, leave *models.LeaveRequest) error
	ListByStudent(ctx context.Context, studentID string) ([]models.LeaveRequest, error)
	ListByMentor(ctx context.Context, mentorID string, status models.LeaveStatus) ([]models.LeaveDetail, error)
	FindForMentor(ctx context.Context, id, mentorID string) (*models.LeaveRequest, error)
	Review(ctx context.Context, id string, status models.LeaveStatus, note *string, reviewedAt time.Time) (bool, error)
}

type attendanceMetricsProvider interface {
	AttendancePercent(ctx context.Context, studentID string) (int, error)
	MonthlyLeaveCount(ctx context.Context, studentID string) (int, error)
}

// LeavePolicy carries the eligibility constants.
type LeavePolicy struct {
	MinAttendancePercent int
	MonthlyLimit         int
}

// ApplyLeaveRequest is a student's leave application payload. Dates use the
// YYYY-MM-DD wire format.
type ApplyLeaveRequest struct {
	FromDate  string `json:"from_date"`
	ToDate    string `json:"to_date"`
	Reason    string `json:"reason"`
	LeaveType string `json:"leave_type"`
}

// ApplyLeaveResult reports the accepted request and the remaining monthly
// quota hint.
type ApplyLeaveResult struct {
	ID              string             `json:"id"`
	Status          models.LeaveStatus `json:"status"`
	LeavesRemaining int                `json:"leaves_remaining"`
}

// ReviewLeaveRequest is a mentor's decision payload.
type ReviewLeaveRequest struct {
	Status models.LeaveStatus `json:"status"`
	Note   *string            `json:"mentor_note,omitempty"`
}

// LeaveServiceParams groups constructor dependencies.
type LeaveServiceParams struct {
	Repo    leaveRepository
	Metrics attendanceMetricsProvider
	Policy  LeavePolicy
	Logger  *zap.Logger
}

// LeaveService owns the leave application gate and the mentor review flow.
type LeaveService struct {
	repo    leaveRepository
	metrics attendanceMetricsProvider
	policy  LeavePolicy
	logger  *zap.Logger
	now     func() time.Time
}

// NewLeaveService constructs a LeaveService with sane policy defaults.
func NewLeaveService(params LeaveServiceParams) *LeaveService {
	policy := params.Policy
	if policy.MinAttendancePercent <= 0 {
		policy.MinAttendancePercent = 75
	}
	if policy.MonthlyLimit <= 0 {
		policy.MonthlyLimit = 4
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaveService{
		repo:    params.Repo,
		metrics: params.Metrics,
		policy:  policy,
		logger:  logger,
		now:     time.Now,
	}
}

// Apply runs the eligibility gate and files the request when it passes.
// Check order is deliberate: "may you apply at all" (attendance, monthly
// quota) comes before "is this particular request well-formed" (date range),
// so a student below the attendance bar hears about that first.
func (s *LeaveService) Apply(ctx context.Context, studentID string, req ApplyLeaveRequest) (*ApplyLeaveResult, error) {
	var missing []string
	if strings.TrimSpace(req.FromDate) == "" {
		missing = append(missing, "from_date")
	}
	if strings.TrimSpace(req.ToDate) == "" {
		missing = append(missing, "to_date")
	}
	if strings.TrimSpace(req.Reason) == "" {
		missing = append(missing, "reason")
	}
	if len(missing) > 0 {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrValidation, "from_date, to_date and reason are required"),
			map[string]interface{}{"missing_fields": missing},
		)
	}

	percent, err := s.metrics.AttendancePercent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if percent < s.policy.MinAttendancePercent {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrAttendanceLow, "attendance too low to apply online; please submit a physical letter to your faculty"),
			map[string]interface{}{"attendance_percent": percent},
		)
	}

	monthCount, err := s.metrics.MonthlyLeaveCount(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if monthCount >= s.policy.MonthlyLimit {
		return nil, appErrors.WithDetails(
			appErrors.Clone(appErrors.ErrLimitExceeded, "monthly leave request limit reached"),
			map[string]interface{}{"leaves_this_month": monthCount, "monthly_limit": s.policy.MonthlyLimit},
		)
	}

	fromDate, err := time.Parse(dateLayout, req.FromDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from_date must be formatted as YYYY-MM-DD")
	}
	toDate, err := time.Parse(dateLayout, req.ToDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to_date must be formatted as YYYY-MM-DD")
	}
	if fromDate.After(toDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from_date must be before or equal to to_date")
	}

	leaveType := strings.TrimSpace(req.LeaveType)
	if leaveType == "" {
		leaveType = "personal"
	}

	leave := &models.LeaveRequest{
		StudentID: studentID,
		FromDate:  fromDate,
		ToDate:    toDate,
		Reason:    strings.TrimSpace(req.Reason),
		LeaveType: leaveType,
		Status:    models.LeaveStatusPending,
		AppliedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, leave); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to file leave request")
	}

	return &ApplyLeaveResult{
		ID:              leave.ID,
		Status:          leave.Status,
		LeavesRemaining: s.policy.MonthlyLimit - (monthCount + 1),
	}, nil
}

// History returns the student's applications, newest first.
func (s *LeaveService) History(ctx context.Context, studentID string) ([]models.LeaveRequest, error) {
	leaves, err := s.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave history")
	}
	return leaves, nil
}

// ForMentor lists requests from a mentor's roster, optionally by status.
func (s *LeaveService) ForMentor(ctx context.Context, mentorID string, status models.LeaveStatus) ([]models.LeaveDetail, error) {
	if status != "" && status != models.LeaveStatusPending && status != models.LeaveStatusApproved && status != models.LeaveStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be pending, approved or rejected")
	}
	leaves, err := s.repo.ListByMentor(ctx, mentorID, status)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave requests")
	}
	return leaves, nil
}

// Review applies a mentor decision to a pending request. A decided request is
// terminal; re-deciding yields a conflict.
func (s *LeaveService) Review(ctx context.Context, leaveID, mentorID string, req ReviewLeaveRequest) (*models.LeaveRequest, error) {
	if req.Status != models.LeaveStatusApproved && req.Status != models.LeaveStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "status must be approved or rejected")
	}

	leave, err := s.repo.FindForMentor(ctx, leaveID, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "leave request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load leave request")
	}
	if leave.Status.Decided() {
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave request has already been decided")
	}

	reviewedAt := s.now().UTC()
	updated, err := s.repo.Review(ctx, leaveID, req.Status, req.Note, reviewedAt)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record decision")
	}
	if !updated {
		// Lost the race against another reviewer.
		return nil, appErrors.Clone(appErrors.ErrConflict, "leave request has already been decided")
	}

	leave.Status = req.Status
	leave.MentorNote = req.Note
	leave.ReviewedAt = &reviewedAt
	return leave, nil
}
