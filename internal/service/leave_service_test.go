package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type fakeLeaveRepo struct {
	created      *models.LeaveRequest
	createErr    error
	byStudent    []models.LeaveRequest
	byMentor     []models.LeaveDetail
	found        *models.LeaveRequest
	findErr      error
	reviewOK     bool
	reviewErr    error
	lastStatus   models.LeaveStatus
	lastReviewID string
}

func (f *fakeLeaveRepo) Create(ctx context.Context, leave *models.LeaveRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	leave.ID = "leave-1"
	f.created = leave
	return nil
}

func (f *fakeLeaveRepo) ListByStudent(ctx context.Context, studentID string) ([]models.LeaveRequest, error) {
	return f.byStudent, nil
}

func (f *fakeLeaveRepo) ListByMentor(ctx context.Context, mentorID string, status models.LeaveStatus) ([]models.LeaveDetail, error) {
	f.lastStatus = status
	return f.byMentor, nil
}

func (f *fakeLeaveRepo) FindForMentor(ctx context.Context, id, mentorID string) (*models.LeaveRequest, error) {
	return f.found, f.findErr
}

func (f *fakeLeaveRepo) Review(ctx context.Context, id string, status models.LeaveStatus, note *string, reviewedAt time.Time) (bool, error) {
	f.lastReviewID = id
	f.lastStatus = status
	return f.reviewOK, f.reviewErr
}

type fakeAttendanceMetrics struct {
	percent    int
	percentErr error
	monthCount int
	countErr   error
}

func (f *fakeAttendanceMetrics) AttendancePercent(ctx context.Context, studentID string) (int, error) {
	return f.percent, f.percentErr
}

func (f *fakeAttendanceMetrics) MonthlyLeaveCount(ctx context.Context, studentID string) (int, error) {
	return f.monthCount, f.countErr
}

func newLeaveService(repo *fakeLeaveRepo, metrics *fakeAttendanceMetrics) *LeaveService {
	return NewLeaveService(LeaveServiceParams{
		Repo:    repo,
		Metrics: metrics,
		Policy:  LeavePolicy{MinAttendancePercent: 75, MonthlyLimit: 4},
	})
}

func TestApplyAccepted(t *testing.T) {
	repo := &fakeLeaveRepo{}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{percent: 90, monthCount: 1})

	result, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{
		FromDate: "2026-03-02",
		ToDate:   "2026-03-04",
		Reason:   "family function",
	})
	require.NoError(t, err)
	assert.Equal(t, "leave-1", result.ID)
	assert.Equal(t, models.LeaveStatusPending, result.Status)
	assert.Equal(t, 2, result.LeavesRemaining)

	require.NotNil(t, repo.created)
	assert.Equal(t, "student-1", repo.created.StudentID)
	assert.Equal(t, "personal", repo.created.LeaveType)
	assert.Equal(t, models.LeaveStatusPending, repo.created.Status)
}

func TestApplyMissingFields(t *testing.T) {
	svc := newLeaveService(&fakeLeaveRepo{}, &fakeAttendanceMetrics{percent: 90})

	_, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{FromDate: "2026-03-02"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.ElementsMatch(t, []string{"to_date", "reason"}, appErr.Details["missing_fields"])
}

func TestApplyAttendanceTooLow(t *testing.T) {
	repo := &fakeLeaveRepo{}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{percent: 74})

	_, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{
		FromDate: "2026-03-02",
		ToDate:   "2026-03-04",
		Reason:   "sick",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "ATTENDANCE_LOW", appErr.Code)
	assert.Equal(t, 403, appErr.Status)
	assert.Equal(t, 74, appErr.Details["attendance_percent"])
	assert.Nil(t, repo.created)
}

func TestApplyMonthlyLimitReached(t *testing.T) {
	repo := &fakeLeaveRepo{}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{percent: 90, monthCount: 4})

	_, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{
		FromDate: "2026-03-02",
		ToDate:   "2026-03-04",
		Reason:   "sick",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, "LIMIT_EXCEEDED", appErr.Code)
	assert.Equal(t, 4, appErr.Details["leaves_this_month"])
	assert.Equal(t, 4, appErr.Details["monthly_limit"])
	assert.Nil(t, repo.created)
}

// A student below the attendance bar hears about that before any complaint
// about the dates themselves.
func TestApplyAttendanceCheckedBeforeDateRange(t *testing.T) {
	svc := newLeaveService(&fakeLeaveRepo{}, &fakeAttendanceMetrics{percent: 50})

	_, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{
		FromDate: "2026-03-10",
		ToDate:   "2026-03-02",
		Reason:   "travel",
	})
	require.Error(t, err)
	assert.Equal(t, "ATTENDANCE_LOW", appErrors.FromError(err).Code)
}

func TestApplyInvalidDateRange(t *testing.T) {
	svc := newLeaveService(&fakeLeaveRepo{}, &fakeAttendanceMetrics{percent: 90})

	_, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{
		FromDate: "2026-03-10",
		ToDate:   "2026-03-02",
		Reason:   "travel",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestApplyMalformedDate(t *testing.T) {
	svc := newLeaveService(&fakeLeaveRepo{}, &fakeAttendanceMetrics{percent: 90})

	_, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{
		FromDate: "02-03-2026",
		ToDate:   "2026-03-04",
		Reason:   "travel",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestApplySingleDayLeave(t *testing.T) {
	repo := &fakeLeaveRepo{}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{percent: 80, monthCount: 3})

	result, err := svc.Apply(context.Background(), "student-1", ApplyLeaveRequest{
		FromDate:  "2026-03-02",
		ToDate:    "2026-03-02",
		Reason:    "medical",
		LeaveType: "medical",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.LeavesRemaining)
	assert.Equal(t, "medical", repo.created.LeaveType)
}

func TestForMentorRejectsUnknownStatus(t *testing.T) {
	svc := newLeaveService(&fakeLeaveRepo{}, &fakeAttendanceMetrics{})

	_, err := svc.ForMentor(context.Background(), "mentor-1", "cancelled")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestForMentorPassesStatusFilter(t *testing.T) {
	repo := &fakeLeaveRepo{byMentor: []models.LeaveDetail{{StudentName: "A"}}}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{})

	leaves, err := svc.ForMentor(context.Background(), "mentor-1", models.LeaveStatusPending)
	require.NoError(t, err)
	assert.Len(t, leaves, 1)
	assert.Equal(t, models.LeaveStatusPending, repo.lastStatus)
}

func TestReviewApproves(t *testing.T) {
	note := "get well soon"
	repo := &fakeLeaveRepo{
		found:    &models.LeaveRequest{ID: "leave-1", Status: models.LeaveStatusPending},
		reviewOK: true,
	}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{})

	leave, err := svc.Review(context.Background(), "leave-1", "mentor-1", ReviewLeaveRequest{
		Status: models.LeaveStatusApproved,
		Note:   &note,
	})
	require.NoError(t, err)
	assert.Equal(t, models.LeaveStatusApproved, leave.Status)
	assert.Equal(t, &note, leave.MentorNote)
	assert.NotNil(t, leave.ReviewedAt)
}

func TestReviewRejectsInvalidStatus(t *testing.T) {
	svc := newLeaveService(&fakeLeaveRepo{}, &fakeAttendanceMetrics{})

	_, err := svc.Review(context.Background(), "leave-1", "mentor-1", ReviewLeaveRequest{Status: models.LeaveStatusPending})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReviewAlreadyDecided(t *testing.T) {
	repo := &fakeLeaveRepo{
		found: &models.LeaveRequest{ID: "leave-1", Status: models.LeaveStatusApproved},
	}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{})

	_, err := svc.Review(context.Background(), "leave-1", "mentor-1", ReviewLeaveRequest{Status: models.LeaveStatusRejected})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestReviewLosesRace(t *testing.T) {
	repo := &fakeLeaveRepo{
		found:    &models.LeaveRequest{ID: "leave-1", Status: models.LeaveStatusPending},
		reviewOK: false,
	}
	svc := newLeaveService(repo, &fakeAttendanceMetrics{})

	_, err := svc.Review(context.Background(), "leave-1", "mentor-1", ReviewLeaveRequest{Status: models.LeaveStatusApproved})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
