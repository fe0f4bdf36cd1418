package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slms-api/internal/middleware"
	"github.com/noah-isme/slms-api/internal/models"
	"github.com/noah-isme/slms-api/internal/service"
	"github.com/noah-isme/slms-api/pkg/response"
)

type stubStudentRepo struct {
	detail *models.StudentDetail
	err    error
}

func (s *stubStudentRepo) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	return nil, 0, nil
}

func (s *stubStudentRepo) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	return s.detail, s.err
}

func (s *stubStudentRepo) FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	return s.detail, s.err
}

func (s *stubStudentRepo) ListByMentor(ctx context.Context, mentorID string) ([]models.Student, error) {
	return nil, nil
}

func (s *stubStudentRepo) ParentContact(ctx context.Context, studentID, mentorID string) (*models.ParentContact, error) {
	return nil, nil
}

func (s *stubStudentRepo) AssignMentor(ctx context.Context, studentID string, mentorID *string) error {
	return nil
}

type stubMentorRepo struct {
	mentor *models.Mentor
	err    error
}

func (s *stubMentorRepo) FindByUserID(ctx context.Context, userID string) (*models.Mentor, error) {
	return s.mentor, s.err
}

func (s *stubMentorRepo) Exists(ctx context.Context, id string) (bool, error) {
	return s.mentor != nil, nil
}

type stubLeaveRepo struct {
	history []models.LeaveRequest
	details []models.LeaveDetail
	found   *models.LeaveRequest
	findErr error
	review  bool
}

func (s *stubLeaveRepo) Create(ctx context.Context, leave *models.LeaveRequest) error {
	leave.ID = "leave-1"
	return nil
}

func (s *stubLeaveRepo) ListByStudent(ctx context.Context, studentID string) ([]models.LeaveRequest, error) {
	return s.history, nil
}

func (s *stubLeaveRepo) ListByMentor(ctx context.Context, mentorID string, status models.LeaveStatus) ([]models.LeaveDetail, error) {
	return s.details, nil
}

func (s *stubLeaveRepo) FindForMentor(ctx context.Context, id, mentorID string) (*models.LeaveRequest, error) {
	return s.found, s.findErr
}

func (s *stubLeaveRepo) Review(ctx context.Context, id string, status models.LeaveStatus, note *string, reviewedAt time.Time) (bool, error) {
	return s.review, nil
}

type stubMetrics struct {
	percent int
	month   int
}

func (s *stubMetrics) AttendancePercent(ctx context.Context, studentID string) (int, error) {
	return s.percent, nil
}

func (s *stubMetrics) MonthlyLeaveCount(ctx context.Context, studentID string) (int, error) {
	return s.month, nil
}

func newStudentHandlerForTest(students *stubStudentRepo, leaves *stubLeaveRepo, metrics *stubMetrics) *StudentHandler {
	studentService := service.NewStudentService(service.StudentServiceParams{
		Students: students,
		Mentors:  &stubMentorRepo{},
		Metrics:  metrics,
	})
	leaveService := service.NewLeaveService(service.LeaveServiceParams{
		Repo:    leaves,
		Metrics: metrics,
	})
	return NewStudentHandler(StudentHandlerParams{
		StudentService: studentService,
		LeaveService:   leaveService,
	})
}

func studentContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	c.Request = req
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
	return c, w
}

func TestStudentMe(t *testing.T) {
	students := &stubStudentRepo{detail: &models.StudentDetail{
		Student: models.Student{ID: "s1", FullName: "Asha", RollNumber: "CS-01"},
	}}
	h := newStudentHandlerForTest(students, &stubLeaveRepo{}, &stubMetrics{percent: 91, month: 1})

	c, w := studentContext(t, http.MethodGet, "/student/me", nil)
	h.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data models.StudentProfile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "Asha", envelope.Data.FullName)
	assert.Equal(t, 91, envelope.Data.AttendancePercent)
}

func TestStudentApplyLeaveAccepted(t *testing.T) {
	students := &stubStudentRepo{detail: &models.StudentDetail{Student: models.Student{ID: "s1"}}}
	h := newStudentHandlerForTest(students, &stubLeaveRepo{}, &stubMetrics{percent: 90, month: 0})

	payload, _ := json.Marshal(service.ApplyLeaveRequest{
		FromDate: "2026-03-02",
		ToDate:   "2026-03-04",
		Reason:   "family function",
	})
	c, w := studentContext(t, http.MethodPost, "/student/leaves", payload)
	h.ApplyLeave(c)

	require.Equal(t, http.StatusCreated, w.Code)
	var envelope struct {
		Data service.ApplyLeaveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "leave-1", envelope.Data.ID)
	assert.Equal(t, 3, envelope.Data.LeavesRemaining)
}

func TestStudentApplyLeaveBlockedByAttendance(t *testing.T) {
	students := &stubStudentRepo{detail: &models.StudentDetail{Student: models.Student{ID: "s1"}}}
	h := newStudentHandlerForTest(students, &stubLeaveRepo{}, &stubMetrics{percent: 60})

	payload, _ := json.Marshal(service.ApplyLeaveRequest{
		FromDate: "2026-03-02",
		ToDate:   "2026-03-04",
		Reason:   "trip",
	})
	c, w := studentContext(t, http.MethodPost, "/student/leaves", payload)
	h.ApplyLeave(c)

	require.Equal(t, http.StatusForbidden, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "ATTENDANCE_LOW", envelope.Error.Code)
	assert.EqualValues(t, 60, envelope.Error.Details["attendance_percent"])
}

func TestStudentApplyLeaveInvalidBody(t *testing.T) {
	students := &stubStudentRepo{detail: &models.StudentDetail{Student: models.Student{ID: "s1"}}}
	h := newStudentHandlerForTest(students, &stubLeaveRepo{}, &stubMetrics{percent: 90})

	c, w := studentContext(t, http.MethodPost, "/student/leaves", []byte(`{"from_date":`))
	h.ApplyLeave(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStudentLeavesHistory(t *testing.T) {
	students := &stubStudentRepo{detail: &models.StudentDetail{Student: models.Student{ID: "s1"}}}
	leaves := &stubLeaveRepo{history: []models.LeaveRequest{{ID: "leave-1"}, {ID: "leave-2"}}}
	h := newStudentHandlerForTest(students, leaves, &stubMetrics{})

	c, w := studentContext(t, http.MethodGet, "/student/leaves", nil)
	h.Leaves(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data []models.LeaveRequest `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 2)
}

func TestStudentMeUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newStudentHandlerForTest(&stubStudentRepo{}, &stubLeaveRepo{}, &stubMetrics{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/student/me", nil)

	h.Me(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
