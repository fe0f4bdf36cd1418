package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error)
	ListByMentor(ctx context.Context, mentorID string) ([]models.Student, error)
	ParentContact(ctx context.Context, studentID, mentorID string) (*models.ParentContact, error)
	AssignMentor(ctx context.Context, studentID string, mentorID *string) error
}

type mentorResolver interface {
	FindByUserID(ctx context.Context, userID string) (*models.Mentor, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// StudentServiceParams groups constructor dependencies.
type StudentServiceParams struct {
	Students studentRepository
	Mentors  mentorResolver
	Metrics  attendanceMetricsProvider
	Logger   *zap.Logger
}

// StudentService serves student profiles and mentor rosters, enriched with
// live attendance metrics.
type StudentService struct {
	students studentRepository
	mentors  mentorResolver
	metrics  attendanceMetricsProvider
	logger   *zap.Logger
}

// NewStudentService constructs a StudentService.
func NewStudentService(params StudentServiceParams) *StudentService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students: params.Students,
		mentors:  params.Mentors,
		metrics:  params.Metrics,
		logger:   logger,
	}
}

// List returns students for the admin view.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Profile returns the student's own view of their record. Parent phone is
// deliberately absent from the profile shape; only the guardian's name shows.
func (s *StudentService) Profile(ctx context.Context, userID string) (*models.StudentProfile, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	percent, err := s.metrics.AttendancePercent(ctx, student.ID)
	if err != nil {
		return nil, err
	}
	monthCount, err := s.metrics.MonthlyLeaveCount(ctx, student.ID)
	if err != nil {
		return nil, err
	}

	return &models.StudentProfile{
		ID:                student.ID,
		FullName:          student.FullName,
		RollNumber:        student.RollNumber,
		Branch:            student.Branch,
		Semester:          student.Semester,
		MentorName:        student.MentorName,
		ParentName:        student.ParentName,
		AttendancePercent: percent,
		LeavesThisMonth:   monthCount,
	}, nil
}

// StudentID resolves the student row behind a user account.
func (s *StudentService) StudentID(ctx context.Context, userID string) (string, error) {
	student, err := s.students.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "student profile not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student.ID, nil
}

// MentorID resolves the mentor row behind a user account.
func (s *StudentService) MentorID(ctx context.Context, userID string) (string, error) {
	mentor, err := s.mentors.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, "mentor profile not found")
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentor")
	}
	return mentor.ID, nil
}

// Mentees returns a mentor's roster enriched with live metrics.
func (s *StudentService) Mentees(ctx context.Context, mentorID string) ([]models.MenteeSummary, error) {
	students, err := s.students.ListByMentor(ctx, mentorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentees")
	}

	summaries := make([]models.MenteeSummary, 0, len(students))
	for _, student := range students {
		percent, err := s.metrics.AttendancePercent(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		monthCount, err := s.metrics.MonthlyLeaveCount(ctx, student.ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, models.MenteeSummary{
			ID:                student.ID,
			FullName:          student.FullName,
			RollNumber:        student.RollNumber,
			Branch:            student.Branch,
			Semester:          student.Semester,
			AttendancePercent: percent,
			LeavesThisMonth:   monthCount,
		})
	}
	return summaries, nil
}

// ParentContact exposes guardian details for one of the mentor's students.
func (s *StudentService) ParentContact(ctx context.Context, studentID, mentorID string) (*models.ParentContact, error) {
	contact, err := s.students.ParentContact(ctx, studentID, mentorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found or not assigned to you")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent contact")
	}
	return contact, nil
}

// ReassignMentor moves a student to a different mentor, or clears the
// assignment when mentorID is nil.
func (s *StudentService) ReassignMentor(ctx context.Context, studentID string, mentorID *string) (*models.StudentDetail, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if mentorID != nil {
		exists, err := s.mentors.Exists(ctx, *mentorID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check mentor")
		}
		if !exists {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "mentor not found")
		}
	}
	if err := s.students.AssignMentor(ctx, studentID, mentorID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign mentor")
	}
	return s.students.FindByID(ctx, studentID)
}
