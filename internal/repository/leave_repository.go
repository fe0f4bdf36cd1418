package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/slms-api/internal/models"
)

// LeaveRepository manages persistence for leave requests.
type LeaveRepository struct {
	db *sqlx.DB
}

// NewLeaveRepository constructs a LeaveRepository.
func NewLeaveRepository(db *sqlx.DB) *LeaveRepository {
	return &LeaveRepository{db: db}
}

// Create inserts a new pending leave request.
func (r *LeaveRepository) Create(ctx context.Context, leave *models.LeaveRequest) error {
	if leave.ID == "" {
		leave.ID = uuid.NewString()
	}
	if leave.AppliedAt.IsZero() {
		leave.AppliedAt = time.Now().UTC()
	}
	const query = `INSERT INTO leave_requests (id, student_id, from_date, to_date, reason, leave_type, status, applied_at)
        VALUES (:id, :student_id, :from_date, :to_date, :reason, :leave_type, :status, :applied_at)`
	if _, err := r.db.NamedExecContext(ctx, query, leave); err != nil {
		return fmt.Errorf("create leave request: %w", err)
	}
	return nil
}

// FindByID fetches a leave request.
func (r *LeaveRepository) FindByID(ctx context.Context, id string) (*models.LeaveRequest, error) {
	const query = `SELECT id, student_id, from_date, to_date, reason, leave_type, status, mentor_note, applied_at, reviewed_at
        FROM leave_requests WHERE id = $1`
	var leave models.LeaveRequest
	if err := r.db.GetContext(ctx, &leave, query, id); err != nil {
		return nil, err
	}
	return &leave, nil
}

// FindForMentor fetches a leave request only when it belongs to one of the
// mentor's students.
func (r *LeaveRepository) FindForMentor(ctx context.Context, id, mentorID string) (*models.LeaveRequest, error) {
	const query = `SELECT lr.id, lr.student_id, lr.from_date, lr.to_date, lr.reason, lr.leave_type, lr.status, lr.mentor_note, lr.applied_at, lr.reviewed_at
        FROM leave_requests lr
        JOIN students s ON s.id = lr.student_id
        WHERE lr.id = $1 AND s.mentor_id = $2`
	var leave models.LeaveRequest
	if err := r.db.GetContext(ctx, &leave, query, id, mentorID); err != nil {
		return nil, err
	}
	return &leave, nil
}

// ListByStudent returns a student's leave history, newest application first.
func (r *LeaveRepository) ListByStudent(ctx context.Context, studentID string) ([]models.LeaveRequest, error) {
	const query = `SELECT id, student_id, from_date, to_date, reason, leave_type, status, mentor_note, applied_at, reviewed_at
        FROM leave_requests WHERE student_id = $1 ORDER BY applied_at DESC`
	var leaves []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &leaves, query, studentID); err != nil {
		return nil, fmt.Errorf("list leave history: %w", err)
	}
	return leaves, nil
}

// ListByMentor returns requests from a mentor's students, optionally filtered
// to a single status.
func (r *LeaveRepository) ListByMentor(ctx context.Context, mentorID string, status models.LeaveStatus) ([]models.LeaveDetail, error) {
	query := `SELECT lr.id, lr.student_id, lr.from_date, lr.to_date, lr.reason, lr.leave_type, lr.status, lr.mentor_note, lr.applied_at, lr.reviewed_at,
        s.full_name AS student_name, s.roll_number, s.branch, s.semester
        FROM leave_requests lr
        JOIN students s ON s.id = lr.student_id
        WHERE s.mentor_id = $1`
	args := []interface{}{mentorID}
	if status != "" {
		query += " AND lr.status = $2"
		args = append(args, status)
	}
	query += " ORDER BY lr.applied_at DESC"

	var leaves []models.LeaveDetail
	if err := r.db.SelectContext(ctx, &leaves, query, args...); err != nil {
		return nil, fmt.Errorf("list mentor leaves: %w", err)
	}
	return leaves, nil
}

// CountInMonth counts requests whose from_date starts inside the month that
// contains the given day, excluding rejected ones. A request spanning
// month-end is counted only in its starting month.
func (r *LeaveRepository) CountInMonth(ctx context.Context, studentID string, day time.Time) (int, error) {
	monthStart := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	nextMonth := monthStart.AddDate(0, 1, 0)
	const query = `SELECT COUNT(*) FROM leave_requests
        WHERE student_id = $1 AND status IN ('pending', 'approved')
        AND from_date >= $2 AND from_date < $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, studentID,
		monthStart.Format("2006-01-02"), nextMonth.Format("2006-01-02")); err != nil {
		return 0, fmt.Errorf("count monthly leaves: %w", err)
	}
	return count, nil
}

// ListApprovedSince returns approved requests starting on or after the cutoff.
func (r *LeaveRepository) ListApprovedSince(ctx context.Context, studentID string, since time.Time) ([]models.LeaveRequest, error) {
	const query = `SELECT id, student_id, from_date, to_date, reason, leave_type, status, mentor_note, applied_at, reviewed_at
        FROM leave_requests WHERE student_id = $1 AND status = 'approved' AND from_date >= $2
        ORDER BY from_date DESC`
	var leaves []models.LeaveRequest
	if err := r.db.SelectContext(ctx, &leaves, query, studentID, since.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list approved leaves: %w", err)
	}
	return leaves, nil
}

// HasApprovedCovering reports whether an approved request covers the date.
func (r *LeaveRepository) HasApprovedCovering(ctx context.Context, studentID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM leave_requests
        WHERE student_id = $1 AND status = 'approved' AND from_date <= $2 AND to_date >= $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, date.Format("2006-01-02")); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check leave coverage: %w", err)
	}
	return true, nil
}

// Review applies a mentor decision. The status guard keeps decided requests
// terminal: the update touches zero rows once a request leaves pending.
func (r *LeaveRepository) Review(ctx context.Context, id string, status models.LeaveStatus, note *string, reviewedAt time.Time) (bool, error) {
	const query = `UPDATE leave_requests SET status = $2, mentor_note = $3, reviewed_at = $4
        WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, status, note, reviewedAt)
	if err != nil {
		return false, fmt.Errorf("review leave request: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("review leave request: %w", err)
	}
	return affected == 1, nil
}

// CountByStatus counts requests by status across all students.
func (r *LeaveRepository) CountByStatus(ctx context.Context, status models.LeaveStatus) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM leave_requests WHERE status = $1", status); err != nil {
		return 0, fmt.Errorf("count leaves by status: %w", err)
	}
	return count, nil
}
