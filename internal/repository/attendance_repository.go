package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/slms-api/internal/models"
)

// AttendanceRepository reads attendance rows written by the external capture
// process. The core never mutates this table.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Tally returns the counts feeding the attendance percentage: days marked
// present or leave, and the total recorded days.
func (r *AttendanceRepository) Tally(ctx context.Context, studentID string) (*models.AttendanceTally, error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE status IN ('present', 'leave')) AS present_or_leave,
        COUNT(*) AS total
        FROM attendance WHERE student_id = $1`
	var tally models.AttendanceTally
	if err := r.db.GetContext(ctx, &tally, query, studentID); err != nil {
		return nil, fmt.Errorf("tally attendance: %w", err)
	}
	return &tally, nil
}

// ListByStudent returns the full attendance history, newest first.
func (r *AttendanceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, student_id, date, status FROM attendance WHERE student_id = $1 ORDER BY date DESC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// AbsentStudentIDs lists every student marked absent on the given date.
func (r *AttendanceRepository) AbsentStudentIDs(ctx context.Context, date time.Time) ([]string, error) {
	const query = `SELECT student_id FROM attendance WHERE date = $1 AND status = 'absent'`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, date.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("list absent students: %w", err)
	}
	return ids, nil
}
