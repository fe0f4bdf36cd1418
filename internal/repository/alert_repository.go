package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/slms-api/internal/models"
)

// ErrDuplicateAlert is returned when the (student_id, date) unique constraint
// rejects an insert. The sweep treats it as "already processed".
var ErrDuplicateAlert = errors.New("absence alert already exists for student and date")

// AlertRepository manages persistence for absence alerts.
type AlertRepository struct {
	db *sqlx.DB
}

// NewAlertRepository constructs an AlertRepository.
func NewAlertRepository(db *sqlx.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

// Create inserts a new alert. The (student_id, date) unique constraint backs
// up the application-level existence check, so a concurrent duplicate insert
// surfaces ErrDuplicateAlert rather than creating a second row.
func (r *AlertRepository) Create(ctx context.Context, alert *models.AbsenceAlert) error {
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO absence_alerts (id, student_id, date, type, resolved, created_at)
        VALUES (:id, :student_id, :date, :type, :resolved, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, alert); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateAlert
		}
		return fmt.Errorf("create absence alert: %w", err)
	}
	return nil
}

// ExistsForDate reports whether an alert already exists for the pair.
func (r *AlertRepository) ExistsForDate(ctx context.Context, studentID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM absence_alerts WHERE student_id = $1 AND date = $2 LIMIT 1`
	var one int
	if err := r.db.GetContext(ctx, &one, query, studentID, date.Format("2006-01-02")); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check alert existence: %w", err)
	}
	return true, nil
}

// ListUnresolvedByMentor returns open alerts for a mentor's students.
func (r *AlertRepository) ListUnresolvedByMentor(ctx context.Context, mentorID string) ([]models.AlertDetail, error) {
	const query = `SELECT aa.id, aa.student_id, aa.date, aa.type, aa.resolved, aa.created_at,
        s.full_name AS student_name, s.roll_number
        FROM absence_alerts aa
        JOIN students s ON s.id = aa.student_id
        WHERE s.mentor_id = $1 AND aa.resolved = false
        ORDER BY aa.created_at DESC`
	var alerts []models.AlertDetail
	if err := r.db.SelectContext(ctx, &alerts, query, mentorID); err != nil {
		return nil, fmt.Errorf("list unresolved alerts: %w", err)
	}
	return alerts, nil
}

// Resolve marks an alert resolved, scoped to the mentor's roster. The
// resolved=false guard makes the transition one-way.
func (r *AlertRepository) Resolve(ctx context.Context, id, mentorID string) (bool, error) {
	const query = `UPDATE absence_alerts SET resolved = true
        WHERE id = $1 AND resolved = false
        AND student_id IN (SELECT id FROM students WHERE mentor_id = $2)`
	res, err := r.db.ExecContext(ctx, query, id, mentorID)
	if err != nil {
		return false, fmt.Errorf("resolve alert: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("resolve alert: %w", err)
	}
	return affected == 1, nil
}

// CountUnresolved counts open alerts across all students.
func (r *AlertRepository) CountUnresolved(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM absence_alerts WHERE resolved = false"); err != nil {
		return 0, fmt.Errorf("count open alerts: %w", err)
	}
	return count, nil
}
