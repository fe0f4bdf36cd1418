package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/slms-api/internal/models"
)

// MentorRepository manages persistence for mentor records.
type MentorRepository struct {
	db *sqlx.DB
}

// NewMentorRepository constructs a MentorRepository.
func NewMentorRepository(db *sqlx.DB) *MentorRepository {
	return &MentorRepository{db: db}
}

// FindByID fetches a mentor by ID.
func (r *MentorRepository) FindByID(ctx context.Context, id string) (*models.Mentor, error) {
	const query = `SELECT id, user_id, full_name, department, email FROM mentors WHERE id = $1`
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, query, id); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// FindByUserID resolves the mentor profile behind a user account.
func (r *MentorRepository) FindByUserID(ctx context.Context, userID string) (*models.Mentor, error) {
	const query = `SELECT id, user_id, full_name, department, email FROM mentors WHERE user_id = $1`
	var mentor models.Mentor
	if err := r.db.GetContext(ctx, &mentor, query, userID); err != nil {
		return nil, err
	}
	return &mentor, nil
}

// Exists reports whether a mentor row exists.
func (r *MentorRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	if err := r.db.GetContext(ctx, &one, "SELECT 1 FROM mentors WHERE id = $1 LIMIT 1", id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check mentor: %w", err)
	}
	return true, nil
}

// Count returns the total number of mentors.
func (r *MentorRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM mentors"); err != nil {
		return 0, fmt.Errorf("count mentors: %w", err)
	}
	return total, nil
}
