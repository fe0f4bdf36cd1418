package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/slms-api/internal/models"
)

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `s.id, s.user_id, s.full_name, s.roll_number, s.branch, s.semester, s.mentor_id, s.parent_name, s.parent_phone`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	base := "FROM students s LEFT JOIN mentors m ON m.id = s.mentor_id"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Branch != "" {
		conditions = append(conditions, fmt.Sprintf("s.branch = $%d", len(args)+1))
		args = append(args, filter.Branch)
	}
	if filter.Semester > 0 {
		conditions = append(conditions, fmt.Sprintf("s.semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}
	if filter.MentorID != "" {
		conditions = append(conditions, fmt.Sprintf("s.mentor_id = $%d", len(args)+1))
		args = append(args, filter.MentorID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(s.full_name) LIKE $%d OR LOWER(s.roll_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	sortBy := filter.SortBy
	allowedSorts := map[string]string{
		"full_name":   "s.full_name",
		"roll_number": "s.roll_number",
		"branch":      "s.branch",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.roll_number"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s, m.full_name AS mentor_name %s ORDER BY %s %s LIMIT %d OFFSET %d`,
		studentColumns, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student with mentor context by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, m.full_name AS mentor_name
        FROM students s LEFT JOIN mentors m ON m.id = s.mentor_id
        WHERE s.id = $1`, studentColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// FindByUserID resolves the student profile behind a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, m.full_name AS mentor_name
        FROM students s LEFT JOIN mentors m ON m.id = s.mentor_id
        WHERE s.user_id = $1`, studentColumns)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, userID); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByMentor returns the roster assigned to a mentor.
func (r *StudentRepository) ListByMentor(ctx context.Context, mentorID string) ([]models.Student, error) {
	const query = `SELECT id, user_id, full_name, roll_number, branch, semester, mentor_id, parent_name, parent_phone
        FROM students WHERE mentor_id = $1 ORDER BY roll_number`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, mentorID); err != nil {
		return nil, fmt.Errorf("list mentees: %w", err)
	}
	return students, nil
}

// ListAll returns every student, in roster order, for cohort analysis.
func (r *StudentRepository) ListAll(ctx context.Context) ([]models.Student, error) {
	const query = `SELECT id, user_id, full_name, roll_number, branch, semester, mentor_id, parent_name, parent_phone
        FROM students ORDER BY roll_number`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list all students: %w", err)
	}
	return students, nil
}

// ParentContact fetches guardian details for a mentee. The mentor scope is
// enforced in the query so a mentor can never read another roster's contact.
func (r *StudentRepository) ParentContact(ctx context.Context, studentID, mentorID string) (*models.ParentContact, error) {
	const query = `SELECT full_name, parent_name, parent_phone FROM students WHERE id = $1 AND mentor_id = $2`
	var contact models.ParentContact
	if err := r.db.GetContext(ctx, &contact, query, studentID, mentorID); err != nil {
		return nil, err
	}
	return &contact, nil
}

// AssignMentor reassigns a student's mentor. The only mutation allowed on a
// seeded student row.
func (r *StudentRepository) AssignMentor(ctx context.Context, studentID string, mentorID *string) error {
	const query = `UPDATE students SET mentor_id = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, studentID, mentorID); err != nil {
		return fmt.Errorf("assign mentor: %w", err)
	}
	return nil
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
