package models

// Mentor is a staff member responsible for a fixed set of students.
type Mentor struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"user_id"`
	FullName   string `db:"full_name" json:"full_name"`
	Department string `db:"department" json:"department"`
	Email      string `db:"email" json:"email"`
}
