package models

// Student represents a learner seeded by the enrollment system. Rows are
// immutable once seeded except for mentor reassignment.
type Student struct {
	ID          string  `db:"id" json:"id"`
	UserID      string  `db:"user_id" json:"user_id"`
	FullName    string  `db:"full_name" json:"full_name"`
	RollNumber  string  `db:"roll_number" json:"roll_number"`
	Branch      string  `db:"branch" json:"branch"`
	Semester    int     `db:"semester" json:"semester"`
	MentorID    *string `db:"mentor_id" json:"mentor_id,omitempty"`
	ParentName  string  `db:"parent_name" json:"-"`
	ParentPhone string  `db:"parent_phone" json:"-"`
}

// StudentDetail extends a student with their mentor's name.
type StudentDetail struct {
	Student
	MentorName *string `db:"mentor_name" json:"mentor_name,omitempty"`
}

// StudentProfile is the student-facing view of their own record. Parent
// contact details stay hidden; only mentors and admins may read those.
type StudentProfile struct {
	ID                string  `json:"id"`
	FullName          string  `json:"full_name"`
	RollNumber        string  `json:"roll_number"`
	Branch            string  `json:"branch"`
	Semester          int     `json:"semester"`
	MentorName        *string `json:"mentor_name,omitempty"`
	ParentName        string  `json:"parent_name"`
	AttendancePercent int     `json:"attendance_percent"`
	LeavesThisMonth   int     `json:"leaves_this_month"`
}

// MenteeSummary is a mentor's roster row enriched with live metrics.
type MenteeSummary struct {
	ID                string `json:"id"`
	FullName          string `json:"full_name"`
	RollNumber        string `json:"roll_number"`
	Branch            string `json:"branch"`
	Semester          int    `json:"semester"`
	AttendancePercent int    `json:"attendance_percent"`
	LeavesThisMonth   int    `json:"leaves_this_month"`
}

// ParentContact exposes guardian details to the assigned mentor.
type ParentContact struct {
	FullName    string `db:"full_name" json:"full_name"`
	ParentName  string `db:"parent_name" json:"parent_name"`
	ParentPhone string `db:"parent_phone" json:"parent_phone"`
}

// StudentFilter captures filtering criteria for listing students.
type StudentFilter struct {
	Search    string
	Branch    string
	Semester  int
	MentorID  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
