package models

import "time"

// LeaveStatus is the review state of a leave request.
type LeaveStatus string

const (
	LeaveStatusPending  LeaveStatus = "pending"
	LeaveStatusApproved LeaveStatus = "approved"
	LeaveStatusRejected LeaveStatus = "rejected"
)

// Decided reports whether the request has reached a terminal state.
func (s LeaveStatus) Decided() bool {
	return s == LeaveStatusApproved || s == LeaveStatusRejected
}

// LeaveRequest is a student's application for leave over an inclusive date
// range. It is mutated exactly once, by a mentor decision.
type LeaveRequest struct {
	ID         string      `db:"id" json:"id"`
	StudentID  string      `db:"student_id" json:"student_id"`
	FromDate   time.Time   `db:"from_date" json:"from_date"`
	ToDate     time.Time   `db:"to_date" json:"to_date"`
	Reason     string      `db:"reason" json:"reason"`
	LeaveType  string      `db:"leave_type" json:"leave_type"`
	Status     LeaveStatus `db:"status" json:"status"`
	MentorNote *string     `db:"mentor_note" json:"mentor_note,omitempty"`
	AppliedAt  time.Time   `db:"applied_at" json:"applied_at"`
	ReviewedAt *time.Time  `db:"reviewed_at" json:"reviewed_at,omitempty"`
}

// LeaveDetail joins a request with the requesting student's identity, for
// mentor review listings.
type LeaveDetail struct {
	LeaveRequest
	StudentName string `db:"student_name" json:"student_name"`
	RollNumber  string `db:"roll_number" json:"roll_number"`
	Branch      string `db:"branch" json:"branch"`
	Semester    int    `db:"semester" json:"semester"`
}
