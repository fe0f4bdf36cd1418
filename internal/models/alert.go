package models

import "time"

// AlertType classifies an absence alert.
type AlertType string

// AlertTypeUninformed marks an absence not covered by any approved leave.
const AlertTypeUninformed AlertType = "uninformed"

// AbsenceAlert is created by the daily sweep for uninformed absences and may
// only transition unresolved -> resolved.
type AbsenceAlert struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Date      time.Time `db:"date" json:"date"`
	Type      AlertType `db:"type" json:"type"`
	Resolved  bool      `db:"resolved" json:"resolved"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AlertDetail joins an alert with the student's identity for mentor views.
type AlertDetail struct {
	AbsenceAlert
	StudentName string `db:"student_name" json:"student_name"`
	RollNumber  string `db:"roll_number" json:"roll_number"`
}
