package dto

// AdminOverview carries the headline counters for the admin landing page.
type AdminOverview struct {
	TotalStudents  int `json:"total_students"`
	TotalMentors   int `json:"total_mentors"`
	PendingLeaves  int `json:"pending_leaves"`
	ApprovedLeaves int `json:"approved_leaves"`
	OpenAlerts     int `json:"open_alerts"`
}

// SweepResult reports the outcome of one absence sweep run.
type SweepResult struct {
	Date          string `json:"date"`
	AbsentToday   int    `json:"absent_today"`
	AlertsCreated int    `json:"alerts_created"`
	Skipped       int    `json:"skipped"`
	Failed        int    `json:"failed"`
}
