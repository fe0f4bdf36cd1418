package dto

import "time"

// StudentRiskRow is one student's entry in the cohort report.
type StudentRiskRow struct {
	StudentID         string `json:"student_id"`
	FullName          string `json:"full_name"`
	RollNumber        string `json:"roll_number"`
	Branch            string `json:"branch"`
	Semester          int    `json:"semester"`
	AttendancePercent int    `json:"attendance_percent"`
	LeavesLast60Days  int    `json:"leaves_last_60_days"`
	LeavesThisMonth   int    `json:"leaves_this_month"`
	RiskScore         int    `json:"risk_score"`
	RiskLabel         string `json:"risk_label"`
	Recommendation    string `json:"recommendation"`
}

// CohortReport aggregates risk analysis across all students. Bucket counts
// always sum to TotalStudents. Students are sorted by descending risk score;
// ties keep the roster iteration order (stable sort).
type CohortReport struct {
	AnalyzedAt    time.Time        `json:"analyzed_at"`
	TotalStudents int              `json:"total_students"`
	Critical      int              `json:"critical"`
	AtRisk        int              `json:"at_risk"`
	Monitor       int              `json:"monitor"`
	Safe          int              `json:"safe"`
	Students      []StudentRiskRow `json:"students"`
}
