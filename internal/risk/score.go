// Package risk turns attendance history into a bounded heuristic score and
// categorical label. Everything here is a pure function so the scoring rules
// stay testable without a database.
package risk

// Label values ordered from worst to best.
const (
	LabelCritical = "Critical"
	LabelAtRisk   = "At Risk"
	LabelMonitor  = "Monitor"
	LabelSafe     = "Safe"
)

const (
	leaveWeight   = 7
	leaveScoreCap = 40
	maxScore      = 100
)

// Score combines the attendance percentage with the count of approved leaves
// in the recent window. The result is always within [0, 100].
func Score(attendancePercent, leavesInWindow int) int {
	score := 0
	switch {
	case attendancePercent < 60:
		score = 50
	case attendancePercent < 75:
		score = 35
	case attendancePercent < 85:
		score = 15
	}

	leavePenalty := leavesInWindow * leaveWeight
	if leavePenalty > leaveScoreCap {
		leavePenalty = leaveScoreCap
	}
	score += leavePenalty

	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Label maps a score to its categorical bucket.
func Label(score int) string {
	switch {
	case score >= 70:
		return LabelCritical
	case score >= 40:
		return LabelAtRisk
	case score >= 20:
		return LabelMonitor
	default:
		return LabelSafe
	}
}

// Recommendation phrases the follow-up action for a score.
func Recommendation(score int) string {
	if score >= 40 {
		return "Frequent absences detected — counselling recommended."
	}
	return "Attendance and leave pattern within acceptable range."
}
