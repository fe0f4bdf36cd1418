package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreBands(t *testing.T) {
	cases := []struct {
		name       string
		attendance int
		leaves     int
		want       int
	}{
		{"perfect attendance no leaves", 100, 0, 0},
		{"boundary 85 scores zero base", 85, 0, 0},
		{"boundary 84 scores low base", 84, 0, 15},
		{"boundary 75", 75, 0, 15},
		{"boundary 74", 74, 0, 35},
		{"boundary 60", 60, 0, 35},
		{"boundary 59", 59, 0, 50},
		{"leaves add seven each", 90, 2, 14},
		{"leave penalty caps at forty", 90, 10, 40},
		{"total clamps at hundred", 50, 10, 90},
		{"worst case stays bounded", 0, 100, 90},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Score(tc.attendance, tc.leaves))
		})
	}
}

func TestScoreScenarios(t *testing.T) {
	// 44 present of 50 days => 88%, one approved leave in the window.
	assert.Equal(t, 7, Score(88, 1))
	assert.Equal(t, LabelSafe, Label(Score(88, 1)))

	// 65% attendance with three recent leaves.
	assert.Equal(t, 56, Score(65, 3))
	assert.Equal(t, LabelAtRisk, Label(Score(65, 3)))
}

func TestScoreMonotonicity(t *testing.T) {
	for leaves := 0; leaves <= 8; leaves++ {
		prev := Score(0, leaves)
		for p := 1; p <= 100; p++ {
			cur := Score(p, leaves)
			assert.LessOrEqual(t, cur, prev, "score must not increase with attendance (p=%d leaves=%d)", p, leaves)
			prev = cur
		}
	}
	for p := 0; p <= 100; p += 5 {
		prev := Score(p, 0)
		for leaves := 1; leaves <= 20; leaves++ {
			cur := Score(p, leaves)
			assert.GreaterOrEqual(t, cur, prev, "score must not decrease with leaves (p=%d leaves=%d)", p, leaves)
			assert.LessOrEqual(t, cur, 100)
			prev = cur
		}
	}
}

func TestLabelBuckets(t *testing.T) {
	assert.Equal(t, LabelSafe, Label(0))
	assert.Equal(t, LabelSafe, Label(19))
	assert.Equal(t, LabelMonitor, Label(20))
	assert.Equal(t, LabelMonitor, Label(39))
	assert.Equal(t, LabelAtRisk, Label(40))
	assert.Equal(t, LabelAtRisk, Label(69))
	assert.Equal(t, LabelCritical, Label(70))
	assert.Equal(t, LabelCritical, Label(100))
}

func TestRecommendation(t *testing.T) {
	assert.Contains(t, Recommendation(40), "counselling recommended")
	assert.Contains(t, Recommendation(39), "acceptable range")
}
