package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slms-api/internal/models"
)

type fakeTallyReader struct {
	tally *models.AttendanceTally
	err   error
}

func (f *fakeTallyReader) Tally(ctx context.Context, studentID string) (*models.AttendanceTally, error) {
	return f.tally, f.err
}

type fakeLeaveCounter struct {
	count     int
	countErr  error
	approved  []models.LeaveRequest
	lastDay   time.Time
	lastSince time.Time
}

func (f *fakeLeaveCounter) CountInMonth(ctx context.Context, studentID string, day time.Time) (int, error) {
	f.lastDay = day
	return f.count, f.countErr
}

func (f *fakeLeaveCounter) ListApprovedSince(ctx context.Context, studentID string, since time.Time) ([]models.LeaveRequest, error) {
	f.lastSince = since
	return f.approved, nil
}

func TestAttendancePercentRounds(t *testing.T) {
	cases := []struct {
		name           string
		presentOrLeave int
		total          int
		want           int
	}{
		{"perfect", 30, 30, 100},
		{"two thirds", 2, 3, 67},
		{"one third", 1, 3, 33},
		{"half", 1, 2, 50},
		{"rounds up", 7, 8, 88},
		{"none attended", 0, 10, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewAttendanceService(
				&fakeTallyReader{tally: &models.AttendanceTally{PresentOrLeave: tc.presentOrLeave, Total: tc.total}},
				&fakeLeaveCounter{},
				nil,
			)
			got, err := svc.AttendancePercent(context.Background(), "s1")
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

// A brand-new student with no attendance history is not penalised.
func TestAttendancePercentNoRecords(t *testing.T) {
	svc := NewAttendanceService(
		&fakeTallyReader{tally: &models.AttendanceTally{}},
		&fakeLeaveCounter{},
		nil,
	)
	got, err := svc.AttendancePercent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 100, got)
}

func TestAttendancePercentPropagatesError(t *testing.T) {
	svc := NewAttendanceService(
		&fakeTallyReader{err: errors.New("db down")},
		&fakeLeaveCounter{},
		nil,
	)
	_, err := svc.AttendancePercent(context.Background(), "s1")
	require.Error(t, err)
}

func TestMonthlyLeaveCountUsesCurrentMonth(t *testing.T) {
	leaves := &fakeLeaveCounter{count: 3}
	svc := NewAttendanceService(&fakeTallyReader{}, leaves, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }

	got, err := svc.MonthlyLeaveCount(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.Equal(t, time.March, leaves.lastDay.Month())
	assert.Equal(t, 2026, leaves.lastDay.Year())
}

func TestApprovedLeavesInWindow(t *testing.T) {
	leaves := &fakeLeaveCounter{approved: make([]models.LeaveRequest, 2)}
	svc := NewAttendanceService(&fakeTallyReader{}, leaves, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC) }

	got, err := svc.ApprovedLeavesInWindow(context.Background(), "s1", 60)
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), leaves.lastSince)
}
