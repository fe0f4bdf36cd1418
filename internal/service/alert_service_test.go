package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type fakeAlertRepo struct {
	alerts     []models.AlertDetail
	listErr    error
	resolved   bool
	resolveErr error
	lastAlert  string
	lastMentor string
}

func (f *fakeAlertRepo) ListUnresolvedByMentor(ctx context.Context, mentorID string) ([]models.AlertDetail, error) {
	return f.alerts, f.listErr
}

func (f *fakeAlertRepo) Resolve(ctx context.Context, id, mentorID string) (bool, error) {
	f.lastAlert = id
	f.lastMentor = mentorID
	return f.resolved, f.resolveErr
}

func TestUnresolvedListsAlerts(t *testing.T) {
	repo := &fakeAlertRepo{alerts: []models.AlertDetail{{StudentName: "A"}, {StudentName: "B"}}}
	svc := NewAlertService(repo, nil)

	alerts, err := svc.Unresolved(context.Background(), "mentor-1")
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
}

func TestResolveScopesToMentor(t *testing.T) {
	repo := &fakeAlertRepo{resolved: true}
	svc := NewAlertService(repo, nil)

	err := svc.Resolve(context.Background(), "alert-1", "mentor-1")
	require.NoError(t, err)
	assert.Equal(t, "alert-1", repo.lastAlert)
	assert.Equal(t, "mentor-1", repo.lastMentor)
}

func TestResolveNotFoundOrAlreadyResolved(t *testing.T) {
	svc := NewAlertService(&fakeAlertRepo{resolved: false}, nil)

	err := svc.Resolve(context.Background(), "alert-1", "mentor-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResolvePropagatesRepoError(t *testing.T) {
	svc := NewAlertService(&fakeAlertRepo{resolveErr: errors.New("db down")}, nil)

	err := svc.Resolve(context.Background(), "alert-1", "mentor-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
