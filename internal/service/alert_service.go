package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/slms-api/internal/models"
	appErrors "github.com/noah-isme/slms-api/pkg/errors"
)

type alertRepository interface {
	ListUnresolvedByMentor(ctx context.Context, mentorID string) ([]models.AlertDetail, error)
	Resolve(ctx context.Context, id, mentorID string) (bool, error)
}

// AlertService serves mentor-facing absence alert operations.
type AlertService struct {
	repo   alertRepository
	logger *zap.Logger
}

// NewAlertService constructs an AlertService.
func NewAlertService(repo alertRepository, logger *zap.Logger) *AlertService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AlertService{repo: repo, logger: logger}
}

// Unresolved lists open alerts for the mentor's roster, newest first.
func (s *AlertService) Unresolved(ctx context.Context, mentorID string) ([]models.AlertDetail, error) {
	alerts, err := s.repo.ListUnresolvedByMentor(ctx, mentorID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list alerts")
	}
	return alerts, nil
}

// Resolve marks one alert handled. Resolution is one-way; resolving an alert
// that is already resolved, missing, or outside the mentor's roster is a 404.
func (s *AlertService) Resolve(ctx context.Context, alertID, mentorID string) error {
	resolved, err := s.repo.Resolve(ctx, alertID, mentorID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve alert")
	}
	if !resolved {
		return appErrors.Clone(appErrors.ErrNotFound, "alert not found, already resolved, or not yours to resolve")
	}
	return nil
}
