package service

import (
	"context"

	"github.com/cleanoyo/wasteup-api/internal/models"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

type activityLister interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error)
}

// ActivityService exposes reads over the append-only activity log.
type ActivityService struct {
	repo activityLister
}

// NewActivityService constructs the service.
func NewActivityService(repo activityLister) *ActivityService {
	return &ActivityService{repo: repo}
}

// List returns log entries matching the filter.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, *models.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list activity logs")
	}
	if logs == nil {
		logs = []models.ActivityLog{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}

	return logs, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}
