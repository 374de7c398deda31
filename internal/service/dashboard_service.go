package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cleanoyo/wasteup-api/internal/models"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:overview"

type pickupAggregator interface {
	CountByStatus(ctx context.Context) ([]models.StatusCount, error)
	ZoneSummaries(ctx context.Context) ([]models.ZoneSummary, error)
}

type roleCounter interface {
	CountByRole(ctx context.Context, role models.UserRole) (int, error)
}

type recentActivityLister interface {
	Recent(ctx context.Context, limit int) ([]models.ActivityLog, error)
}

// DashboardServiceParams groups constructor dependencies.
type DashboardServiceParams struct {
	Pickups  pickupAggregator
	Users    roleCounter
	Activity recentActivityLister
	Cache    *CacheService
	Logger   *zap.Logger
	CacheTTL time.Duration
}

// DashboardService composes the admin overview payload.
type DashboardService struct {
	pickups  pickupAggregator
	users    roleCounter
	activity recentActivityLister
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService with sane defaults.
func NewDashboardService(params DashboardServiceParams) *DashboardService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DashboardService{
		pickups:  params.Pickups,
		users:    params.Users,
		activity: params.Activity,
		cache:    params.Cache,
		logger:   logger,
		cacheTTL: ttl,
	}
}

// Overview returns the cached admin landing payload, rebuilding it when the
// cache misses.
func (s *DashboardService) Overview(ctx context.Context) (*models.DashboardOverview, error) {
	var cached models.DashboardOverview
	if hit, _ := s.cache.Get(ctx, dashboardCacheKey, &cached); hit {
		return &cached, nil
	}

	counts, err := s.pickups.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to aggregate pickup counts")
	}
	total := 0
	for _, c := range counts {
		total += c.Count
	}

	zones, err := s.pickups.ZoneSummaries(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to aggregate zones")
	}

	residents, err := s.users.CountByRole(ctx, models.RoleResident)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to count residents")
	}
	operators, err := s.users.CountByRole(ctx, models.RolePSPOperator)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to count operators")
	}

	recent, err := s.activity.Recent(ctx, 10)
	if err != nil {
		s.logger.Warn("failed to load recent activity", zap.Error(err))
		recent = []models.ActivityLog{}
	}

	overview := &models.DashboardOverview{
		TotalRequests:  total,
		StatusCounts:   counts,
		ZoneSummaries:  zones,
		TotalResidents: residents,
		TotalOperators: operators,
		RecentActivity: recent,
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, overview, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard overview", zap.Error(err))
	}

	return overview, nil
}
