package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/repository"
)

type mockAggregator struct {
	counts     []models.StatusCount
	zones      []models.ZoneSummary
	countCalls int
}

func (m *mockAggregator) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	m.countCalls++
	return m.counts, nil
}

func (m *mockAggregator) ZoneSummaries(ctx context.Context) ([]models.ZoneSummary, error) {
	return m.zones, nil
}

type mockRoleCounter struct {
	residents int
	operators int
}

func (m *mockRoleCounter) CountByRole(ctx context.Context, role models.UserRole) (int, error) {
	if role == models.RoleResident {
		return m.residents, nil
	}
	return m.operators, nil
}

type mockRecentActivity struct {
	entries []models.ActivityLog
	err     error
}

func (m *mockRecentActivity) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries, nil
}

func newDashboardFixture(t *testing.T, withCache bool) (*DashboardService, *mockAggregator) {
	t.Helper()
	pickups := &mockAggregator{
		counts: []models.StatusCount{
			{Status: models.StatusPending, Count: 3},
			{Status: models.StatusCompleted, Count: 7},
		},
		zones: []models.ZoneSummary{{Zone: "Bodija", ActiveRequests: 3, Operators: 1}},
	}

	var cacheSvc *CacheService
	if withCache {
		mr := miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		cacheSvc = NewCacheService(repository.NewCacheRepository(client, nil), nil, time.Minute, nil)
	}

	svc := NewDashboardService(DashboardServiceParams{
		Pickups:  pickups,
		Users:    &mockRoleCounter{residents: 12, operators: 2},
		Activity: &mockRecentActivity{entries: []models.ActivityLog{{ID: "a1", Action: models.ActivityCreatePickup}}},
		Cache:    cacheSvc,
		CacheTTL: time.Minute,
	})
	return svc, pickups
}

func TestOverviewAggregates(t *testing.T) {
	svc, _ := newDashboardFixture(t, false)

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 10, overview.TotalRequests)
	assert.Equal(t, 12, overview.TotalResidents)
	assert.Equal(t, 2, overview.TotalOperators)
	require.Len(t, overview.ZoneSummaries, 1)
	assert.Equal(t, "Bodija", overview.ZoneSummaries[0].Zone)
	require.Len(t, overview.RecentActivity, 1)
}

func TestOverviewServedFromCache(t *testing.T) {
	svc, pickups := newDashboardFixture(t, true)

	first, err := svc.Overview(context.Background())
	require.NoError(t, err)

	second, err := svc.Overview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first.TotalRequests, second.TotalRequests)
	assert.Equal(t, 1, pickups.countCalls)
}

func TestOverviewToleratesActivityFailure(t *testing.T) {
	pickups := &mockAggregator{}
	svc := NewDashboardService(DashboardServiceParams{
		Pickups:  pickups,
		Users:    &mockRoleCounter{},
		Activity: &mockRecentActivity{err: assert.AnError},
	})

	overview, err := svc.Overview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, overview.RecentActivity)
}
