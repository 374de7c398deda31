package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/textgen"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

type mockNotificationRepo struct {
	mu      sync.Mutex
	records []models.NotificationRecord
	cleared []string
	readIDs []string
	markErr error
}

func (m *mockNotificationRepo) Create(ctx context.Context, record *models.NotificationRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, *record)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID string) ([]models.NotificationRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NotificationRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readIDs = append(m.readIDs, id)
	return nil
}

func (m *mockNotificationRepo) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = append(m.cleared, userID)
	return nil
}

type staticGenerator struct {
	text string
}

func (g staticGenerator) Generate(ctx context.Context, kind textgen.PromptKind, promptContext map[string]string) (string, error) {
	return g.text, nil
}

func TestDispatchPersistsWithFallbackCopy(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, textgen.Disabled{}, nil, NotificationConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	received, cancel := svc.Subscribe()
	defer cancel()

	svc.Dispatch(models.NotificationEvent{
		Kind:      models.NotifyPickupConfirmation,
		Recipient: models.User{ID: "u1", Role: models.RoleResident},
		Context:   map[string]string{"waste_type": "General Household", "zone": "Bodija"},
	})

	select {
	case record := <-received:
		assert.Equal(t, "u1", record.UserID)
		assert.Equal(t, models.NotifyPickupConfirmation, record.Type)
		assert.Equal(t, models.MediumEmail, record.Medium)
		assert.Equal(t, "Waste Up Ibadan: Your General Household pickup at Bodija is confirmed.", record.Message)
		assert.False(t, record.IsRead)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never published")
	}

	records, err := svc.List(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestDispatchUsesGeneratedCopyWhenAvailable(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, staticGenerator{text: "E kaaro! Your pickup is on the way."}, nil, NotificationConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	received, cancel := svc.Subscribe()
	defer cancel()

	svc.Dispatch(models.NotificationEvent{
		Kind:      models.NotifyStatusUpdate,
		Recipient: models.User{ID: "u1"},
		Context:   map[string]string{"status": string(models.StatusOnTheWay), "zone": "Bodija"},
	})

	select {
	case record := <-received:
		assert.Equal(t, "E kaaro! Your pickup is on the way.", record.Message)
		assert.Equal(t, models.MediumSMS, record.Medium)
	case <-time.After(2 * time.Second):
		t.Fatal("notification was never published")
	}
}

func TestDispatchBeforeStartIsSwallowed(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, textgen.Disabled{}, nil, NotificationConfig{Workers: 1})

	// The queue is not started: the event is dropped, never panics.
	svc.Dispatch(models.NotificationEvent{
		Kind:      models.NotifyNewJob,
		Recipient: models.User{ID: "o1"},
	})

	records, err := svc.List(context.Background(), "o1")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFallbackMessageCopy(t *testing.T) {
	ctx := map[string]string{"waste_type": "Organic/Food Waste", "zone": "Dugbe", "status": string(models.StatusScheduled)}

	assert.Equal(t,
		"Waste Up Ibadan: Your Organic/Food Waste pickup at Dugbe is confirmed.",
		FallbackMessage(models.NotifyPickupConfirmation, ctx))
	assert.Equal(t,
		"Waste Up Ibadan: New Organic/Food Waste pickup assigned to you in Dugbe.",
		FallbackMessage(models.NotifyNewJob, ctx))
	assert.Equal(t,
		"Waste Up Ibadan: Your pickup status has been updated to SCHEDULED.",
		FallbackMessage(models.NotifyStatusUpdate, ctx))

	ctx["status"] = string(models.StatusOnTheWay)
	assert.Equal(t,
		"Waste Up Ibadan: Your collection driver is en route to Dugbe.",
		FallbackMessage(models.NotifyStatusUpdate, ctx))

	ctx["status"] = string(models.StatusCompleted)
	assert.Equal(t,
		"Waste Up Ibadan: Your pickup is completed. Thank you for keeping Oyo clean.",
		FallbackMessage(models.NotifyStatusUpdate, ctx))

	assert.Equal(t,
		"Waste Up Ibadan: You have a new update on your account.",
		FallbackMessage("SOMETHING_ELSE", nil))
}

func TestMarkReadNotFound(t *testing.T) {
	repo := &mockNotificationRepo{markErr: sql.ErrNoRows}
	svc := NewNotificationService(repo, textgen.Disabled{}, nil, NotificationConfig{})

	err := svc.MarkRead(context.Background(), "n1", "u1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestClearRemovesRecipientRecords(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, textgen.Disabled{}, nil, NotificationConfig{})

	require.NoError(t, svc.Clear(context.Background(), "u1"))
	assert.Equal(t, []string{"u1"}, repo.cleared)
}

func TestSubscribeCancelReleasesChannel(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := NewNotificationService(repo, textgen.Disabled{}, nil, NotificationConfig{Workers: 1})
	svc.Start(context.Background())
	defer svc.Stop()

	ch, cancel := svc.Subscribe()
	cancel()

	_, open := <-ch
	assert.False(t, open)
}
