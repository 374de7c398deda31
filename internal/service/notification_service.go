package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/textgen"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
	"github.com/cleanoyo/wasteup-api/pkg/jobs"
)

type notificationStore interface {
	Create(ctx context.Context, record *models.NotificationRecord) error
	ListByUser(ctx context.Context, userID string) ([]models.NotificationRecord, error)
	MarkRead(ctx context.Context, id, userID string) error
	DeleteByUser(ctx context.Context, userID string) error
}

// NotificationConfig tunes the dispatch queue and subscriber channels.
type NotificationConfig struct {
	Workers       int
	BufferSize    int
	SubscriberBuf int
}

// NotificationService owns NotificationRecord creation. Events are composed
// and persisted asynchronously: a lifecycle transition commits regardless of
// whether its notification ever goes out, and delivery to live subscribers
// is at-most-once with no retry.
type NotificationService struct {
	repo   notificationStore
	gen    textgen.Generator
	logger *zap.Logger
	queue  *jobs.Queue
	now    func() time.Time

	mu          sync.Mutex
	subscribers map[int]chan models.NotificationRecord
	nextSubID   int
	subBuf      int
}

// NewNotificationService constructs the dispatcher. Start must be called
// before events are accepted.
func NewNotificationService(repo notificationStore, gen textgen.Generator, logger *zap.Logger, cfg NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gen == nil {
		gen = textgen.Disabled{}
	}
	if cfg.SubscriberBuf <= 0 {
		cfg.SubscriberBuf = 16
	}

	s := &NotificationService{
		repo:        repo,
		gen:         gen,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		subscribers: make(map[int]chan models.NotificationRecord),
		subBuf:      cfg.SubscriberBuf,
	}

	s.queue = jobs.NewQueue("notifications", s.process, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: 0,
		Logger:     logger,
	})

	return s
}

// Start launches the dispatch workers.
func (s *NotificationService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	s.queue.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		close(ch)
		delete(s.subscribers, id)
	}
}

// Dispatch queues an event for asynchronous fan-out. Failures are logged and
// swallowed; a notification must never fail the operation that triggered it.
func (s *NotificationService) Dispatch(event models.NotificationEvent) {
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    event.Kind,
		Payload: event,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("notification dropped",
			zap.String("kind", event.Kind),
			zap.String("recipient", event.Recipient.ID),
			zap.Error(err))
	}
}

// Subscribe registers a live listener for dispatched notifications. The
// returned cancel func must be called to release the channel. Slow consumers
// miss messages rather than slowing dispatch.
func (s *NotificationService) Subscribe() (<-chan models.NotificationRecord, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.NotificationRecord, s.subBuf)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if ch, ok := s.subscribers[id]; ok {
			close(ch)
			delete(s.subscribers, id)
		}
	}
	return ch, cancel
}

// List returns the recipient's notifications.
func (s *NotificationService) List(ctx context.Context, userID string) ([]models.NotificationRecord, error) {
	records, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list notifications")
	}
	if records == nil {
		records = []models.NotificationRecord{}
	}
	return records, nil
}

// MarkRead flags one notification as read for its recipient.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to mark notification read")
	}
	return nil
}

// Clear removes all of the recipient's notifications. Hard delete, no undo.
func (s *NotificationService) Clear(ctx context.Context, userID string) error {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to clear notifications")
	}
	return nil
}

func (s *NotificationService) process(ctx context.Context, job jobs.Job) error {
	event, ok := job.Payload.(models.NotificationEvent)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID))
		return nil
	}

	record := models.NotificationRecord{
		ID:        uuid.NewString(),
		UserID:    event.Recipient.ID,
		Type:      event.Kind,
		Message:   s.compose(ctx, event),
		Medium:    mediumFor(event.Kind),
		Timestamp: s.now(),
		IsRead:    false,
	}

	if err := s.repo.Create(ctx, &record); err != nil {
		// Logged, not retried: the triggering operation already succeeded.
		s.logger.Error("failed to persist notification",
			zap.String("kind", event.Kind),
			zap.String("recipient", event.Recipient.ID),
			zap.Error(err))
		return nil
	}

	s.publish(record)
	return nil
}

// compose asks the text-generation collaborator for copy and falls back to
// the deterministic template on any failure. The fallback is a correctness
// requirement: the collaborator is rate-limited and frequently offline.
func (s *NotificationService) compose(ctx context.Context, event models.NotificationEvent) string {
	text, err := s.gen.Generate(ctx, promptFor(event.Kind), event.Context)
	if err != nil || text == "" {
		if err != nil && !errors.Is(err, textgen.ErrUnavailable) {
			s.logger.Warn("text generation failed", zap.String("kind", event.Kind), zap.Error(err))
		}
		return FallbackMessage(event.Kind, event.Context)
	}
	return text
}

func (s *NotificationService) publish(record models.NotificationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- record:
		default:
		}
	}
}

// FallbackMessage returns the static template for an event kind. Exposed for
// tests that pin the documented copy.
func FallbackMessage(kind string, context map[string]string) string {
	switch kind {
	case models.NotifyPickupConfirmation:
		return fmt.Sprintf("Waste Up Ibadan: Your %s pickup at %s is confirmed.", context["waste_type"], context["zone"])
	case models.NotifyNewJob:
		return fmt.Sprintf("Waste Up Ibadan: New %s pickup assigned to you in %s.", context["waste_type"], context["zone"])
	case models.NotifyStatusUpdate:
		switch models.PickupStatus(context["status"]) {
		case models.StatusOnTheWay:
			return fmt.Sprintf("Waste Up Ibadan: Your collection driver is en route to %s.", context["zone"])
		case models.StatusCompleted:
			return "Waste Up Ibadan: Your pickup is completed. Thank you for keeping Oyo clean."
		default:
			return fmt.Sprintf("Waste Up Ibadan: Your pickup status has been updated to %s.", context["status"])
		}
	default:
		return "Waste Up Ibadan: You have a new update on your account."
	}
}

func promptFor(kind string) textgen.PromptKind {
	switch kind {
	case models.NotifyPickupConfirmation:
		return textgen.PromptConfirmationEmail
	default:
		return textgen.PromptStatusSMS
	}
}

func mediumFor(kind string) models.NotificationMedium {
	switch kind {
	case models.NotifyPickupConfirmation:
		return models.MediumEmail
	case models.NotifyNewJob, models.NotifyStatusUpdate:
		return models.MediumSMS
	default:
		return models.MediumSystem
	}
}
