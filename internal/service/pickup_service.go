package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/repository"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

type pickupStore interface {
	Create(ctx context.Context, request *models.PickupRequest, log *models.ActivityLog) error
	GetByID(ctx context.Context, id string) (*models.PickupRequest, error)
	UpdateStatus(ctx context.Context, id string, expected, next models.PickupStatus, updatedAt time.Time, log *models.ActivityLog) error
	List(ctx context.Context, filter models.PickupFilter) ([]models.PickupRequest, int, error)
}

type pickupUserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	Operators(ctx context.Context) ([]models.User, error)
}

type eventDispatcher interface {
	Dispatch(event models.NotificationEvent)
}

// CreatePickupRequest is the payload for a new pickup request. ResidentID is
// only honoured for manual entries by operators or admins; residents always
// create for themselves.
type CreatePickupRequest struct {
	ResidentID          string           `json:"resident_id"`
	WasteType           models.WasteType `json:"waste_type" validate:"required"`
	Priority            models.Priority  `json:"priority"`
	Zone                string           `json:"zone"`
	HouseNumber         string           `json:"house_number" validate:"required"`
	StreetName          string           `json:"street_name" validate:"required"`
	Landmark            string           `json:"landmark"`
	ContactPhone        string           `json:"contact_phone"`
	ScheduledDate       string           `json:"scheduled_date"`
	Notes               string           `json:"notes"`
	PreferredOperatorID string           `json:"preferred_operator_id"`
	Lat                 *float64         `json:"lat"`
	Lng                 *float64         `json:"lng"`
}

// PickupService is the request lifecycle engine. It exclusively owns
// PickupRequest mutation: creation runs the assignment resolver, status
// changes are validated against the transition table, and every successful
// mutation appends exactly one activity entry and fans out notifications
// after the write commits.
type PickupService struct {
	repo      pickupStore
	users     pickupUserStore
	notifier  eventDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPickupService constructs the lifecycle engine.
func NewPickupService(repo pickupStore, users pickupUserStore, notifier eventDispatcher, validate *validator.Validate, logger *zap.Logger) *PickupService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PickupService{
		repo:      repo,
		users:     users,
		notifier:  notifier,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the payload, resolves an operator and persists the new
// request in PENDING state. Returns the stored record with generated id and
// timestamps.
func (s *PickupService) Create(ctx context.Context, actor *models.JWTClaims, req CreatePickupRequest) (*models.PickupRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pickup payload")
	}
	if !req.WasteType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown waste type %q", req.WasteType))
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !req.Priority.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown priority %q", req.Priority))
	}

	resident, err := s.resolveResident(ctx, actor, req.ResidentID)
	if err != nil {
		return nil, err
	}

	zone := req.Zone
	if zone == "" {
		zone = resident.Zone
	}
	contactPhone := req.ContactPhone
	if contactPhone == "" {
		contactPhone = resident.Phone
	}
	scheduledDate := req.ScheduledDate
	if scheduledDate == "" {
		scheduledDate = s.now().Format("2006-01-02")
	}

	preferred := req.PreferredOperatorID
	if preferred == "" && resident.PreferredOperatorID != nil {
		preferred = *resident.PreferredOperatorID
	}

	pool, err := s.users.Operators(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load operator pool")
	}
	operator := ResolveOperator(zone, preferred, pool)

	ts := s.now()
	request := &models.PickupRequest{
		ID:            uuid.NewString(),
		ResidentID:    resident.ID,
		ResidentName:  resident.Name,
		Zone:          zone,
		HouseNumber:   req.HouseNumber,
		StreetName:    req.StreetName,
		Landmark:      req.Landmark,
		ContactPhone:  contactPhone,
		Lat:           req.Lat,
		Lng:           req.Lng,
		WasteType:     req.WasteType,
		Priority:      req.Priority,
		ScheduledDate: scheduledDate,
		Status:        models.StatusPending,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
	if req.Notes != "" {
		notes := req.Notes
		request.Notes = &notes
	}
	if operator != nil {
		request.OperatorID = &operator.ID
		request.OperatorName = &operator.Name
	}

	log := &models.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    actor.UserID,
		Action:    models.ActivityCreatePickup,
		Details:   fmt.Sprintf("New %s request created for %s.", request.WasteType, request.Zone),
		Timestamp: ts,
	}

	if err := s.repo.Create(ctx, request, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to persist pickup request")
	}

	s.notifier.Dispatch(models.NotificationEvent{
		Kind:      models.NotifyPickupConfirmation,
		Recipient: *resident,
		Context: map[string]string{
			"waste_type":     string(request.WasteType),
			"zone":           request.Zone,
			"scheduled_date": request.ScheduledDate,
			"resident_name":  resident.Name,
		},
	})
	if operator != nil {
		s.notifier.Dispatch(models.NotificationEvent{
			Kind:      models.NotifyNewJob,
			Recipient: *operator,
			Context: map[string]string{
				"waste_type": string(request.WasteType),
				"zone":       request.Zone,
				"priority":   string(request.Priority),
			},
		})
	}

	return request, nil
}

// UpdateStatus transitions a request along the lifecycle graph. Requesting
// the current status is a no-op success: the portal's status dropdown
// resubmits unchanged values, so the same state is answered with the stored
// record, no activity entry and no updatedAt bump.
func (s *PickupService) UpdateStatus(ctx context.Context, requestID, actorID string, next models.PickupStatus) (*models.PickupRequest, error) {
	if !next.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", next))
	}

	current, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pickup request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load pickup request")
	}

	if current.Status == next {
		return current, nil
	}

	if !current.Status.CanTransitionTo(next) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", current.Status, next))
	}

	ts := s.now()
	log := &models.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    actorID,
		Action:    models.ActivityUpdateStatus,
		Details:   fmt.Sprintf("Request #%s status updated from %s to %s", shortID(requestID), current.Status, next),
		Timestamp: ts,
	}

	if err := s.repo.UpdateStatus(ctx, requestID, current.Status, next, ts, log); err != nil {
		if errors.Is(err, repository.ErrStatusChanged) {
			return nil, appErrors.Clone(appErrors.ErrConflict,
				fmt.Sprintf("pickup request was modified concurrently, expected status %s", current.Status))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update pickup status")
	}

	updated := *current
	updated.Status = next
	updated.UpdatedAt = ts

	s.notifyResident(ctx, &updated)

	return &updated, nil
}

// Get returns a single request.
func (s *PickupService) Get(ctx context.Context, id string) (*models.PickupRequest, error) {
	request, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "pickup request not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load pickup request")
	}
	return request, nil
}

// List returns requests visible to the actor: residents see their own,
// operators their assignments, admins everything.
func (s *PickupService) List(ctx context.Context, actor *models.JWTClaims, filter models.PickupFilter) ([]models.PickupRequest, *models.Pagination, error) {
	switch actor.Role {
	case models.RoleResident:
		filter.ResidentID = actor.UserID
		filter.OperatorID = ""
	case models.RolePSPOperator:
		filter.OperatorID = actor.UserID
		filter.ResidentID = ""
	case models.RoleAdmin:
		// unrestricted
	default:
		return nil, nil, appErrors.ErrForbidden
	}

	requests, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list pickup requests")
	}
	if requests == nil {
		requests = []models.PickupRequest{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return requests, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

func (s *PickupService) resolveResident(ctx context.Context, actor *models.JWTClaims, residentID string) (*models.User, error) {
	targetID := actor.UserID
	if actor.Role != models.RoleResident && residentID != "" {
		targetID = residentID
	}

	user, err := s.users.FindByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "resident does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load resident")
	}

	// Manual entries by operators stand in as the origin themselves.
	if user.Role != models.RoleResident && actor.Role == models.RoleResident {
		return nil, appErrors.Clone(appErrors.ErrValidation, "actor is not a resident")
	}
	if actor.Role != models.RoleResident && residentID != "" && user.Role != models.RoleResident {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resident_id does not reference a resident account")
	}

	return user, nil
}

func (s *PickupService) notifyResident(ctx context.Context, request *models.PickupRequest) {
	resident, err := s.users.FindByID(ctx, request.ResidentID)
	if err != nil {
		s.logger.Warn("skipping status notification, resident lookup failed",
			zap.String("request_id", request.ID), zap.Error(err))
		return
	}
	s.notifier.Dispatch(models.NotificationEvent{
		Kind:      models.NotifyStatusUpdate,
		Recipient: *resident,
		Context: map[string]string{
			"status":     string(request.Status),
			"waste_type": string(request.WasteType),
			"zone":       request.Zone,
		},
	})
}

func shortID(id string) string {
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}
