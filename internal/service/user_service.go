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
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

type userStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, user *models.User) error
	SetAvailability(ctx context.Context, id string, available bool, updatedAt time.Time) error
	Operators(ctx context.Context) ([]models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
}

// UpdateProfileRequest carries the mutable profile fields.
type UpdateProfileRequest struct {
	Name                string  `json:"name" validate:"required"`
	Phone               string  `json:"phone" validate:"required"`
	Zone                string  `json:"zone" validate:"required"`
	PreferredOperatorID *string `json:"preferred_operator_id"`
}

// UserService handles account reads and profile mutation.
type UserService struct {
	repo      userStore
	activity  activityAppender
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewUserService constructs the service.
func NewUserService(repo userStore, activity activityAppender, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{
		repo:      repo,
		activity:  activity,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Get returns a single account.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load user")
	}
	return user, nil
}

// List returns accounts matching the filter with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, *models.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list users")
	}
	if users == nil {
		users = []models.User{}
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	return users, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// Operators returns the PSP directory in stable order.
func (s *UserService) Operators(ctx context.Context) ([]models.User, error) {
	operators, err := s.repo.Operators(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to list operators")
	}
	if operators == nil {
		operators = []models.User{}
	}
	return operators, nil
}

// UpdateProfile mutates an account's profile fields and logs the change.
func (s *UserService) UpdateProfile(ctx context.Context, id string, req UpdateProfileRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = req.Name
	user.Phone = req.Phone
	user.Zone = req.Zone
	user.PreferredOperatorID = req.PreferredOperatorID
	user.UpdatedAt = s.now()

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update profile")
	}

	s.appendActivity(ctx, id, models.ActivityUpdateProfile, fmt.Sprintf("User %s details updated.", user.Name))

	return user, nil
}

// SetAvailability flips an operator's availability flag.
func (s *UserService) SetAvailability(ctx context.Context, id string, available bool) (*models.User, error) {
	if err := s.repo.SetAvailability(ctx, id, available, s.now()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "operator not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update availability")
	}

	state := "unavailable"
	if available {
		state = "available"
	}
	s.appendActivity(ctx, id, models.ActivityUpdateProfile, fmt.Sprintf("Operator marked %s.", state))

	return s.Get(ctx, id)
}

func (s *UserService) appendActivity(ctx context.Context, userID, action, details string) {
	log := &models.ActivityLog{
		ID:        uuid.NewString(),
		UserID:    userID,
		Action:    action,
		Details:   details,
		Timestamp: s.now(),
	}
	if err := s.activity.Append(ctx, log); err != nil {
		s.logger.Warn("failed to append activity log", zap.String("action", action), zap.Error(err))
	}
}
