package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
	appErrors "github.com/cleanoyo/wasteup-api/pkg/errors"
)

type mockAuthUserStore struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User
	created []models.User
}

func (m *mockAuthUserStore) Create(ctx context.Context, user *models.User) error {
	if m.byEmail == nil {
		m.byEmail = make(map[string]*models.User)
	}
	if m.byID == nil {
		m.byID = make(map[string]*models.User)
	}
	cp := *user
	m.byEmail[strings.ToLower(user.Email)] = &cp
	m.byID[user.ID] = &cp
	m.created = append(m.created, cp)
	return nil
}

func (m *mockAuthUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.byEmail[strings.ToLower(email)]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAuthUserStore) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.byID[id]; ok {
		cp := *user
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type mockActivityAppender struct {
	logs []models.ActivityLog
}

func (m *mockActivityAppender) Append(ctx context.Context, log *models.ActivityLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func newAuthFixture() (*AuthService, *mockAuthUserStore, *mockActivityAppender) {
	store := &mockAuthUserStore{}
	activity := &mockActivityAppender{}
	svc := NewAuthService(store, activity, nil, nil, AuthConfig{Secret: "test-secret", Issuer: "wasteup"})
	return svc, store, activity
}

func registerPayload(role models.UserRole) models.RegisterRequest {
	return models.RegisterRequest{
		Name:     "Ayo Balogun",
		Email:    "ayo@example.com",
		Phone:    "+2348000000003",
		Password: "secret123",
		Role:     role,
		Zone:     "Bodija",
	}
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, store, activity := newAuthFixture()

	resp, err := svc.Register(context.Background(), registerPayload(models.RoleResident))
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, models.RoleResident, resp.User.Role)
	require.Len(t, store.created, 1)
	assert.NotEqual(t, "secret123", store.created[0].PasswordHash)
	assert.Nil(t, store.created[0].Availability)

	require.Len(t, activity.logs, 1)
	assert.Equal(t, models.ActivityRegister, activity.logs[0].Action)
}

func TestRegisterOperatorStartsAvailable(t *testing.T) {
	svc, store, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), registerPayload(models.RolePSPOperator))
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	require.NotNil(t, store.created[0].Availability)
	assert.True(t, *store.created[0].Availability)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), registerPayload(models.RoleResident))
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerPayload(models.RoleResident))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrDuplicateEmail.Code, appErrors.FromError(err).Code)
}

func TestLoginRoundTrip(t *testing.T) {
	svc, _, activity := newAuthFixture()

	_, err := svc.Register(context.Background(), registerPayload(models.RoleResident))
	require.NoError(t, err)

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ayo@example.com",
		Password: "secret123",
		Role:     models.RoleResident,
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, models.RoleResident, claims.Role)
	assert.Equal(t, "Bodija", claims.Zone)

	require.Len(t, activity.logs, 2)
	assert.Equal(t, models.ActivityLogin, activity.logs[1].Action)
}

func TestLoginRoleTabMismatch(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), registerPayload(models.RoleResident))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "ayo@example.com",
		Password: "secret123",
		Role:     models.RolePSPOperator,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrRoleMismatch.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), registerPayload(models.RoleResident))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), models.LoginRequest{
		Email:    "ayo@example.com",
		Password: "wrong-password",
		Role:     models.RoleResident,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsTampering(t *testing.T) {
	svc, _, _ := newAuthFixture()

	resp, err := svc.Register(context.Background(), registerPayload(models.RoleResident))
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken + "x")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	other := NewAuthService(&mockAuthUserStore{}, &mockActivityAppender{}, nil, nil, AuthConfig{Secret: "different-secret"})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
}
