package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/middleware"
	"github.com/cleanoyo/wasteup-api/internal/models"
	"github.com/cleanoyo/wasteup-api/internal/service"
	"github.com/cleanoyo/wasteup-api/pkg/response"
)

type pickupRepoStub struct {
	items map[string]*models.PickupRequest
}

func (s *pickupRepoStub) Create(ctx context.Context, request *models.PickupRequest, log *models.ActivityLog) error {
	if s.items == nil {
		s.items = make(map[string]*models.PickupRequest)
	}
	cp := *request
	s.items[request.ID] = &cp
	return nil
}

func (s *pickupRepoStub) GetByID(ctx context.Context, id string) (*models.PickupRequest, error) {
	if request, ok := s.items[id]; ok {
		cp := *request
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *pickupRepoStub) UpdateStatus(ctx context.Context, id string, expected, next models.PickupStatus, updatedAt time.Time, log *models.ActivityLog) error {
	request := s.items[id]
	request.Status = next
	request.UpdatedAt = updatedAt
	return nil
}

func (s *pickupRepoStub) List(ctx context.Context, filter models.PickupFilter) ([]models.PickupRequest, int, error) {
	return nil, 0, nil
}

type userStoreStub struct{}

func (userStoreStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	return &models.User{ID: id, Name: "Ayo Balogun", Role: models.RoleResident, Zone: "Bodija"}, nil
}

func (userStoreStub) Operators(ctx context.Context) ([]models.User, error) {
	return []models.User{{ID: "o1", Name: "CleanOyo Services", Role: models.RolePSPOperator, Zone: "Bodija"}}, nil
}

type dispatcherStub struct{}

func (dispatcherStub) Dispatch(event models.NotificationEvent) {}

func newPickupHandler() (*PickupHandler, *pickupRepoStub) {
	repo := &pickupRepoStub{}
	svc := service.NewPickupService(repo, userStoreStub{}, dispatcherStub{}, nil, nil)
	return NewPickupHandler(svc), repo
}

func testContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(method, target, bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestPickupHandlerCreate(t *testing.T) {
	handler, _ := newPickupHandler()

	body, _ := json.Marshal(map[string]string{
		"waste_type":   string(models.WasteGeneral),
		"house_number": "12",
		"street_name":  "Awolowo Avenue",
	})
	c, w := testContext(t, http.MethodPost, "/requests", body)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleResident})

	handler.Create(c)
	require.Equal(t, http.StatusCreated, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestPickupHandlerCreateInvalidBody(t *testing.T) {
	handler, _ := newPickupHandler()

	c, w := testContext(t, http.MethodPost, "/requests", []byte(`not json`))
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: models.RoleResident})

	handler.Create(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPickupHandlerCreateWithoutClaims(t *testing.T) {
	handler, _ := newPickupHandler()

	c, w := testContext(t, http.MethodPost, "/requests", []byte(`{}`))

	handler.Create(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPickupHandlerUpdateStatusUnknownRequest(t *testing.T) {
	handler, _ := newPickupHandler()

	body, _ := json.Marshal(map[string]string{"status": string(models.StatusScheduled)})
	c, w := testContext(t, http.MethodPatch, "/requests/missing/status", body)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin", Role: models.RoleAdmin})

	handler.UpdateStatus(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPickupHandlerGetNotFound(t *testing.T) {
	handler, _ := newPickupHandler()

	c, w := testContext(t, http.MethodGet, "/requests/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}

	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
