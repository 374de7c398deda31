package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
)

func pickupRows(now time.Time, status models.PickupStatus) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "resident_id", "resident_name", "operator_id", "operator_name", "zone", "house_number", "street_name", "landmark", "contact_phone", "lat", "lng", "waste_type", "priority", "scheduled_date", "status", "notes", "created_at", "updated_at"}).
		AddRow("p1", "u1", "Ayo Balogun", "o1", "CleanOyo Services", "Bodija", "12", "Awolowo Avenue", "", "+2348000000003", nil, nil, string(models.WasteGeneral), string(models.PriorityMedium), "2026-09-02", string(status), nil, now, now)
}

func TestCreatePickupCommitsRequestAndActivity(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pickup_requests").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO activity_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	now := time.Now()
	request := &models.PickupRequest{
		ID: "p1", ResidentID: "u1", ResidentName: "Ayo Balogun", Zone: "Bodija",
		HouseNumber: "12", StreetName: "Awolowo Avenue", WasteType: models.WasteGeneral,
		Priority: models.PriorityMedium, Status: models.StatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	log := &models.ActivityLog{ID: "a1", UserID: "u1", Action: models.ActivityCreatePickup, Timestamp: now}

	err := repo.Create(context.Background(), request, log)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePickupRollsBackOnActivityFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO pickup_requests").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO activity_logs").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	now := time.Now()
	err := repo.Create(context.Background(),
		&models.PickupRequest{ID: "p1", Status: models.StatusPending, CreatedAt: now, UpdatedAt: now},
		&models.ActivityLog{ID: "a1", UserID: "u1", Action: models.ActivityCreatePickup, Timestamp: now})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusGuardsExpectedStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE pickup_requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2")).
		WithArgs("p1", models.StatusPending, models.StatusScheduled, now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO activity_logs").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	log := &models.ActivityLog{ID: "a2", UserID: "admin", Action: models.ActivityUpdateStatus, Timestamp: now}
	err := repo.UpdateStatus(context.Background(), "p1", models.StatusPending, models.StatusScheduled, now, log)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusLostRace(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE pickup_requests SET status").
		WithArgs("p1", models.StatusPending, models.StatusScheduled, now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	log := &models.ActivityLog{ID: "a2", UserID: "admin", Action: models.ActivityUpdateStatus, Timestamp: now}
	err := repo.UpdateStatus(context.Background(), "p1", models.StatusPending, models.StatusScheduled, now, log)
	assert.ErrorIs(t, err, ErrStatusChanged)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM pickup_requests WHERE id =").
		WithArgs("p1").
		WillReturnRows(pickupRows(now, models.StatusPending))

	request, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, request.Status)
	assert.Equal(t, "Bodija", request.Zone)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListPickupsByStatusAndZone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	status := models.StatusPending
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM pickup_requests WHERE 1=1 AND zone = $1 AND status = $2")).
		WithArgs("Bodija", status).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery("SELECT .* FROM pickup_requests WHERE 1=1 AND zone = .* ORDER BY created_at DESC").
		WithArgs("Bodija", status, 20, 0).
		WillReturnRows(pickupRows(now, status))

	requests, total, err := repo.List(context.Background(), models.PickupFilter{Zone: "Bodija", Status: &status})
	require.NoError(t, err)
	assert.Len(t, requests, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenByOperatorExcludesTerminalStates(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	now := time.Now()
	mock.ExpectQuery("FROM pickup_requests WHERE operator_id = .* ORDER BY created_at, id").
		WithArgs("o1", models.StatusPending, models.StatusScheduled, models.StatusOnTheWay).
		WillReturnRows(pickupRows(now, models.StatusScheduled))

	requests, err := repo.OpenByOperator(context.Background(), "o1")
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, models.StatusScheduled, requests[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountByStatus(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPickupRepository(db)

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow(string(models.StatusPending), 3).
		AddRow(string(models.StatusCompleted), 5)
	mock.ExpectQuery("SELECT status, COUNT").WillReturnRows(rows)

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 3, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
