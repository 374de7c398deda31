package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleanoyo/wasteup-api/internal/models"
)

func TestCreateNotification(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.NotificationRecord{
		ID: "n1", UserID: "u1", Type: models.NotifyPickupConfirmation,
		Message: "Waste Up Ibadan: Your General Household pickup at Bodija is confirmed.",
		Medium:  models.MediumEmail, Timestamp: time.Now(),
	}
	err := repo.Create(context.Background(), record)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserNewestFirst(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "type", "message", "medium", "timestamp", "is_read"}).
		AddRow("n2", "u1", models.NotifyStatusUpdate, "status copy", string(models.MediumSMS), now, false).
		AddRow("n1", "u1", models.NotifyPickupConfirmation, "confirmation copy", string(models.MediumEmail), now.Add(-time.Hour), true)
	mock.ExpectQuery("FROM notifications WHERE user_id = .* ORDER BY timestamp DESC").
		WithArgs("u1").
		WillReturnRows(rows)

	records, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "n2", records[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadScopedToRecipient(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2")).
		WithArgs("n1", "someone-else").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkRead(context.Background(), "n1", "someone-else")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("DELETE FROM notifications WHERE user_id =").
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	err := repo.DeleteByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
