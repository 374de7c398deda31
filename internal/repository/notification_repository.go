package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cleanoyo/wasteup-api/internal/models"
)

// NotificationRepository provides database access for notification records.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new instance of NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a notification record.
func (r *NotificationRepository) Create(ctx context.Context, record *models.NotificationRecord) error {
	const query = `INSERT INTO notifications (id, user_id, type, message, medium, timestamp, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := r.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.Type, record.Message, record.Medium, record.Timestamp, record.IsRead,
	); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ListByUser returns a recipient's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]models.NotificationRecord, error) {
	const query = `SELECT id, user_id, type, message, medium, timestamp, is_read FROM notifications WHERE user_id = $1 ORDER BY timestamp DESC`
	var records []models.NotificationRecord
	if err := r.db.SelectContext(ctx, &records, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return records, nil
}

// MarkRead flags a single notification as read for its recipient.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	const query = `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteByUser removes all notifications for the recipient. Hard delete, no undo.
func (r *NotificationRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM notifications WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear notifications: %w", err)
	}
	return nil
}
