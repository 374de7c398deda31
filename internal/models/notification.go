package models

import "time"

// NotificationMedium is the channel a notification is recorded against.
type NotificationMedium string

const (
	MediumSMS    NotificationMedium = "SMS"
	MediumEmail  NotificationMedium = "EMAIL"
	MediumSystem NotificationMedium = "SYSTEM"
)

// Notification event kinds.
const (
	NotifyPickupConfirmation = "PICKUP_CONFIRMATION"
	NotifyNewJob             = "NEW_JOB"
	NotifyStatusUpdate       = "STATUS_UPDATE"
)

// NotificationRecord is an append-only message record for a recipient.
// Records may be bulk-cleared by their recipient; there is no soft delete.
type NotificationRecord struct {
	ID        string             `db:"id" json:"id"`
	UserID    string             `db:"user_id" json:"user_id"`
	Type      string             `db:"type" json:"type"`
	Message   string             `db:"message" json:"message"`
	Medium    NotificationMedium `db:"medium" json:"medium"`
	Timestamp time.Time          `db:"timestamp" json:"timestamp"`
	IsRead    bool               `db:"is_read" json:"is_read"`
}

// NotificationEvent describes a lifecycle event to fan out. Context carries
// the values the composer interpolates into message copy.
type NotificationEvent struct {
	Kind      string
	Recipient User
	Context   map[string]string
}
