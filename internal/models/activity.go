package models

import "time"

// Activity actions recorded on lifecycle mutations.
const (
	ActivityCreatePickup  = "CREATE_PICKUP"
	ActivityUpdateStatus  = "UPDATE_STATUS"
	ActivityUpdateProfile = "UPDATE_PROFILE"
	ActivityRegister      = "REGISTER"
	ActivityLogin         = "LOGIN"
	ActivityDatabaseSeed  = "DATABASE_SEED"
)

// ActivityLog is an append-only audit record of an actor-triggered event.
type ActivityLog struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Action    string    `db:"action" json:"action"`
	Details   string    `db:"details" json:"details"`
	Timestamp time.Time `db:"timestamp" json:"timestamp"`
}

// ActivityFilter captures filtering criteria for reading the log.
type ActivityFilter struct {
	UserID   string
	Action   string
	Page     int
	PageSize int
}
