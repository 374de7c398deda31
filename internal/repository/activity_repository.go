package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/cleanoyo/wasteup-api/internal/models"
)

// ActivityRepository provides append and read access to the activity log.
// The log is append-only; there are no update or delete paths.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository creates a new instance of ActivityRepository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append records an activity entry.
func (r *ActivityRepository) Append(ctx context.Context, log *models.ActivityLog) error {
	const query = `INSERT INTO activity_logs (id, user_id, action, details, timestamp) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, log.ID, log.UserID, log.Action, log.Details, log.Timestamp); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

// List returns activity entries matching the filter, newest first.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error) {
	baseQuery := `FROM activity_logs WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Action != "" {
		conditions = append(conditions, fmt.Sprintf("action = $%d", len(args)+1))
		args = append(args, filter.Action)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	countQuery := `SELECT COUNT(*) ` + baseQuery
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count activity logs: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT id, user_id, action, details, timestamp %s ORDER BY timestamp DESC LIMIT $%d OFFSET $%d`,
		baseQuery, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	var logs []models.ActivityLog
	if err := r.db.SelectContext(ctx, &logs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list activity logs: %w", err)
	}

	return logs, total, nil
}

// Recent returns the latest entries for the admin overview.
func (r *ActivityRepository) Recent(ctx context.Context, limit int) ([]models.ActivityLog, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `SELECT id, user_id, action, details, timestamp FROM activity_logs ORDER BY timestamp DESC LIMIT $1`
	var logs []models.ActivityLog
	if err := r.db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, fmt.Errorf("recent activity logs: %w", err)
	}
	return logs, nil
}
