package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cleanoyo/wasteup-api/internal/models"
)

// ErrStatusChanged signals that the optimistic status guard matched no row:
// either the record vanished or a concurrent transition won the race.
var ErrStatusChanged = errors.New("pickup status changed concurrently")

const pickupColumns = `id, resident_id, resident_name, operator_id, operator_name, zone, house_number, street_name, landmark, contact_phone, lat, lng, waste_type, priority, scheduled_date, status, notes, created_at, updated_at`

// PickupRepository provides database access for pickup requests. Lifecycle
// writes pair the request mutation with its activity-log append inside a
// single transaction.
type PickupRepository struct {
	db *sqlx.DB
}

// NewPickupRepository creates a new instance of PickupRepository.
func NewPickupRepository(db *sqlx.DB) *PickupRepository {
	return &PickupRepository{db: db}
}

// Create persists a new request together with its creation activity entry.
func (r *PickupRepository) Create(ctx context.Context, request *models.PickupRequest, log *models.ActivityLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create pickup: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertRequest = `INSERT INTO pickup_requests (id, resident_id, resident_name, operator_id, operator_name, zone, house_number, street_name, landmark, contact_phone, lat, lng, waste_type, priority, scheduled_date, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	if _, err := tx.ExecContext(ctx, insertRequest,
		request.ID, request.ResidentID, request.ResidentName, request.OperatorID, request.OperatorName,
		request.Zone, request.HouseNumber, request.StreetName, request.Landmark, request.ContactPhone,
		request.Lat, request.Lng, request.WasteType, request.Priority, request.ScheduledDate,
		request.Status, request.Notes, request.CreatedAt, request.UpdatedAt,
	); err != nil {
		return fmt.Errorf("insert pickup: %w", err)
	}

	if err := insertActivity(ctx, tx, log); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create pickup: %w", err)
	}
	return nil
}

// GetByID returns a pickup request by identifier.
func (r *PickupRepository) GetByID(ctx context.Context, id string) (*models.PickupRequest, error) {
	query := `SELECT ` + pickupColumns + ` FROM pickup_requests WHERE id = $1 LIMIT 1`
	var request models.PickupRequest
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find pickup by id: %w", err)
	}
	return &request, nil
}

// UpdateStatus transitions a request and appends the activity entry in one
// transaction. The WHERE guard on the expected status serializes concurrent
// transitions on the same id; a lost race surfaces as ErrStatusChanged and
// leaves the stored record untouched.
func (r *PickupRepository) UpdateStatus(ctx context.Context, id string, expected, next models.PickupStatus, updatedAt time.Time, log *models.ActivityLog) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status update: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const update = `UPDATE pickup_requests SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`
	res, err := tx.ExecContext(ctx, update, id, expected, next, updatedAt)
	if err != nil {
		return fmt.Errorf("update pickup status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pickup status: %w", err)
	}
	if affected == 0 {
		return ErrStatusChanged
	}

	if err := insertActivity(ctx, tx, log); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status update: %w", err)
	}
	return nil
}

// List returns pickup requests matching the filter, newest first.
func (r *PickupRepository) List(ctx context.Context, filter models.PickupFilter) ([]models.PickupRequest, int, error) {
	baseQuery := `FROM pickup_requests WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ResidentID != "" {
		conditions = append(conditions, fmt.Sprintf("resident_id = $%d", len(args)+1))
		args = append(args, filter.ResidentID)
	}
	if filter.OperatorID != "" {
		conditions = append(conditions, fmt.Sprintf("operator_id = $%d", len(args)+1))
		args = append(args, filter.OperatorID)
	}
	if filter.Zone != "" {
		conditions = append(conditions, fmt.Sprintf("zone = $%d", len(args)+1))
		args = append(args, filter.Zone)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	countQuery := `SELECT COUNT(*) ` + baseQuery
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count pickups: %w", err)
	}

	listQuery := fmt.Sprintf(`SELECT %s %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		pickupColumns, baseQuery, len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	var requests []models.PickupRequest
	if err := r.db.SelectContext(ctx, &requests, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list pickups: %w", err)
	}

	return requests, total, nil
}

// OpenByOperator returns an operator's not-yet-completed stops in creation
// order, the input for route advice.
func (r *PickupRepository) OpenByOperator(ctx context.Context, operatorID string) ([]models.PickupRequest, error) {
	query := `SELECT ` + pickupColumns + ` FROM pickup_requests WHERE operator_id = $1 AND status IN ($2, $3, $4) ORDER BY created_at, id`
	var requests []models.PickupRequest
	if err := r.db.SelectContext(ctx, &requests, query, operatorID, models.StatusPending, models.StatusScheduled, models.StatusOnTheWay); err != nil {
		return nil, fmt.Errorf("list open pickups: %w", err)
	}
	return requests, nil
}

// CountByStatus aggregates requests per lifecycle state.
func (r *PickupRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	const query = `SELECT status, COUNT(*) AS count FROM pickup_requests GROUP BY status`
	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("count pickups by status: %w", err)
	}
	return counts, nil
}

// ZoneSummaries aggregates active demand and operator supply per zone.
func (r *PickupRepository) ZoneSummaries(ctx context.Context) ([]models.ZoneSummary, error) {
	const query = `SELECT p.zone,
		COUNT(*) FILTER (WHERE p.status NOT IN ($1, $2)) AS active_requests,
		(SELECT COUNT(*) FROM users u WHERE u.role = $3 AND u.zone = p.zone) AS operators
		FROM pickup_requests p GROUP BY p.zone ORDER BY active_requests DESC`
	var summaries []models.ZoneSummary
	if err := r.db.SelectContext(ctx, &summaries, query, models.StatusCompleted, models.StatusCancelled, models.RolePSPOperator); err != nil {
		return nil, fmt.Errorf("zone summaries: %w", err)
	}
	return summaries, nil
}

func insertActivity(ctx context.Context, tx *sqlx.Tx, log *models.ActivityLog) error {
	if log == nil {
		return nil
	}
	const query = `INSERT INTO activity_logs (id, user_id, action, details, timestamp) VALUES ($1, $2, $3, $4, $5)`
	if _, err := tx.ExecContext(ctx, query, log.ID, log.UserID, log.Action, log.Details, log.Timestamp); err != nil {
		return fmt.Errorf("insert activity log: %w", err)
	}
	return nil
}
