package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"church_community_backend/internal/models"

	"github.com/google/uuid"
)

// EventRepository defines the interface for event records and the derived
// staffing fields this workflow writes back to them.
type EventRepository interface {
	CreateEvent(executor SQLExecutor, event *models.Event) error
	GetEventByID(id string) (*models.Event, error)
	GetEvents(from *string, page, pageSize int) ([]models.Event, int, error)

	// RefreshScaleStatus recomputes scale_count from the assignments table and
	// sets scale_status, all inside the caller's transaction. The counter is
	// derived, never incremented, so it cannot drift from its source rows.
	RefreshScaleStatus(executor SQLExecutor, eventID string, status models.ScaleStatus) error
}

type eventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new instance of EventRepository.
func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{db: db}
}

func (r *eventRepository) CreateEvent(executor SQLExecutor, event *models.Event) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.ScaleStatus == "" {
		event.ScaleStatus = models.ScaleStatusNone
	}
	query := `INSERT INTO events (id, name, starts_at, scale_status, scale_count, created_by, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, 0, $5, NOW(), NOW())
	          RETURNING created_at, updated_at`
	err := executor.QueryRow(query,
		event.ID, event.Name, event.StartsAt, event.ScaleStatus, event.CreatedBy,
	).Scan(&event.CreatedAt, &event.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: creating event: %v", ErrDatabaseError, err)
	}
	return nil
}

func scanEventRow(row scanner) (*models.Event, error) {
	var event models.Event
	var createdBy sql.NullString
	err := row.Scan(
		&event.ID, &event.Name, &event.StartsAt, &event.ScaleStatus,
		&event.ScaleCount, &createdBy, &event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning event: %v", ErrDatabaseError, err)
	}
	if createdBy.Valid {
		event.CreatedBy = &createdBy.String
	}
	return &event, nil
}

func (r *eventRepository) GetEventByID(id string) (*models.Event, error) {
	query := `SELECT id, name, starts_at, scale_status, scale_count, created_by, created_at, updated_at
	          FROM events WHERE id = $1`
	return scanEventRow(r.db.QueryRow(query, id))
}

func (r *eventRepository) GetEvents(from *string, page, pageSize int) ([]models.Event, int, error) {
	events := []models.Event{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, name, starts_at, scale_status, scale_count, created_by, created_at, updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM events`)

	var args []interface{}
	argCount := 1
	if from != nil && *from != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE starts_at >= $%d", argCount))
		args = append(args, *from)
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY starts_at ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying events: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var event models.Event
		var createdBy sql.NullString
		if err := rows.Scan(
			&event.ID, &event.Name, &event.StartsAt, &event.ScaleStatus,
			&event.ScaleCount, &createdBy, &event.CreatedAt, &event.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning event from list: %v", ErrDatabaseError, err)
		}
		if createdBy.Valid {
			event.CreatedBy = &createdBy.String
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating events: %v", ErrDatabaseError, err)
	}
	return events, totalCount, nil
}

func (r *eventRepository) RefreshScaleStatus(executor SQLExecutor, eventID string, status models.ScaleStatus) error {
	query := `UPDATE events
	          SET scale_count = (SELECT COUNT(*) FROM assignments WHERE event_id = $1),
	              scale_status = CASE
	                  WHEN (SELECT COUNT(*) FROM assignments WHERE event_id = $1) = 0 THEN 'none'
	                  ELSE $2
	              END,
	              updated_at = NOW()
	          WHERE id = $1`
	result, err := executor.Exec(query, eventID, status)
	if err != nil {
		return fmt.Errorf("%w: refreshing event scale status: %v", ErrDatabaseError, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for scale refresh: %v", ErrDatabaseError, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
