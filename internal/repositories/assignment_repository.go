package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"church_community_backend/internal/models"
)

// AssignmentRepository defines the interface for staffing assignments.
// Assignments are keyed by (event_id, ministry); UpsertAssignment replaces in
// place under that key, which is what guarantees at most one assignment per
// event and ministry.
type AssignmentRepository interface {
	UpsertAssignment(executor SQLExecutor, assignment *models.Assignment) error
	GetAssignment(eventID, ministry string) (*models.Assignment, error)
	GetAssignments(ministry string, team *models.Team, pendingOnly bool) ([]models.Assignment, error)
	SetConfirmations(executor SQLExecutor, eventID, ministry string, confirmations models.ConfirmationMap) error
	SetFinalized(executor SQLExecutor, eventID, ministry, finalizedBy string, finalizedAt time.Time) error
	DeleteAssignment(executor SQLExecutor, eventID, ministry string) error
}

type assignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new instance of AssignmentRepository.
func NewAssignmentRepository(db *sql.DB) AssignmentRepository {
	return &assignmentRepository{db: db}
}

func (r *assignmentRepository) UpsertAssignment(executor SQLExecutor, assignment *models.Assignment) error {
	functionsJSON, err := json.Marshal(assignment.Functions)
	if err != nil {
		return fmt.Errorf("%w: encoding function assignments: %v", ErrDatabaseError, err)
	}
	confirmationsJSON, err := json.Marshal(assignment.Confirmations)
	if err != nil {
		return fmt.Errorf("%w: encoding confirmation map: %v", ErrDatabaseError, err)
	}

	// An edit replaces staffing and confirmations and always clears the final
	// sign-off, but never changes the creator or creation time.
	query := `INSERT INTO assignments
	            (event_id, ministry, team, functions, observations, created_by, creator_name,
	             is_confirmed_final, finalized_by, finalized_at, confirmations, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, NULL, NULL, $8, NOW(), NOW())
	          ON CONFLICT (event_id, ministry) DO UPDATE SET
	            team = EXCLUDED.team,
	            functions = EXCLUDED.functions,
	            observations = EXCLUDED.observations,
	            is_confirmed_final = FALSE,
	            finalized_by = NULL,
	            finalized_at = NULL,
	            confirmations = EXCLUDED.confirmations,
	            updated_at = NOW()
	          RETURNING created_by, creator_name, created_at, updated_at`

	err = executor.QueryRow(query,
		assignment.EventID, assignment.Ministry, assignment.Team, functionsJSON,
		assignment.Observations, assignment.CreatedBy, assignment.CreatorName, confirmationsJSON,
	).Scan(&assignment.CreatedBy, &assignment.CreatorName, &assignment.CreatedAt, &assignment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: upserting assignment: %v", ErrDatabaseError, err)
	}
	assignment.IsConfirmedFinal = false
	assignment.FinalizedBy = nil
	assignment.FinalizedAt = nil
	return nil
}

func scanAssignmentRow(row scanner) (*models.Assignment, error) {
	var assignment models.Assignment
	var functionsJSON, confirmationsJSON []byte
	var observations, finalizedBy sql.NullString
	var finalizedAt sql.NullTime

	err := row.Scan(
		&assignment.EventID, &assignment.Ministry, &assignment.Team,
		&functionsJSON, &observations, &assignment.CreatedBy, &assignment.CreatorName,
		&assignment.IsConfirmedFinal, &finalizedBy, &finalizedAt, &confirmationsJSON,
		&assignment.CreatedAt, &assignment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning assignment: %v", ErrDatabaseError, err)
	}
	if err := json.Unmarshal(functionsJSON, &assignment.Functions); err != nil {
		return nil, fmt.Errorf("%w: decoding function assignments: %v", ErrDatabaseError, err)
	}
	if err := json.Unmarshal(confirmationsJSON, &assignment.Confirmations); err != nil {
		return nil, fmt.Errorf("%w: decoding confirmation map: %v", ErrDatabaseError, err)
	}
	if observations.Valid {
		assignment.Observations = &observations.String
	}
	if finalizedBy.Valid {
		assignment.FinalizedBy = &finalizedBy.String
	}
	if finalizedAt.Valid {
		assignment.FinalizedAt = &finalizedAt.Time
	}
	return &assignment, nil
}

const assignmentColumns = `event_id, ministry, team, functions, observations, created_by, creator_name,
	    is_confirmed_final, finalized_by, finalized_at, confirmations, created_at, updated_at`

func (r *assignmentRepository) GetAssignment(eventID, ministry string) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE event_id = $1 AND ministry = $2`
	return scanAssignmentRow(r.db.QueryRow(query, eventID, ministry))
}

func (r *assignmentRepository) GetAssignments(ministry string, team *models.Team, pendingOnly bool) ([]models.Assignment, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + assignmentColumns + ` FROM assignments WHERE ministry = $1`)

	args := []interface{}{ministry}
	argCount := 2
	if team != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND team = $%d", argCount))
		args = append(args, string(*team))
		argCount++
	}
	if pendingOnly {
		queryBuilder.WriteString(" AND is_confirmed_final = FALSE")
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying assignments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	assignments := []models.Assignment{}
	for rows.Next() {
		assignment, err := scanAssignmentRow(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, *assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating assignments: %v", ErrDatabaseError, err)
	}
	return assignments, nil
}

func (r *assignmentRepository) SetConfirmations(executor SQLExecutor, eventID, ministry string, confirmations models.ConfirmationMap) error {
	confirmationsJSON, err := json.Marshal(confirmations)
	if err != nil {
		return fmt.Errorf("%w: encoding confirmation map: %v", ErrDatabaseError, err)
	}
	result, err := executor.Exec(
		`UPDATE assignments SET confirmations = $1, updated_at = NOW() WHERE event_id = $2 AND ministry = $3`,
		confirmationsJSON, eventID, ministry,
	)
	if err != nil {
		return fmt.Errorf("%w: updating confirmations: %v", ErrDatabaseError, err)
	}
	return checkAffected(result, "confirmation update")
}

func (r *assignmentRepository) SetFinalized(executor SQLExecutor, eventID, ministry, finalizedBy string, finalizedAt time.Time) error {
	result, err := executor.Exec(
		`UPDATE assignments SET is_confirmed_final = TRUE, finalized_by = $1, finalized_at = $2, updated_at = NOW()
		 WHERE event_id = $3 AND ministry = $4`,
		finalizedBy, finalizedAt, eventID, ministry,
	)
	if err != nil {
		return fmt.Errorf("%w: finalizing assignment: %v", ErrDatabaseError, err)
	}
	return checkAffected(result, "assignment finalization")
}

func (r *assignmentRepository) DeleteAssignment(executor SQLExecutor, eventID, ministry string) error {
	result, err := executor.Exec(`DELETE FROM assignments WHERE event_id = $1 AND ministry = $2`, eventID, ministry)
	if err != nil {
		return fmt.Errorf("%w: deleting assignment: %v", ErrDatabaseError, err)
	}
	return checkAffected(result, "assignment delete")
}

func checkAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for %s: %v", ErrDatabaseError, op, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
