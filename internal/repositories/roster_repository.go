package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"church_community_backend/internal/models"

	"github.com/lib/pq"
)

// RosterRepository defines the interface for ministry membership, team
// enrolment and leadership records.
type RosterRepository interface {
	// Ministry members
	CreateMember(executor SQLExecutor, member *models.MinistryMember) error
	GetMemberByUserID(userID string) (*models.MinistryMember, error)
	GetMembers(team *models.Team, searchTerm *string) ([]models.MinistryMember, error)
	SetMemberTeam(executor SQLExecutor, userID string, team *models.Team) error
	SetMemberRole(executor SQLExecutor, userID string, role models.Role) error
	DeleteMember(executor SQLExecutor, userID string) error

	// Leadership records
	GetLeadership(scope models.LeaderScope) (*models.Leadership, error)
	GetLeadershipByUserID(userID string) (*models.Leadership, error)
	CreateLeadership(executor SQLExecutor, leadership *models.Leadership) error
	DeleteLeadership(executor SQLExecutor, scope models.LeaderScope) error
}

type rosterRepository struct {
	db *sql.DB
}

// NewRosterRepository creates a new instance of RosterRepository.
func NewRosterRepository(db *sql.DB) RosterRepository {
	return &rosterRepository{db: db}
}

// --- Ministry member methods ---

func (r *rosterRepository) CreateMember(executor SQLExecutor, member *models.MinistryMember) error {
	query := `INSERT INTO ministry_members (user_id, full_name, phone, email, team, role, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	          RETURNING created_at, updated_at`

	var team sql.NullString
	if member.Team != nil {
		team = sql.NullString{String: string(*member.Team), Valid: true}
	}
	err := executor.QueryRow(query,
		member.UserID, member.FullName, member.Phone, member.Email, team, member.Role,
	).Scan(&member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			if pqErr.Code.Name() == "unique_violation" {
				return fmt.Errorf("%w: user %s is already a ministry member", ErrDuplicateKey, member.UserID)
			}
			if pqErr.Code.Name() == "foreign_key_violation" {
				return fmt.Errorf("%w: user %s does not exist", ErrNotFound, member.UserID)
			}
		}
		return fmt.Errorf("%w: creating ministry member: %v", ErrDatabaseError, err)
	}
	return nil
}

func scanMemberRow(row scanner) (*models.MinistryMember, error) {
	var member models.MinistryMember
	var phone, email, team sql.NullString
	err := row.Scan(
		&member.UserID, &member.FullName, &phone, &email, &team,
		&member.Role, &member.CreatedAt, &member.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning ministry member: %v", ErrDatabaseError, err)
	}
	if phone.Valid {
		member.Phone = &phone.String
	}
	if email.Valid {
		member.Email = &email.String
	}
	if team.Valid {
		t := models.Team(team.String)
		member.Team = &t
	}
	return &member, nil
}

func (r *rosterRepository) GetMemberByUserID(userID string) (*models.MinistryMember, error) {
	query := `SELECT user_id, full_name, phone, email, team, role, created_at, updated_at
	          FROM ministry_members WHERE user_id = $1`
	return scanMemberRow(r.db.QueryRow(query, userID))
}

func (r *rosterRepository) GetMembers(team *models.Team, searchTerm *string) ([]models.MinistryMember, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT user_id, full_name, phone, email, team, role, created_at, updated_at
	  FROM ministry_members`)

	var conditions []string
	var args []interface{}
	argCount := 1
	if team != nil {
		conditions = append(conditions, fmt.Sprintf("team = $%d", argCount))
		args = append(args, string(*team))
		argCount++
	}
	if searchTerm != nil && *searchTerm != "" {
		conditions = append(conditions, fmt.Sprintf("full_name ILIKE $%d", argCount))
		args = append(args, "%"+*searchTerm+"%")
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY full_name ASC")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying ministry members: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	members := []models.MinistryMember{}
	for rows.Next() {
		member, err := scanMemberRow(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating ministry members: %v", ErrDatabaseError, err)
	}
	return members, nil
}

func (r *rosterRepository) SetMemberTeam(executor SQLExecutor, userID string, team *models.Team) error {
	var teamValue sql.NullString
	if team != nil {
		teamValue = sql.NullString{String: string(*team), Valid: true}
	}
	return r.updateMember(executor, userID, `UPDATE ministry_members SET team = $1, updated_at = NOW() WHERE user_id = $2`, teamValue)
}

func (r *rosterRepository) SetMemberRole(executor SQLExecutor, userID string, role models.Role) error {
	return r.updateMember(executor, userID, `UPDATE ministry_members SET role = $1, updated_at = NOW() WHERE user_id = $2`, role)
}

func (r *rosterRepository) updateMember(executor SQLExecutor, userID, query string, value interface{}) error {
	result, err := executor.Exec(query, value, userID)
	if err != nil {
		return fmt.Errorf("%w: updating ministry member: %v", ErrDatabaseError, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for member update: %v", ErrDatabaseError, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *rosterRepository) DeleteMember(executor SQLExecutor, userID string) error {
	result, err := executor.Exec(`DELETE FROM ministry_members WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("%w: deleting ministry member: %v", ErrDatabaseError, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for member delete: %v", ErrDatabaseError, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Leadership methods ---

func scanLeadershipRow(row scanner) (*models.Leadership, error) {
	var leadership models.Leadership
	err := row.Scan(&leadership.Scope, &leadership.UserID, &leadership.MemberName, &leadership.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning leadership record: %v", ErrDatabaseError, err)
	}
	return &leadership, nil
}

func (r *rosterRepository) GetLeadership(scope models.LeaderScope) (*models.Leadership, error) {
	query := `SELECT scope, user_id, member_name, created_at FROM ministry_leaderships WHERE scope = $1`
	return scanLeadershipRow(r.db.QueryRow(query, scope))
}

func (r *rosterRepository) GetLeadershipByUserID(userID string) (*models.Leadership, error) {
	query := `SELECT scope, user_id, member_name, created_at FROM ministry_leaderships WHERE user_id = $1`
	return scanLeadershipRow(r.db.QueryRow(query, userID))
}

// CreateLeadership writes a new leadership record. A sitting leader is never
// replaced here; the scope primary key and the user_id unique constraint both
// surface as ErrDuplicateKey.
func (r *rosterRepository) CreateLeadership(executor SQLExecutor, leadership *models.Leadership) error {
	query := `INSERT INTO ministry_leaderships (scope, user_id, member_name, created_at)
	          VALUES ($1, $2, $3, NOW())
	          RETURNING created_at`
	err := executor.QueryRow(query, leadership.Scope, leadership.UserID, leadership.MemberName).Scan(&leadership.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return fmt.Errorf("%w: leadership for %s or member %s already recorded", ErrDuplicateKey, leadership.Scope, leadership.UserID)
		}
		return fmt.Errorf("%w: inserting leadership record: %v", ErrDatabaseError, err)
	}
	return nil
}

func (r *rosterRepository) DeleteLeadership(executor SQLExecutor, scope models.LeaderScope) error {
	result, err := executor.Exec(`DELETE FROM ministry_leaderships WHERE scope = $1`, scope)
	if err != nil {
		return fmt.Errorf("%w: deleting leadership record: %v", ErrDatabaseError, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for leadership delete: %v", ErrDatabaseError, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
