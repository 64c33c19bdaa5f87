package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"church_community_backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// AuthRepository defines the interface for the global user directory.
type AuthRepository interface {
	CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (string, error)
	FindUserByID(id string) (*models.User, error)
	FindUserByUsername(username string) (*models.User, string, error)
	UpdateUserRole(executor SQLExecutor, userID string, role models.Role) error
	GetUsers(page, pageSize int, searchTerm *string) ([]models.User, int, error)
}

type authRepository struct {
	db *sql.DB
}

// NewAuthRepository creates a new instance of AuthRepository.
func NewAuthRepository(db *sql.DB) AuthRepository {
	return &authRepository{db: db}
}

func (r *authRepository) CreateUser(executor SQLExecutor, user *models.User, hashedPassword string) (string, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	query := `INSERT INTO users (id, username, email, full_name, phone, password_hash, role, is_active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
	          RETURNING id, created_at, updated_at`

	err := executor.QueryRow(query,
		user.ID, user.Username, user.Email, user.FullName, user.Phone, hashedPassword, user.Role,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return "", fmt.Errorf("%w (constraint: %s)", ErrDuplicateKey, pqErr.Constraint)
		}
		return "", fmt.Errorf("%w: creating user: %v", ErrDatabaseError, err)
	}
	user.IsActive = true
	return user.ID, nil
}

func scanUserRow(row scanner) (*models.User, error) {
	var user models.User
	var email, phone sql.NullString
	err := row.Scan(
		&user.ID, &user.Username, &email, &user.FullName, &phone,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
	}
	if email.Valid {
		user.Email = &email.String
	}
	if phone.Valid {
		user.Phone = &phone.String
	}
	return &user, nil
}

func (r *authRepository) FindUserByID(id string) (*models.User, error) {
	query := `SELECT id, username, email, full_name, phone, role, is_active, created_at, updated_at
	          FROM users WHERE id = $1`
	return scanUserRow(r.db.QueryRow(query, id))
}

func (r *authRepository) FindUserByUsername(username string) (*models.User, string, error) {
	query := `SELECT id, username, email, full_name, phone, role, is_active, created_at, updated_at, password_hash
	          FROM users WHERE LOWER(username) = LOWER($1)`
	var user models.User
	var email, phone sql.NullString
	var passwordHash string
	err := r.db.QueryRow(query, username).Scan(
		&user.ID, &user.Username, &email, &user.FullName, &phone,
		&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &passwordHash,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("%w: finding user by username: %v", ErrDatabaseError, err)
	}
	if email.Valid {
		user.Email = &email.String
	}
	if phone.Valid {
		user.Phone = &phone.String
	}
	return &user, passwordHash, nil
}

func (r *authRepository) UpdateUserRole(executor SQLExecutor, userID string, role models.Role) error {
	result, err := executor.Exec(`UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`, role, userID)
	if err != nil {
		return fmt.Errorf("%w: updating user role: %v", ErrDatabaseError, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: checking rows affected for role update: %v", ErrDatabaseError, err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *authRepository) GetUsers(page, pageSize int, searchTerm *string) ([]models.User, int, error) {
	users := []models.User{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, username, email, full_name, phone, role, is_active, created_at, updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM users`)

	var args []interface{}
	argCount := 1
	if searchTerm != nil && *searchTerm != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE full_name ILIKE $%d OR username ILIKE $%d", argCount, argCount))
		args = append(args, "%"+*searchTerm+"%")
		argCount++
	}
	queryBuilder.WriteString(" ORDER BY full_name ASC")
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		var email, phone sql.NullString
		if err := rows.Scan(
			&user.ID, &user.Username, &email, &user.FullName, &phone,
			&user.Role, &user.IsActive, &user.CreatedAt, &user.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user from list: %v", ErrDatabaseError, err)
		}
		if email.Valid {
			user.Email = &email.String
		}
		if phone.Valid {
			user.Phone = &phone.String
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating users: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}
