package models

import "time"

// User is an account in the global user directory. Ministry membership is a
// separate record (MinistryMember); a user can exist without belonging to any
// ministry.
type User struct {
	ID        string    `json:"id" db:"id"`
	Username  string    `json:"username" db:"username"`
	Email     *string   `json:"email,omitempty" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Role      Role      `json:"role" db:"role"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Actor converts the user record into the caller identity passed to services.
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, FullName: u.FullName, Role: u.Role}
}
