package models

import "time"

// MinistryMember is a person enrolled in the ministry. Contact fields are
// snapshots taken from the user directory at enrolment time; the user record
// remains the live source of truth for login identity.
type MinistryMember struct {
	UserID    string    `json:"user_id" db:"user_id"`
	FullName  string    `json:"full_name" db:"full_name"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	Email     *string   `json:"email,omitempty" db:"email"`
	Team      *Team     `json:"team,omitempty" db:"team"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OnTeam reports whether the member is enrolled on the given team.
func (m *MinistryMember) OnTeam(team Team) bool {
	return m.Team != nil && *m.Team == team
}

// Leadership records who leads a scope. At most one record exists per scope,
// and a member may hold at most one leadership record across all scopes.
type Leadership struct {
	Scope      LeaderScope `json:"scope" db:"scope"`
	UserID     string      `json:"user_id" db:"user_id"`
	MemberName string      `json:"member_name" db:"member_name"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
}
