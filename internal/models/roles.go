package models

// Role classifies a user across the whole application. The ministry leadership
// roles and the app-level admin roles live in the same enumeration so that
// authorization decisions never have to combine separate flag sets.
type Role string

const (
	RoleMember        Role = "member"
	RoleTeamLeaderA   Role = "team_leader_a"
	RoleTeamLeaderB   Role = "team_leader_b"
	RoleGeneralLeader Role = "general_leader"
	RoleAdmin         Role = "admin"
	RoleAdminMaster   Role = "admin_master"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleTeamLeaderA, RoleTeamLeaderB, RoleGeneralLeader, RoleAdmin, RoleAdminMaster:
		return true
	}
	return false
}

// IsLeadership reports whether the role is one of the three ministry leadership roles.
func (r Role) IsLeadership() bool {
	return r == RoleTeamLeaderA || r == RoleTeamLeaderB || r == RoleGeneralLeader
}

// IsAdmin reports whether the role is an application administrator role.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleAdminMaster
}

// Team identifies one of the two ministry serving teams.
type Team string

const (
	TeamA Team = "team_a"
	TeamB Team = "team_b"
)

func (t Team) IsValid() bool {
	return t == TeamA || t == TeamB
}

// LeaderScope identifies what a leadership record covers: one team or the whole ministry.
type LeaderScope string

const (
	ScopeTeamA   LeaderScope = "team_a"
	ScopeTeamB   LeaderScope = "team_b"
	ScopeGeneral LeaderScope = "general"
)

func (s LeaderScope) IsValid() bool {
	return s == ScopeTeamA || s == ScopeTeamB || s == ScopeGeneral
}

// Role returns the user role conferred by holding leadership of this scope.
func (s LeaderScope) Role() Role {
	switch s {
	case ScopeTeamA:
		return RoleTeamLeaderA
	case ScopeTeamB:
		return RoleTeamLeaderB
	case ScopeGeneral:
		return RoleGeneralLeader
	}
	return RoleMember
}

// Team returns the team a team-scoped leadership enrols its holder into,
// or false for the general scope.
func (s LeaderScope) Team() (Team, bool) {
	switch s {
	case ScopeTeamA:
		return TeamA, true
	case ScopeTeamB:
		return TeamB, true
	}
	return "", false
}

// FunctionKey names a duty within an event. The set is closed.
type FunctionKey string

const (
	FunctionReception FunctionKey = "reception"
	FunctionOffering  FunctionKey = "offering"
	FunctionCommunion FunctionKey = "communion"
	FunctionOrder     FunctionKey = "order"
	FunctionDoor      FunctionKey = "door"
	FunctionParking   FunctionKey = "parking"
)

// AllFunctions lists every assignable function in presentation order.
var AllFunctions = []FunctionKey{
	FunctionReception,
	FunctionOffering,
	FunctionCommunion,
	FunctionOrder,
	FunctionDoor,
	FunctionParking,
}

func (f FunctionKey) IsValid() bool {
	for _, known := range AllFunctions {
		if f == known {
			return true
		}
	}
	return false
}

// Actor is the caller identity every service operation receives explicitly.
// It is built by the auth middleware from the verified token claims; services
// never read identity from ambient state.
type Actor struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}
