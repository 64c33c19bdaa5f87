package models

import "time"

// DefaultMinistry is the ministry this deployment serves. Assignments are keyed
// by (event, ministry) so a second ministry can share the same tables later.
const DefaultMinistry = "diaconato"

// AssignedMember is a member reference stored inside an assignment. The name is
// a snapshot taken when the assignment was saved, not a live join.
type AssignedMember struct {
	UserID   string `json:"user_id"`
	FullName string `json:"full_name"`
}

// FunctionAssignments maps each staffed function to its ordered member list.
type FunctionAssignments map[FunctionKey][]AssignedMember

// MemberCount returns the total number of assignment slots across all functions.
func (fa FunctionAssignments) MemberCount() int {
	n := 0
	for _, members := range fa {
		n += len(members)
	}
	return n
}

// FunctionOf returns the function a member is assigned to, or false if the
// member appears nowhere in the map.
func (fa FunctionAssignments) FunctionOf(userID string) (FunctionKey, bool) {
	for fn, members := range fa {
		for _, m := range members {
			if m.UserID == userID {
				return fn, true
			}
		}
	}
	return "", false
}

// ConfirmationEntry is one member's attendance status within an assignment.
// MemberName and Function are denormalized snapshots from save time.
type ConfirmationEntry struct {
	MemberName    string      `json:"member_name"`
	Function      FunctionKey `json:"function"`
	Confirmed     bool        `json:"confirmed"`
	ConfirmedAt   *time.Time  `json:"confirmed_at,omitempty"`
	AutoConfirmed bool        `json:"auto_confirmed"`
}

// ConfirmationMap is keyed by member user id.
type ConfirmationMap map[string]ConfirmationEntry

// ConfirmedCount returns how many entries are confirmed.
func (cm ConfirmationMap) ConfirmedCount() int {
	n := 0
	for _, e := range cm {
		if e.Confirmed {
			n++
		}
	}
	return n
}

// Assignment (a "scale") is the staffing plan for one ministry at one event.
// Exactly one exists per (event, ministry); saving again replaces it in place.
type Assignment struct {
	EventID          string              `json:"event_id" db:"event_id"`
	Ministry         string              `json:"ministry" db:"ministry"`
	Team             Team                `json:"team" db:"team"`
	Functions        FunctionAssignments `json:"functions" db:"functions"`
	Observations     *string             `json:"observations,omitempty" db:"observations"`
	CreatedBy        string              `json:"created_by" db:"created_by"`
	CreatorName      string              `json:"creator_name" db:"creator_name"`
	IsConfirmedFinal bool                `json:"is_confirmed_final" db:"is_confirmed_final"`
	FinalizedBy      *string             `json:"finalized_by,omitempty" db:"finalized_by"`
	FinalizedAt      *time.Time          `json:"finalized_at,omitempty" db:"finalized_at"`
	Confirmations    ConfirmationMap     `json:"confirmations" db:"confirmations"`
	CreatedAt        time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" db:"updated_at"`
	Event            *Event              `json:"event,omitempty"`
}

// OfferingMember returns the first member assigned to the offering function,
// or false if the function is unstaffed. That member is the authorized filer
// of the event's collection report.
func (a *Assignment) OfferingMember() (AssignedMember, bool) {
	members := a.Functions[FunctionOffering]
	if len(members) == 0 {
		return AssignedMember{}, false
	}
	return members[0], true
}
