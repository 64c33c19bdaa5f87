package services

import (
	"church_community_backend/internal/models"
)

// All authorization rules live here. Handlers, middleware and the other
// services consult these functions instead of re-deriving role checks, so the
// same rule is never expressed twice.

// CanManageMinistry reports whether the actor may add/remove ministry members
// and appoint leaders.
func CanManageMinistry(actor models.Actor) bool {
	return actor.Role.IsAdmin()
}

// CanManageRoster reports whether the actor may enrol members onto teams.
func CanManageRoster(actor models.Actor) bool {
	return actor.Role.IsLeadership() || actor.Role.IsAdmin()
}

// CanCreateAssignment reports whether the actor may create a staffing
// assignment at all. Team scoping is checked separately by CanSelectTeam.
func CanCreateAssignment(actor models.Actor) bool {
	return actor.Role.IsLeadership() || actor.Role == models.RoleAdminMaster
}

// CanSelectTeam reports whether the actor may build an assignment for the
// given team. Team leaders are restricted to their own team; the general
// leader and the master admin may pick either.
func CanSelectTeam(actor models.Actor, team models.Team) bool {
	switch actor.Role {
	case models.RoleTeamLeaderA:
		return team == models.TeamA
	case models.RoleTeamLeaderB:
		return team == models.TeamB
	case models.RoleGeneralLeader, models.RoleAdminMaster:
		return true
	}
	return false
}

// CanModifyAssignment reports whether the actor may edit, delete or finalize
// an existing assignment: its creator, the general leader, or the master admin.
func CanModifyAssignment(actor models.Actor, assignment *models.Assignment) bool {
	if assignment == nil {
		return false
	}
	return actor.UserID == assignment.CreatedBy ||
		actor.Role == models.RoleGeneralLeader ||
		actor.Role == models.RoleAdminMaster
}

// CanFileReport reports whether the actor may create or overwrite the
// collection report for an event: the member staffing the offering function on
// the event's assignment, or any leadership/admin role.
func CanFileReport(actor models.Actor, assignment *models.Assignment) bool {
	if actor.Role.IsLeadership() || actor.Role.IsAdmin() {
		return true
	}
	if assignment == nil {
		return false
	}
	if offering, ok := assignment.OfferingMember(); ok {
		return offering.UserID == actor.UserID
	}
	return false
}

// CanEditReport reports whether the actor may overwrite an existing report:
// no report yet, the original filer, or any leadership/admin role.
func CanEditReport(actor models.Actor, report *models.CollectionReport) bool {
	if report == nil {
		return true
	}
	return report.FiledBy == actor.UserID || actor.Role.IsLeadership() || actor.Role.IsAdmin()
}
