package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"church_community_backend/internal/models"
	"church_community_backend/internal/repositories"
)

// --- Custom Service Errors for Assignments ---
var (
	ErrValidation         = errors.New("validation error")
	ErrEventNotFound      = errors.New("event not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrNoTeamSelected     = errors.New("a team must be selected before staffing")
	ErrNoMembersAssigned  = errors.New("at least one member must be assigned to a function")
	ErrDuplicateMember    = errors.New("member is already assigned")
)

// AssignmentOptions carries deployment-level staffing policy.
type AssignmentOptions struct {
	// AllowMultipleFunctions permits the same member under two different
	// functions of one assignment. Set false to enforce cross-function
	// uniqueness.
	AllowMultipleFunctions bool
}

// DefaultAssignmentOptions allows members to cover more than one function.
func DefaultAssignmentOptions() AssignmentOptions {
	return AssignmentOptions{AllowMultipleFunctions: true}
}

// --- Assignment DTOs ---

type SaveAssignmentRequest struct {
	Team         models.Team                `json:"team" binding:"required"`
	Functions    models.FunctionAssignments `json:"functions" binding:"required"`
	Observations *string                    `json:"observations"`
}

// --- AssignmentService Interface ---
type AssignmentService interface {
	SaveAssignment(actor models.Actor, eventID string, req SaveAssignmentRequest) (*models.Assignment, error)
	GetAssignment(eventID string) (*models.Assignment, error)
	GetAssignments(team *models.Team, pendingOnly bool) ([]models.Assignment, error)
	DeleteAssignment(actor models.Actor, eventID string) error
	NewBuilder(actor models.Actor) *AssignmentBuilder
}

type assignmentService struct {
	assignmentRepo repositories.AssignmentRepository
	eventRepo      repositories.EventRepository
	db             *sql.DB
	ministry       string
	opts           AssignmentOptions
}

// NewAssignmentService creates a new instance of AssignmentService.
func NewAssignmentService(ar repositories.AssignmentRepository, er repositories.EventRepository, db *sql.DB, opts AssignmentOptions) AssignmentService {
	return &assignmentService{
		assignmentRepo: ar,
		eventRepo:      er,
		db:             db,
		ministry:       models.DefaultMinistry,
		opts:           opts,
	}
}

// --- AssignmentBuilder ---

// AssignmentBuilder accumulates an in-progress staffing plan. It mirrors the
// build step of the mobile flow: pick a team, then add members function by
// function. Switching teams discards staffing made under the previous team.
type AssignmentBuilder struct {
	actor     models.Actor
	team      *models.Team
	functions models.FunctionAssignments
}

func (s *assignmentService) NewBuilder(actor models.Actor) *AssignmentBuilder {
	return &AssignmentBuilder{actor: actor, functions: models.FunctionAssignments{}}
}

// SelectTeam picks the team the assignment staffs. Team leaders may only pick
// their own team.
func (b *AssignmentBuilder) SelectTeam(team models.Team) error {
	if !team.IsValid() {
		return ErrInvalidTeam
	}
	if !CanSelectTeam(b.actor, team) {
		return ErrPermissionDenied
	}
	if b.team != nil && *b.team != team {
		b.functions = models.FunctionAssignments{}
	}
	b.team = &team
	return nil
}

// AssignMember appends a member to a function's list. The same member cannot
// appear twice under one function.
func (b *AssignmentBuilder) AssignMember(function models.FunctionKey, member models.AssignedMember) error {
	if b.team == nil {
		return ErrNoTeamSelected
	}
	if !function.IsValid() {
		return fmt.Errorf("%w: unknown function %q", ErrValidation, function)
	}
	for _, existing := range b.functions[function] {
		if existing.UserID == member.UserID {
			return fmt.Errorf("%w: %s under %s", ErrDuplicateMember, member.UserID, function)
		}
	}
	b.functions[function] = append(b.functions[function], member)
	return nil
}

// UnassignMember removes the member from a function's list; no-op if absent.
func (b *AssignmentBuilder) UnassignMember(function models.FunctionKey, userID string) {
	members := b.functions[function]
	for i, m := range members {
		if m.UserID == userID {
			b.functions[function] = append(members[:i:i], members[i+1:]...)
			if len(b.functions[function]) == 0 {
				delete(b.functions, function)
			}
			return
		}
	}
}

// Request converts the builder state into a save request.
func (b *AssignmentBuilder) Request(observations *string) (SaveAssignmentRequest, error) {
	if b.team == nil {
		return SaveAssignmentRequest{}, ErrNoTeamSelected
	}
	if b.functions.MemberCount() == 0 {
		return SaveAssignmentRequest{}, ErrNoMembersAssigned
	}
	return SaveAssignmentRequest{Team: *b.team, Functions: b.functions, Observations: observations}, nil
}

// --- Method Implementations ---

// SaveAssignment creates or replaces the assignment for (event, ministry).
// The confirmation map is rebuilt on every save: offering entries come back
// auto-confirmed, members keeping the same function keep an existing
// confirmation, everyone else resets to unconfirmed. Saving always clears a
// prior final sign-off. The upsert and the event's derived fields are written
// in one transaction.
func (s *assignmentService) SaveAssignment(actor models.Actor, eventID string, req SaveAssignmentRequest) (*models.Assignment, error) {
	if !CanCreateAssignment(actor) {
		return nil, ErrPermissionDenied
	}
	if !req.Team.IsValid() {
		return nil, ErrInvalidTeam
	}
	if !CanSelectTeam(actor, req.Team) {
		return nil, ErrPermissionDenied
	}
	if req.Functions.MemberCount() == 0 {
		return nil, ErrNoMembersAssigned
	}
	for function, members := range req.Functions {
		if !function.IsValid() {
			return nil, fmt.Errorf("%w: unknown function %q", ErrValidation, function)
		}
		seen := map[string]bool{}
		for _, m := range members {
			if seen[m.UserID] {
				return nil, fmt.Errorf("%w: %s under %s", ErrDuplicateMember, m.UserID, function)
			}
			seen[m.UserID] = true
		}
	}
	if !s.opts.AllowMultipleFunctions {
		if userID, ok := firstCrossFunctionDuplicate(req.Functions); ok {
			return nil, fmt.Errorf("%w: %s appears in more than one function", ErrDuplicateMember, userID)
		}
	}

	if _, err := s.eventRepo.GetEventByID(eventID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to look up event for assignment: %w", err)
	}

	previous, err := s.assignmentRepo.GetAssignment(eventID, s.ministry)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing assignment: %w", err)
	}
	if previous != nil && !CanModifyAssignment(actor, previous) {
		return nil, ErrPermissionDenied
	}

	assignment := &models.Assignment{
		EventID:       eventID,
		Ministry:      s.ministry,
		Team:          req.Team,
		Functions:     req.Functions,
		Observations:  req.Observations,
		CreatedBy:     actor.UserID,
		CreatorName:   actor.FullName,
		Confirmations: buildConfirmationMap(req.Functions, previous, time.Now()),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.assignmentRepo.UpsertAssignment(tx, assignment); err != nil {
		return nil, fmt.Errorf("failed to save assignment: %w", err)
	}
	if err := s.eventRepo.RefreshScaleStatus(tx, eventID, models.ScaleStatusPending); err != nil {
		return nil, fmt.Errorf("failed to refresh event staffing status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment save: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) GetAssignment(eventID string) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetAssignment(eventID, s.ministry)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}
	return assignment, nil
}

func (s *assignmentService) GetAssignments(team *models.Team, pendingOnly bool) ([]models.Assignment, error) {
	if team != nil && !team.IsValid() {
		return nil, ErrInvalidTeam
	}
	assignments, err := s.assignmentRepo.GetAssignments(s.ministry, team, pendingOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignments: %w", err)
	}
	return assignments, nil
}

// DeleteAssignment removes the staffing plan and recomputes the event's
// derived fields in the same transaction, dropping its status back to none.
func (s *assignmentService) DeleteAssignment(actor models.Actor, eventID string) error {
	assignment, err := s.assignmentRepo.GetAssignment(eventID, s.ministry)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return fmt.Errorf("failed to find assignment for deletion: %w", err)
	}
	if !CanModifyAssignment(actor, assignment) {
		return ErrPermissionDenied
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.assignmentRepo.DeleteAssignment(tx, eventID, s.ministry); err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	if err := s.eventRepo.RefreshScaleStatus(tx, eventID, models.ScaleStatusNone); err != nil {
		return fmt.Errorf("failed to refresh event staffing status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit assignment deletion: %w", err)
	}
	return nil
}

// buildConfirmationMap produces the per-member confirmation entries for a
// staffing plan. Offering members are presumed present because they file the
// collection report afterwards. A previously confirmed member keeps the
// confirmation as long as their function did not change.
func buildConfirmationMap(functions models.FunctionAssignments, previous *models.Assignment, now time.Time) models.ConfirmationMap {
	confirmations := models.ConfirmationMap{}
	for function, members := range functions {
		for _, member := range members {
			entry := models.ConfirmationEntry{
				MemberName: member.FullName,
				Function:   function,
			}
			if function == models.FunctionOffering {
				entry.Confirmed = true
				entry.AutoConfirmed = true
				entry.ConfirmedAt = &now
			} else if previous != nil {
				if prev, ok := previous.Confirmations[member.UserID]; ok && prev.Confirmed && prev.Function == function && !prev.AutoConfirmed {
					entry.Confirmed = true
					entry.ConfirmedAt = prev.ConfirmedAt
				}
			}
			confirmations[member.UserID] = entry
		}
	}
	return confirmations
}

func firstCrossFunctionDuplicate(functions models.FunctionAssignments) (string, bool) {
	seen := map[string]models.FunctionKey{}
	for function, members := range functions {
		for _, m := range members {
			if prev, ok := seen[m.UserID]; ok && prev != function {
				return m.UserID, true
			}
			seen[m.UserID] = function
		}
	}
	return "", false
}
