package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"church_community_backend/internal/models"
	"church_community_backend/internal/repositories"
)

// --- Custom Service Errors for Roster ---
var (
	ErrPermissionDenied  = errors.New("caller does not have permission for this operation")
	ErrUserDirNotFound   = errors.New("user not found in the directory")
	ErrNotMinistryMember = errors.New("user is not a ministry member")
	ErrAlreadyMember     = errors.New("user is already a ministry member")
	ErrAlreadyAssigned   = errors.New("member is already enrolled on a team")
	ErrNotOnTeam         = errors.New("member is not enrolled on this team")
	ErrNotEligible       = errors.New("user must be a ministry member before leading")
	ErrAlreadyLeader     = errors.New("member already holds a leadership role")
	ErrScopeOccupied     = errors.New("scope already has an appointed leader")
	ErrNoLeader          = errors.New("no leader is appointed for this scope")
	ErrSearchTooShort    = errors.New("search text must have at least 2 characters")
	ErrInvalidTeam       = errors.New("unknown team")
	ErrInvalidScope      = errors.New("unknown leadership scope")
)

// --- Roster DTOs ---

type AddMinistryMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// --- RosterService Interface ---
type RosterService interface {
	AddMinistryMember(actor models.Actor, req AddMinistryMemberRequest) (*models.MinistryMember, error)
	RemoveMinistryMember(actor models.Actor, userID string) error
	GetMembers(team *models.Team) ([]models.MinistryMember, error)
	SearchEligibleMembers(function models.FunctionKey, queryText string, team models.Team) ([]models.MinistryMember, error)

	AddTeamMember(actor models.Actor, userID string, team models.Team) (*models.MinistryMember, error)
	RemoveTeamMember(actor models.Actor, userID string, team models.Team) error

	SetLeader(actor models.Actor, userID string, scope models.LeaderScope) (*models.Leadership, error)
	RemoveLeader(actor models.Actor, scope models.LeaderScope) error
	GetLeaders() ([]models.Leadership, error)
}

type rosterService struct {
	rosterRepo repositories.RosterRepository
	authRepo   repositories.AuthRepository
	db         *sql.DB
}

// NewRosterService creates a new instance of RosterService.
func NewRosterService(rr repositories.RosterRepository, ar repositories.AuthRepository, db *sql.DB) RosterService {
	return &rosterService{rosterRepo: rr, authRepo: ar, db: db}
}

// AddMinistryMember enrols a user from the global directory into the ministry.
// Contact fields are copied as a snapshot at enrolment time.
func (s *rosterService) AddMinistryMember(actor models.Actor, req AddMinistryMemberRequest) (*models.MinistryMember, error) {
	if !CanManageMinistry(actor) {
		return nil, ErrPermissionDenied
	}

	user, err := s.authRepo.FindUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrUserDirNotFound, req.UserID)
		}
		return nil, fmt.Errorf("failed to look up user for enrolment: %w", err)
	}

	member := &models.MinistryMember{
		UserID:   user.ID,
		FullName: user.FullName,
		Phone:    user.Phone,
		Email:    user.Email,
		Role:     models.RoleMember,
	}
	if err := s.rosterRepo.CreateMember(s.db, member); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyMember, req.UserID)
		}
		return nil, fmt.Errorf("failed to create ministry member: %w", err)
	}
	return member, nil
}

// RemoveMinistryMember deletes the member record. If the member holds any
// leadership role the leadership record is cleared in the same transaction so
// no dangling leader survives the removal.
func (s *rosterService) RemoveMinistryMember(actor models.Actor, userID string) error {
	if !CanManageMinistry(actor) {
		return ErrPermissionDenied
	}

	member, err := s.rosterRepo.GetMemberByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotMinistryMember
		}
		return fmt.Errorf("failed to find member for removal: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if member.Role.IsLeadership() {
		if err := s.clearLeadershipFor(tx, userID); err != nil {
			return err
		}
	}
	if err := s.rosterRepo.DeleteMember(tx, userID); err != nil {
		return fmt.Errorf("failed to delete ministry member: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit member removal: %w", err)
	}
	return nil
}

func (s *rosterService) GetMembers(team *models.Team) ([]models.MinistryMember, error) {
	if team != nil && !team.IsValid() {
		return nil, ErrInvalidTeam
	}
	members, err := s.rosterRepo.GetMembers(team, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get ministry members: %w", err)
	}
	return members, nil
}

// SearchEligibleMembers returns the team's members whose name contains
// queryText. Any team member may staff any function, so the function key is
// validated but does not narrow the result.
func (s *rosterService) SearchEligibleMembers(function models.FunctionKey, queryText string, team models.Team) ([]models.MinistryMember, error) {
	if !function.IsValid() {
		return nil, fmt.Errorf("%w: unknown function %q", ErrValidation, function)
	}
	if !team.IsValid() {
		return nil, ErrInvalidTeam
	}
	queryText = strings.TrimSpace(queryText)
	if len([]rune(queryText)) < 2 {
		return nil, ErrSearchTooShort
	}
	members, err := s.rosterRepo.GetMembers(&team, &queryText)
	if err != nil {
		return nil, fmt.Errorf("failed to search ministry members: %w", err)
	}
	return members, nil
}

// AddTeamMember enrols an existing ministry member onto a team. Team
// membership requires ministry membership first.
func (s *rosterService) AddTeamMember(actor models.Actor, userID string, team models.Team) (*models.MinistryMember, error) {
	if !CanManageRoster(actor) {
		return nil, ErrPermissionDenied
	}
	if !team.IsValid() {
		return nil, ErrInvalidTeam
	}

	member, err := s.rosterRepo.GetMemberByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotMinistryMember, userID)
		}
		return nil, fmt.Errorf("failed to find member for team enrolment: %w", err)
	}
	if member.Team != nil {
		return nil, fmt.Errorf("%w: already on %s", ErrAlreadyAssigned, *member.Team)
	}

	if err := s.rosterRepo.SetMemberTeam(s.db, userID, &team); err != nil {
		return nil, fmt.Errorf("failed to enrol member on team: %w", err)
	}
	member.Team = &team
	return member, nil
}

// RemoveTeamMember clears the member's team enrolment. A team leader removed
// from their own team also loses the leadership record.
func (s *rosterService) RemoveTeamMember(actor models.Actor, userID string, team models.Team) error {
	if !CanManageRoster(actor) {
		return ErrPermissionDenied
	}
	if !team.IsValid() {
		return ErrInvalidTeam
	}

	member, err := s.rosterRepo.GetMemberByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotMinistryMember, userID)
		}
		return fmt.Errorf("failed to find member for team removal: %w", err)
	}
	if !member.OnTeam(team) {
		return fmt.Errorf("%w: %s", ErrNotOnTeam, userID)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	leadsThisTeam := (team == models.TeamA && member.Role == models.RoleTeamLeaderA) ||
		(team == models.TeamB && member.Role == models.RoleTeamLeaderB)
	if leadsThisTeam {
		if err := s.clearLeadershipFor(tx, userID); err != nil {
			return err
		}
	}
	if err := s.rosterRepo.SetMemberTeam(tx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear team enrolment: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit team removal: %w", err)
	}
	return nil
}

// SetLeader appoints a ministry member as leader of a scope. A member may hold
// at most one leadership role and a scope at most one leader; an occupied
// scope must be vacated with RemoveLeader before a new appointment.
// Team-scoped leaders are auto-enrolled onto their team.
func (s *rosterService) SetLeader(actor models.Actor, userID string, scope models.LeaderScope) (*models.Leadership, error) {
	if !CanManageMinistry(actor) {
		return nil, ErrPermissionDenied
	}
	if !scope.IsValid() {
		return nil, ErrInvalidScope
	}

	member, err := s.rosterRepo.GetMemberByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotEligible, userID)
		}
		return nil, fmt.Errorf("failed to find member for leadership: %w", err)
	}

	existing, err := s.rosterRepo.GetLeadershipByUserID(userID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing leadership: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: leads %s", ErrAlreadyLeader, existing.Scope)
	}

	incumbent, err := s.rosterRepo.GetLeadership(scope)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check scope leadership: %w", err)
	}
	if incumbent != nil {
		return nil, fmt.Errorf("%w: %s is led by %s", ErrScopeOccupied, scope, incumbent.MemberName)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	leadership := &models.Leadership{
		Scope:      scope,
		UserID:     userID,
		MemberName: member.FullName,
	}
	if err := s.rosterRepo.CreateLeadership(tx, leadership); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrScopeOccupied
		}
		return nil, fmt.Errorf("failed to write leadership record: %w", err)
	}
	if err := s.rosterRepo.SetMemberRole(tx, userID, scope.Role()); err != nil {
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}
	if err := s.authRepo.UpdateUserRole(tx, userID, scope.Role()); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to update user role: %w", err)
	}
	if team, ok := scope.Team(); ok && !member.OnTeam(team) {
		if err := s.rosterRepo.SetMemberTeam(tx, userID, &team); err != nil {
			return nil, fmt.Errorf("failed to auto-enrol leader on team: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit leadership appointment: %w", err)
	}
	return leadership, nil
}

// RemoveLeader clears the leadership record for a scope and demotes the
// affected member back to a plain member.
func (s *rosterService) RemoveLeader(actor models.Actor, scope models.LeaderScope) error {
	if !CanManageMinistry(actor) {
		return ErrPermissionDenied
	}
	if !scope.IsValid() {
		return ErrInvalidScope
	}

	leadership, err := s.rosterRepo.GetLeadership(scope)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNoLeader
		}
		return fmt.Errorf("failed to find leadership record: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.demoteLeader(tx, leadership); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit leadership removal: %w", err)
	}
	return nil
}

func (s *rosterService) GetLeaders() ([]models.Leadership, error) {
	leaders := []models.Leadership{}
	for _, scope := range []models.LeaderScope{models.ScopeTeamA, models.ScopeTeamB, models.ScopeGeneral} {
		leadership, err := s.rosterRepo.GetLeadership(scope)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("failed to get leadership for %s: %w", scope, err)
		}
		leaders = append(leaders, *leadership)
	}
	return leaders, nil
}

// clearLeadershipFor removes whatever leadership record the user holds and
// resets their roles, inside the caller's transaction.
func (s *rosterService) clearLeadershipFor(tx repositories.SQLExecutor, userID string) error {
	leadership, err := s.rosterRepo.GetLeadershipByUserID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up leadership for cascade: %w", err)
	}
	return s.demoteLeader(tx, leadership)
}

func (s *rosterService) demoteLeader(tx repositories.SQLExecutor, leadership *models.Leadership) error {
	if err := s.rosterRepo.DeleteLeadership(tx, leadership.Scope); err != nil {
		return fmt.Errorf("failed to delete leadership record: %w", err)
	}
	if err := s.rosterRepo.SetMemberRole(tx, leadership.UserID, models.RoleMember); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to reset member role: %w", err)
	}
	if err := s.authRepo.UpdateUserRole(tx, leadership.UserID, models.RoleMember); err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to reset user role: %w", err)
	}
	return nil
}
