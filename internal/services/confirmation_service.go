package services

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"church_community_backend/internal/models"
	"church_community_backend/internal/repositories"
)

// --- Custom Service Errors for Confirmations ---
var (
	ErrNotScheduled     = errors.New("member is not scheduled on this assignment")
	ErrAlreadyConfirmed = errors.New("presence already confirmed")
)

// --- ConfirmationService Interface ---
type ConfirmationService interface {
	ConfirmPresence(actor models.Actor, eventID string) (*models.Assignment, error)
	FinalizeAssignment(actor models.Actor, eventID string) (*models.Assignment, error)
	ConfirmationRate(assignment *models.Assignment) int
}

type confirmationService struct {
	assignmentRepo repositories.AssignmentRepository
	eventRepo      repositories.EventRepository
	db             *sql.DB
	ministry       string
}

// NewConfirmationService creates a new instance of ConfirmationService.
func NewConfirmationService(ar repositories.AssignmentRepository, er repositories.EventRepository, db *sql.DB) ConfirmationService {
	return &confirmationService{
		assignmentRepo: ar,
		eventRepo:      er,
		db:             db,
		ministry:       models.DefaultMinistry,
	}
}

// ConfirmPresence flips the caller's own confirmation entry to confirmed.
// The transition is one-way and self-service only: leaders cannot confirm on a
// member's behalf. Confirming twice returns ErrAlreadyConfirmed with the
// unchanged assignment so callers can surface it as a warning, not a failure.
func (s *confirmationService) ConfirmPresence(actor models.Actor, eventID string) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetAssignment(eventID, s.ministry)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment for confirmation: %w", err)
	}

	entry, ok := assignment.Confirmations[actor.UserID]
	if !ok {
		return nil, ErrNotScheduled
	}
	if entry.Confirmed {
		return assignment, ErrAlreadyConfirmed
	}

	now := time.Now()
	entry.Confirmed = true
	entry.ConfirmedAt = &now
	assignment.Confirmations[actor.UserID] = entry

	if err := s.assignmentRepo.SetConfirmations(s.db, eventID, s.ministry, assignment.Confirmations); err != nil {
		return nil, fmt.Errorf("failed to store presence confirmation: %w", err)
	}
	return assignment, nil
}

// FinalizeAssignment records the leader's sign-off. There is no quorum: a
// leader may finalize at any confirmation rate. The event's staffing status
// moves to confirmed in the same transaction.
func (s *confirmationService) FinalizeAssignment(actor models.Actor, eventID string) (*models.Assignment, error) {
	assignment, err := s.assignmentRepo.GetAssignment(eventID, s.ministry)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("failed to get assignment for finalization: %w", err)
	}
	if !CanModifyAssignment(actor, assignment) {
		return nil, ErrPermissionDenied
	}

	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.assignmentRepo.SetFinalized(tx, eventID, s.ministry, actor.UserID, now); err != nil {
		return nil, fmt.Errorf("failed to finalize assignment: %w", err)
	}
	if err := s.eventRepo.RefreshScaleStatus(tx, eventID, models.ScaleStatusConfirmed); err != nil {
		return nil, fmt.Errorf("failed to refresh event staffing status: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit assignment finalization: %w", err)
	}

	assignment.IsConfirmedFinal = true
	assignment.FinalizedBy = &actor.UserID
	assignment.FinalizedAt = &now
	return assignment, nil
}

// ConfirmationRate returns confirmed/total as a whole percentage, rounded to
// the nearest percent. Zero when nobody is scheduled.
func (s *confirmationService) ConfirmationRate(assignment *models.Assignment) int {
	total := len(assignment.Confirmations)
	if total == 0 {
		return 0
	}
	confirmed := assignment.Confirmations.ConfirmedCount()
	return int(math.Round(float64(confirmed) / float64(total) * 100))
}
