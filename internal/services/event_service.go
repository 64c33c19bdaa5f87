package services

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"church_community_backend/internal/models"
	"church_community_backend/internal/repositories"
)

var ErrEventTimeFormat = errors.New("invalid event time, use RFC3339 like 2026-01-15T19:30:00Z")

// --- Event DTOs ---

type CreateEventRequest struct {
	Name     string `json:"name" binding:"required"`
	StartsAt string `json:"starts_at" binding:"required"`
}

// --- EventService Interface ---
type EventService interface {
	CreateEvent(actor models.Actor, req CreateEventRequest) (*models.Event, error)
	GetEventByID(id string) (*models.Event, error)
	GetEvents(from *string, page, pageSize int) ([]models.Event, int, error)
}

type eventService struct {
	eventRepo repositories.EventRepository
	db        *sql.DB
}

// NewEventService creates a new instance of EventService.
func NewEventService(er repositories.EventRepository, db *sql.DB) EventService {
	return &eventService{eventRepo: er, db: db}
}

func (s *eventService) CreateEvent(actor models.Actor, req CreateEventRequest) (*models.Event, error) {
	if !CanManageMinistry(actor) {
		return nil, ErrPermissionDenied
	}
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		startsAt, err = time.Parse("2006-01-02T15:04:05", req.StartsAt)
		if err != nil {
			return nil, ErrEventTimeFormat
		}
	}

	event := &models.Event{
		Name:        req.Name,
		StartsAt:    startsAt,
		ScaleStatus: models.ScaleStatusNone,
		CreatedBy:   &actor.UserID,
	}
	if err := s.eventRepo.CreateEvent(s.db, event); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEventByID(id string) (*models.Event, error) {
	event, err := s.eventRepo.GetEventByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (s *eventService) GetEvents(from *string, page, pageSize int) ([]models.Event, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	events, totalCount, err := s.eventRepo.GetEvents(from, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get events: %w", err)
	}
	return events, totalCount, nil
}
