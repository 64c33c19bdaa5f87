package services

import (
	"database/sql"
	"errors"
	"fmt"

	"church_community_backend/internal/models"
	"church_community_backend/internal/repositories"
	"church_community_backend/pkg/utils"
)

// --- Custom Service Errors for Collection Reports ---
var (
	ErrReportNotFound = errors.New("collection report not found")
	ErrZeroTotal      = errors.New("report total must be greater than zero")
	ErrAmountFormat   = utils.ErrAmountFormat
)

// ReportOptions carries the amount-parsing policy. The strict default rejects
// malformed currency input; set CoerceInvalidAmounts to treat it as zero
// instead.
type ReportOptions struct {
	CoerceInvalidAmounts bool
}

// --- Report DTOs ---

type SaveReportRequest struct {
	TransferAmount string  `json:"transfer_amount"`
	CashAmount     string  `json:"cash_amount"`
	Notes          *string `json:"notes"`
}

// --- ReportService Interface ---
type ReportService interface {
	SaveReport(actor models.Actor, eventID string, req SaveReportRequest) (*models.CollectionReport, error)
	GetReport(eventID string) (*models.CollectionReport, error)
	GetReports(page, pageSize int) ([]models.CollectionReport, int, error)
}

type reportService struct {
	reportRepo     repositories.ReportRepository
	assignmentRepo repositories.AssignmentRepository
	eventRepo      repositories.EventRepository
	db             *sql.DB
	ministry       string
	opts           ReportOptions
}

// NewReportService creates a new instance of ReportService.
func NewReportService(
	rr repositories.ReportRepository,
	ar repositories.AssignmentRepository,
	er repositories.EventRepository,
	db *sql.DB,
	opts ReportOptions,
) ReportService {
	return &reportService{
		reportRepo:     rr,
		assignmentRepo: ar,
		eventRepo:      er,
		db:             db,
		ministry:       models.DefaultMinistry,
		opts:           opts,
	}
}

// SaveReport creates or overwrites the collection report for an event.
// Authorized filers are the offering-function member of the event's assignment
// and any leadership or admin role; an existing report may additionally be
// overwritten by its original filer.
func (s *reportService) SaveReport(actor models.Actor, eventID string, req SaveReportRequest) (*models.CollectionReport, error) {
	if _, err := s.eventRepo.GetEventByID(eventID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to look up event for report: %w", err)
	}

	assignment, err := s.assignmentRepo.GetAssignment(eventID, s.ministry)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up assignment for report authorization: %w", err)
	}
	if !CanFileReport(actor, assignment) {
		return nil, ErrPermissionDenied
	}

	existing, err := s.reportRepo.GetReport(eventID, s.ministry)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing report: %w", err)
	}
	if !CanEditReport(actor, existing) {
		return nil, ErrPermissionDenied
	}

	transfer, err := s.parseAmount(req.TransferAmount)
	if err != nil {
		return nil, fmt.Errorf("transfer_amount: %w", err)
	}
	cash, err := s.parseAmount(req.CashAmount)
	if err != nil {
		return nil, fmt.Errorf("cash_amount: %w", err)
	}
	total := transfer + cash
	if total <= 0 {
		return nil, ErrZeroTotal
	}

	report := &models.CollectionReport{
		EventID:        eventID,
		Ministry:       s.ministry,
		TransferAmount: transfer,
		CashAmount:     cash,
		Total:          total,
		Notes:          req.Notes,
		FiledBy:        actor.UserID,
		FilerName:      actor.FullName,
	}
	if err := s.reportRepo.UpsertReport(s.db, report); err != nil {
		return nil, fmt.Errorf("failed to save collection report: %w", err)
	}
	return report, nil
}

func (s *reportService) GetReport(eventID string) (*models.CollectionReport, error) {
	report, err := s.reportRepo.GetReport(eventID, s.ministry)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to get collection report: %w", err)
	}
	return report, nil
}

func (s *reportService) GetReports(page, pageSize int) ([]models.CollectionReport, int, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	reports, totalCount, err := s.reportRepo.GetReports(s.ministry, page, pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get collection reports: %w", err)
	}
	return reports, totalCount, nil
}

func (s *reportService) parseAmount(text string) (float64, error) {
	value, err := utils.ParseAmount(text)
	if err != nil {
		if s.opts.CoerceInvalidAmounts {
			return 0, nil
		}
		return 0, err
	}
	return value, nil
}
