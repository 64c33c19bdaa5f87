package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"church_community_backend/internal/models"
)

// ReportRepository defines the interface for collection reports. Reports are
// keyed by (event_id, ministry) with upsert semantics, the same deterministic
// key pattern assignments use.
type ReportRepository interface {
	UpsertReport(executor SQLExecutor, report *models.CollectionReport) error
	GetReport(eventID, ministry string) (*models.CollectionReport, error)
	GetReports(ministry string, page, pageSize int) ([]models.CollectionReport, int, error)
}

type reportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new instance of ReportRepository.
func NewReportRepository(db *sql.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) UpsertReport(executor SQLExecutor, report *models.CollectionReport) error {
	query := `INSERT INTO collection_reports
	            (event_id, ministry, transfer_amount, cash_amount, total, notes, filed_by, filer_name, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	          ON CONFLICT (event_id, ministry) DO UPDATE SET
	            transfer_amount = EXCLUDED.transfer_amount,
	            cash_amount = EXCLUDED.cash_amount,
	            total = EXCLUDED.total,
	            notes = EXCLUDED.notes,
	            filed_by = EXCLUDED.filed_by,
	            filer_name = EXCLUDED.filer_name,
	            updated_at = NOW()
	          RETURNING created_at, updated_at`
	err := executor.QueryRow(query,
		report.EventID, report.Ministry, report.TransferAmount, report.CashAmount,
		report.Total, report.Notes, report.FiledBy, report.FilerName,
	).Scan(&report.CreatedAt, &report.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: upserting collection report: %v", ErrDatabaseError, err)
	}
	return nil
}

func scanReportRow(row scanner) (*models.CollectionReport, error) {
	var report models.CollectionReport
	var notes sql.NullString
	err := row.Scan(
		&report.EventID, &report.Ministry, &report.TransferAmount, &report.CashAmount,
		&report.Total, &notes, &report.FiledBy, &report.FilerName,
		&report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning collection report: %v", ErrDatabaseError, err)
	}
	if notes.Valid {
		report.Notes = &notes.String
	}
	return &report, nil
}

func (r *reportRepository) GetReport(eventID, ministry string) (*models.CollectionReport, error) {
	query := `SELECT event_id, ministry, transfer_amount, cash_amount, total, notes, filed_by, filer_name, created_at, updated_at
	          FROM collection_reports WHERE event_id = $1 AND ministry = $2`
	return scanReportRow(r.db.QueryRow(query, eventID, ministry))
}

func (r *reportRepository) GetReports(ministry string, page, pageSize int) ([]models.CollectionReport, int, error) {
	reports := []models.CollectionReport{}
	totalCount := 0

	query := `SELECT event_id, ministry, transfer_amount, cash_amount, total, notes, filed_by, filer_name, created_at, updated_at,
	    COUNT(*) OVER() AS total_count
	  FROM collection_reports WHERE ministry = $1
	  ORDER BY created_at DESC
	  LIMIT $2 OFFSET $3`

	rows, err := r.db.Query(query, ministry, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying collection reports: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var report models.CollectionReport
		var notes sql.NullString
		if err := rows.Scan(
			&report.EventID, &report.Ministry, &report.TransferAmount, &report.CashAmount,
			&report.Total, &notes, &report.FiledBy, &report.FilerName,
			&report.CreatedAt, &report.UpdatedAt, &totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning collection report from list: %v", ErrDatabaseError, err)
		}
		if notes.Valid {
			report.Notes = &notes.String
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating collection reports: %v", ErrDatabaseError, err)
	}
	return reports, totalCount, nil
}
