package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church_community_backend/internal/models"
)

func newReportServiceForTest(rr *mockReportRepo, ar *mockAssignmentRepo, er *mockEventRepo, opts ReportOptions) ReportService {
	return NewReportService(rr, ar, er, nil, opts)
}

func reportFixtures() (*mockReportRepo, *mockAssignmentRepo, *mockEventRepo) {
	assignment := &models.Assignment{
		EventID:  "ev-1",
		Ministry: models.DefaultMinistry,
		Team:     models.TeamA,
		Functions: models.FunctionAssignments{
			models.FunctionOffering: {{UserID: "m2", FullName: "Marta Two"}},
		},
	}
	event := &models.Event{ID: "ev-1", Name: "Sunday Service"}
	return &mockReportRepo{}, &mockAssignmentRepo{assignment: assignment}, &mockEventRepo{event: event}
}

func TestSaveReport_OfferingMemberFiles(t *testing.T) {
	reportRepo, assignmentRepo, eventRepo := reportFixtures()
	svc := newReportServiceForTest(reportRepo, assignmentRepo, eventRepo, ReportOptions{})

	notes := "one envelope unopened"
	report, err := svc.SaveReport(
		models.Actor{UserID: "m2", FullName: "Marta Two", Role: models.RoleMember},
		"ev-1",
		SaveReportRequest{TransferAmount: "R$ 1.250,50", CashAmount: "50,00", Notes: &notes},
	)
	require.NoError(t, err)

	assert.Equal(t, 1250.50, report.TransferAmount)
	assert.Equal(t, 50.0, report.CashAmount)
	assert.Equal(t, 1300.50, report.Total)
	assert.Equal(t, "m2", report.FiledBy)
	assert.Equal(t, "Marta Two", report.FilerName)
	assert.Equal(t, models.DefaultMinistry, report.Ministry)
	require.Len(t, reportRepo.upserted, 1)
}

func TestSaveReport_NonOfferingMemberDenied(t *testing.T) {
	reportRepo, assignmentRepo, eventRepo := reportFixtures()
	svc := newReportServiceForTest(reportRepo, assignmentRepo, eventRepo, ReportOptions{})

	_, err := svc.SaveReport(memberActor("m9"), "ev-1", SaveReportRequest{CashAmount: "10,00"})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSaveReport_LeaderMayFileWithoutAssignment(t *testing.T) {
	reportRepo := &mockReportRepo{}
	eventRepo := &mockEventRepo{event: &models.Event{ID: "ev-1", Name: "Sunday Service"}}
	svc := newReportServiceForTest(reportRepo, &mockAssignmentRepo{}, eventRepo, ReportOptions{})

	report, err := svc.SaveReport(generalLeaderActor(), "ev-1", SaveReportRequest{CashAmount: "200"})
	require.NoError(t, err)
	assert.Equal(t, 200.0, report.Total)
}

func TestSaveReport_EventMustExist(t *testing.T) {
	svc := newReportServiceForTest(&mockReportRepo{}, &mockAssignmentRepo{}, &mockEventRepo{}, ReportOptions{})

	_, err := svc.SaveReport(generalLeaderActor(), "ev-404", SaveReportRequest{CashAmount: "10,00"})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSaveReport_ZeroTotalRejected(t *testing.T) {
	reportRepo, assignmentRepo, eventRepo := reportFixtures()
	svc := newReportServiceForTest(reportRepo, assignmentRepo, eventRepo, ReportOptions{})

	_, err := svc.SaveReport(generalLeaderActor(), "ev-1", SaveReportRequest{})
	assert.ErrorIs(t, err, ErrZeroTotal, "empty amounts parse to zero and the total must be positive")
	assert.Empty(t, reportRepo.upserted)
}

func TestSaveReport_MalformedAmountStrictByDefault(t *testing.T) {
	reportRepo, assignmentRepo, eventRepo := reportFixtures()
	svc := newReportServiceForTest(reportRepo, assignmentRepo, eventRepo, ReportOptions{})

	_, err := svc.SaveReport(generalLeaderActor(), "ev-1", SaveReportRequest{TransferAmount: "abc", CashAmount: "50,00"})
	assert.ErrorIs(t, err, ErrAmountFormat)
}

func TestSaveReport_MalformedAmountCoercedWhenConfigured(t *testing.T) {
	reportRepo, assignmentRepo, eventRepo := reportFixtures()
	svc := newReportServiceForTest(reportRepo, assignmentRepo, eventRepo, ReportOptions{CoerceInvalidAmounts: true})

	report, err := svc.SaveReport(generalLeaderActor(), "ev-1", SaveReportRequest{TransferAmount: "abc", CashAmount: "50,00"})
	require.NoError(t, err)
	assert.Equal(t, 0.0, report.TransferAmount)
	assert.Equal(t, 50.0, report.Total)
}

func TestSaveReport_OnlyFilerOrLeaderOverwrites(t *testing.T) {
	reportRepo, assignmentRepo, eventRepo := reportFixtures()
	reportRepo.report = &models.CollectionReport{EventID: "ev-1", Ministry: models.DefaultMinistry, FiledBy: "someone-else"}

	// The offering member may file in general but cannot overwrite another
	// member's report.
	svc := newReportServiceForTest(reportRepo, assignmentRepo, eventRepo, ReportOptions{})
	_, err := svc.SaveReport(
		models.Actor{UserID: "m2", FullName: "Marta Two", Role: models.RoleMember},
		"ev-1",
		SaveReportRequest{CashAmount: "50,00"},
	)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// A leader can.
	_, err = svc.SaveReport(generalLeaderActor(), "ev-1", SaveReportRequest{CashAmount: "50,00"})
	assert.NoError(t, err)
}

func TestGetReport_NotFound(t *testing.T) {
	svc := newReportServiceForTest(&mockReportRepo{}, &mockAssignmentRepo{}, &mockEventRepo{}, ReportOptions{})

	_, err := svc.GetReport("ev-404")
	assert.ErrorIs(t, err, ErrReportNotFound)
}
