package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church_community_backend/internal/models"
)

func newAssignmentServiceForTest(ar *mockAssignmentRepo, er *mockEventRepo, opts AssignmentOptions) AssignmentService {
	return NewAssignmentService(ar, er, nil, opts)
}

func sampleFunctions() models.FunctionAssignments {
	return models.FunctionAssignments{
		models.FunctionReception: {{UserID: "m1", FullName: "Maria One"}},
		models.FunctionOffering:  {{UserID: "m2", FullName: "Marta Two"}},
	}
}

func TestBuilder_AssignRequiresTeam(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())
	builder := svc.NewBuilder(generalLeaderActor())

	err := builder.AssignMember(models.FunctionDoor, models.AssignedMember{UserID: "m1", FullName: "Maria One"})
	assert.ErrorIs(t, err, ErrNoTeamSelected)

	_, err = builder.Request(nil)
	assert.ErrorIs(t, err, ErrNoTeamSelected)
}

func TestBuilder_TeamLeaderCannotSelectOtherTeam(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())
	builder := svc.NewBuilder(teamLeaderAActor())

	assert.ErrorIs(t, builder.SelectTeam(models.TeamB), ErrPermissionDenied)
	assert.NoError(t, builder.SelectTeam(models.TeamA))
	assert.ErrorIs(t, builder.SelectTeam("team_c"), ErrInvalidTeam)
}

func TestBuilder_SwitchingTeamsDiscardsStaffing(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())
	builder := svc.NewBuilder(generalLeaderActor())

	require.NoError(t, builder.SelectTeam(models.TeamA))
	require.NoError(t, builder.AssignMember(models.FunctionDoor, models.AssignedMember{UserID: "m1", FullName: "Maria One"}))

	require.NoError(t, builder.SelectTeam(models.TeamB))
	_, err := builder.Request(nil)
	assert.ErrorIs(t, err, ErrNoMembersAssigned, "staffing from the previous team must not survive")

	// Re-selecting the same team keeps staffing.
	require.NoError(t, builder.AssignMember(models.FunctionDoor, models.AssignedMember{UserID: "m2", FullName: "Marta Two"}))
	require.NoError(t, builder.SelectTeam(models.TeamB))
	req, err := builder.Request(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, req.Functions.MemberCount())
}

func TestBuilder_DuplicateMemberInFunctionRejected(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())
	builder := svc.NewBuilder(generalLeaderActor())
	require.NoError(t, builder.SelectTeam(models.TeamA))

	member := models.AssignedMember{UserID: "m1", FullName: "Maria One"}
	require.NoError(t, builder.AssignMember(models.FunctionDoor, member))
	assert.ErrorIs(t, builder.AssignMember(models.FunctionDoor, member), ErrDuplicateMember)

	// The same member under a different function is allowed by default.
	assert.NoError(t, builder.AssignMember(models.FunctionParking, member))
}

func TestBuilder_UnassignMember(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())
	builder := svc.NewBuilder(generalLeaderActor())
	require.NoError(t, builder.SelectTeam(models.TeamA))
	require.NoError(t, builder.AssignMember(models.FunctionDoor, models.AssignedMember{UserID: "m1", FullName: "Maria One"}))

	builder.UnassignMember(models.FunctionDoor, "absent") // no-op
	builder.UnassignMember(models.FunctionDoor, "m1")

	_, err := builder.Request(nil)
	assert.ErrorIs(t, err, ErrNoMembersAssigned)
}

func TestSaveAssignment_PermissionChecks(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())
	req := SaveAssignmentRequest{Team: models.TeamA, Functions: sampleFunctions()}

	_, err := svc.SaveAssignment(memberActor("m1"), "ev-1", req)
	assert.ErrorIs(t, err, ErrPermissionDenied, "plain members cannot save assignments")

	_, err = svc.SaveAssignment(adminActor(), "ev-1", req)
	assert.ErrorIs(t, err, ErrPermissionDenied, "the plain admin manages the roster, not staffing")

	_, err = svc.SaveAssignment(teamLeaderAActor(), "ev-1", SaveAssignmentRequest{Team: models.TeamB, Functions: sampleFunctions()})
	assert.ErrorIs(t, err, ErrPermissionDenied, "team leader is scoped to their own team")
}

func TestSaveAssignment_ValidationErrors(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())
	actor := generalLeaderActor()

	_, err := svc.SaveAssignment(actor, "ev-1", SaveAssignmentRequest{Team: "team_c", Functions: sampleFunctions()})
	assert.ErrorIs(t, err, ErrInvalidTeam)

	_, err = svc.SaveAssignment(actor, "ev-1", SaveAssignmentRequest{Team: models.TeamA, Functions: models.FunctionAssignments{}})
	assert.ErrorIs(t, err, ErrNoMembersAssigned)

	_, err = svc.SaveAssignment(actor, "ev-1", SaveAssignmentRequest{
		Team:      models.TeamA,
		Functions: models.FunctionAssignments{"cleaning": {{UserID: "m1", FullName: "Maria One"}}},
	})
	assert.ErrorIs(t, err, ErrValidation, "unknown function keys are rejected")

	_, err = svc.SaveAssignment(actor, "ev-1", SaveAssignmentRequest{
		Team: models.TeamA,
		Functions: models.FunctionAssignments{
			models.FunctionDoor: {
				{UserID: "m1", FullName: "Maria One"},
				{UserID: "m1", FullName: "Maria One"},
			},
		},
	})
	assert.ErrorIs(t, err, ErrDuplicateMember)
}

func TestSaveAssignment_CrossFunctionUniquenessWhenConfigured(t *testing.T) {
	functions := models.FunctionAssignments{
		models.FunctionDoor:    {{UserID: "m1", FullName: "Maria One"}},
		models.FunctionParking: {{UserID: "m1", FullName: "Maria One"}},
	}
	req := SaveAssignmentRequest{Team: models.TeamA, Functions: functions}

	strict := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, AssignmentOptions{AllowMultipleFunctions: false})
	_, err := strict.SaveAssignment(generalLeaderActor(), "ev-1", req)
	assert.ErrorIs(t, err, ErrDuplicateMember)
}

func TestSaveAssignment_EventMustExist(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())

	_, err := svc.SaveAssignment(generalLeaderActor(), "missing-event", SaveAssignmentRequest{Team: models.TeamA, Functions: sampleFunctions()})
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestSaveAssignment_NonCreatorTeamLeaderCannotOverwrite(t *testing.T) {
	existing := &models.Assignment{
		EventID:   "ev-1",
		Ministry:  models.DefaultMinistry,
		Team:      models.TeamA,
		CreatedBy: "someone-else",
	}
	eventRepo := &mockEventRepo{event: &models.Event{ID: "ev-1", Name: "Sunday Service"}}
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{assignment: existing}, eventRepo, DefaultAssignmentOptions())

	_, err := svc.SaveAssignment(teamLeaderAActor(), "ev-1", SaveAssignmentRequest{Team: models.TeamA, Functions: sampleFunctions()})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSaveAssignment_PersistsStaffingAndMarksEventPending(t *testing.T) {
	repo := &mockAssignmentRepo{}
	eventRepo := &mockEventRepo{event: &models.Event{ID: "ev-1", Name: "Sunday Service"}}
	svc := NewAssignmentService(repo, eventRepo, newStubDB(t), DefaultAssignmentOptions())

	saved, err := svc.SaveAssignment(teamLeaderAActor(), "ev-1", SaveAssignmentRequest{Team: models.TeamA, Functions: sampleFunctions()})
	require.NoError(t, err)

	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "ev-1", saved.EventID)
	assert.Equal(t, models.DefaultMinistry, saved.Ministry)
	assert.Equal(t, "leader-a", saved.CreatedBy)
	assert.True(t, saved.Confirmations["m2"].AutoConfirmed, "offering members are confirmed on save")
	assert.False(t, saved.Confirmations["m1"].Confirmed)
	assert.Equal(t, []models.ScaleStatus{models.ScaleStatusPending}, eventRepo.refreshed)
}

func TestSaveAssignment_EditClearsFinalSignOff(t *testing.T) {
	finalizedBy := "leader-a"
	finalizedAt := time.Now().Add(-time.Hour)
	existing := &models.Assignment{
		EventID:          "ev-1",
		Ministry:         models.DefaultMinistry,
		Team:             models.TeamA,
		CreatedBy:        "leader-a",
		IsConfirmedFinal: true,
		FinalizedBy:      &finalizedBy,
		FinalizedAt:      &finalizedAt,
	}
	repo := &mockAssignmentRepo{assignment: existing}
	eventRepo := &mockEventRepo{event: &models.Event{ID: "ev-1", Name: "Sunday Service"}}
	svc := NewAssignmentService(repo, eventRepo, newStubDB(t), DefaultAssignmentOptions())

	saved, err := svc.SaveAssignment(teamLeaderAActor(), "ev-1", SaveAssignmentRequest{Team: models.TeamA, Functions: sampleFunctions()})
	require.NoError(t, err)

	assert.False(t, saved.IsConfirmedFinal, "editing a finalized assignment reopens it")
	assert.Nil(t, saved.FinalizedBy)
	assert.Nil(t, saved.FinalizedAt)
	assert.Equal(t, []models.ScaleStatus{models.ScaleStatusPending}, eventRepo.refreshed, "the event drops back to pending")
}

func TestDeleteAssignment_RecountsEventStaffing(t *testing.T) {
	existing := &models.Assignment{EventID: "ev-1", Ministry: models.DefaultMinistry, CreatedBy: "leader-a"}
	repo := &mockAssignmentRepo{assignment: existing}
	eventRepo := &mockEventRepo{}
	svc := NewAssignmentService(repo, eventRepo, newStubDB(t), DefaultAssignmentOptions())

	require.NoError(t, svc.DeleteAssignment(teamLeaderAActor(), "ev-1"))

	assert.Equal(t, []string{"ev-1"}, repo.deleted)
	assert.Equal(t, []models.ScaleStatus{models.ScaleStatusNone}, eventRepo.refreshed)
}

func TestBuildConfirmationMap_OfferingAutoConfirmed(t *testing.T) {
	now := time.Now()
	confirmations := buildConfirmationMap(sampleFunctions(), nil, now)

	require.Len(t, confirmations, 2)

	offering := confirmations["m2"]
	assert.True(t, offering.Confirmed)
	assert.True(t, offering.AutoConfirmed)
	require.NotNil(t, offering.ConfirmedAt)
	assert.Equal(t, now, *offering.ConfirmedAt)
	assert.Equal(t, models.FunctionOffering, offering.Function)

	reception := confirmations["m1"]
	assert.False(t, reception.Confirmed)
	assert.Nil(t, reception.ConfirmedAt)
}

func TestBuildConfirmationMap_PreservesUnchangedConfirmations(t *testing.T) {
	confirmedAt := time.Now().Add(-time.Hour)
	previous := &models.Assignment{
		Confirmations: models.ConfirmationMap{
			"m1": {MemberName: "Maria One", Function: models.FunctionReception, Confirmed: true, ConfirmedAt: &confirmedAt},
			"m3": {MemberName: "Mona Three", Function: models.FunctionDoor, Confirmed: true, ConfirmedAt: &confirmedAt},
		},
	}

	functions := models.FunctionAssignments{
		models.FunctionReception: {{UserID: "m1", FullName: "Maria One"}},
		models.FunctionDoor:      {{UserID: "m4", FullName: "Mara Four"}},
	}
	confirmations := buildConfirmationMap(functions, previous, time.Now())

	kept := confirmations["m1"]
	assert.True(t, kept.Confirmed, "same member, same function keeps the confirmation")
	assert.Equal(t, &confirmedAt, kept.ConfirmedAt)

	assert.False(t, confirmations["m4"].Confirmed, "new members start unconfirmed")
	_, stillThere := confirmations["m3"]
	assert.False(t, stillThere, "members removed from staffing drop out of the map")
}

func TestBuildConfirmationMap_FunctionChangeResetsConfirmation(t *testing.T) {
	confirmedAt := time.Now().Add(-time.Hour)
	previous := &models.Assignment{
		Confirmations: models.ConfirmationMap{
			"m1": {MemberName: "Maria One", Function: models.FunctionReception, Confirmed: true, ConfirmedAt: &confirmedAt},
		},
	}

	functions := models.FunctionAssignments{
		models.FunctionDoor: {{UserID: "m1", FullName: "Maria One"}},
	}
	confirmations := buildConfirmationMap(functions, previous, time.Now())

	assert.False(t, confirmations["m1"].Confirmed, "moving to another function requires re-confirming")
}

func TestBuildConfirmationMap_AutoConfirmationIsNotCarriedOver(t *testing.T) {
	confirmedAt := time.Now().Add(-time.Hour)
	previous := &models.Assignment{
		Confirmations: models.ConfirmationMap{
			"m2": {MemberName: "Marta Two", Function: models.FunctionOffering, Confirmed: true, ConfirmedAt: &confirmedAt, AutoConfirmed: true},
		},
	}

	// Same member moved off offering onto reception: the earlier automatic
	// confirmation does not count as a personal one.
	functions := models.FunctionAssignments{
		models.FunctionReception: {{UserID: "m2", FullName: "Marta Two"}},
	}
	confirmations := buildConfirmationMap(functions, previous, time.Now())

	assert.False(t, confirmations["m2"].Confirmed)
}

func TestGetAssignment_NotFound(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())

	_, err := svc.GetAssignment("ev-404")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}

func TestGetAssignments_InvalidTeamFilter(t *testing.T) {
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{}, &mockEventRepo{}, DefaultAssignmentOptions())

	bad := models.Team("team_x")
	_, err := svc.GetAssignments(&bad, false)
	assert.ErrorIs(t, err, ErrInvalidTeam)
}

func TestDeleteAssignment_RequiresModifyPermission(t *testing.T) {
	existing := &models.Assignment{EventID: "ev-1", Ministry: models.DefaultMinistry, CreatedBy: "someone-else"}
	svc := newAssignmentServiceForTest(&mockAssignmentRepo{assignment: existing}, &mockEventRepo{}, DefaultAssignmentOptions())

	err := svc.DeleteAssignment(teamLeaderAActor(), "ev-1")
	assert.ErrorIs(t, err, ErrPermissionDenied)

	err = svc.DeleteAssignment(generalLeaderActor(), "ev-404")
	assert.ErrorIs(t, err, ErrAssignmentNotFound)
}
