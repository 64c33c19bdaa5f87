package services

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"church_community_backend/internal/models"
	"church_community_backend/internal/repositories"
)

// Test doubles for the repository interfaces. Each mock records writes and
// serves canned reads; the SQLExecutor argument is ignored.

type mockAuthRepo struct {
	user          *models.User
	passwordHash  string
	findErr       error
	createErr     error
	createdUsers  []*models.User
	roleUpdates   map[string]models.Role
	updateRoleErr error
}

func (m *mockAuthRepo) CreateUser(_ repositories.SQLExecutor, user *models.User, _ string) (string, error) {
	if m.createErr != nil {
		return "", m.createErr
	}
	if user.ID == "" {
		user.ID = "generated-id"
	}
	m.createdUsers = append(m.createdUsers, user)
	return user.ID, nil
}

func (m *mockAuthRepo) FindUserByID(id string) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if m.user == nil || m.user.ID != id {
		return nil, repositories.ErrNotFound
	}
	return m.user, nil
}

func (m *mockAuthRepo) FindUserByUsername(username string) (*models.User, string, error) {
	if m.findErr != nil {
		return nil, "", m.findErr
	}
	if m.user == nil || m.user.Username != username {
		return nil, "", repositories.ErrNotFound
	}
	return m.user, m.passwordHash, nil
}

func (m *mockAuthRepo) UpdateUserRole(_ repositories.SQLExecutor, userID string, role models.Role) error {
	if m.updateRoleErr != nil {
		return m.updateRoleErr
	}
	if m.roleUpdates == nil {
		m.roleUpdates = map[string]models.Role{}
	}
	m.roleUpdates[userID] = role
	return nil
}

func (m *mockAuthRepo) GetUsers(_, _ int, _ *string) ([]models.User, int, error) {
	if m.user == nil {
		return []models.User{}, 0, nil
	}
	return []models.User{*m.user}, 1, nil
}

type mockRosterRepo struct {
	members         map[string]*models.MinistryMember
	searchResults   []models.MinistryMember
	lastSearchTerm  *string
	lastSearchTeam  *models.Team
	leadersByScope  map[models.LeaderScope]*models.Leadership
	leaderByUser    *models.Leadership
	createErr       error
	createdMembers  []*models.MinistryMember
	teamChanges     map[string]*models.Team
	roleChanges     map[string]models.Role
	deletedMembers  []string
	createdLeaders  []*models.Leadership
	deletedScopes   []models.LeaderScope
	createLeaderErr error
}

func (m *mockRosterRepo) CreateMember(_ repositories.SQLExecutor, member *models.MinistryMember) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.createdMembers = append(m.createdMembers, member)
	return nil
}

func (m *mockRosterRepo) GetMemberByUserID(userID string) (*models.MinistryMember, error) {
	member, ok := m.members[userID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *member
	return &copied, nil
}

func (m *mockRosterRepo) GetMembers(team *models.Team, searchTerm *string) ([]models.MinistryMember, error) {
	m.lastSearchTeam = team
	m.lastSearchTerm = searchTerm
	return m.searchResults, nil
}

func (m *mockRosterRepo) SetMemberTeam(_ repositories.SQLExecutor, userID string, team *models.Team) error {
	if m.teamChanges == nil {
		m.teamChanges = map[string]*models.Team{}
	}
	m.teamChanges[userID] = team
	return nil
}

func (m *mockRosterRepo) SetMemberRole(_ repositories.SQLExecutor, userID string, role models.Role) error {
	if m.roleChanges == nil {
		m.roleChanges = map[string]models.Role{}
	}
	m.roleChanges[userID] = role
	return nil
}

func (m *mockRosterRepo) DeleteMember(_ repositories.SQLExecutor, userID string) error {
	m.deletedMembers = append(m.deletedMembers, userID)
	return nil
}

func (m *mockRosterRepo) GetLeadership(scope models.LeaderScope) (*models.Leadership, error) {
	leader, ok := m.leadersByScope[scope]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return leader, nil
}

func (m *mockRosterRepo) GetLeadershipByUserID(userID string) (*models.Leadership, error) {
	if m.leaderByUser == nil || m.leaderByUser.UserID != userID {
		return nil, repositories.ErrNotFound
	}
	return m.leaderByUser, nil
}

func (m *mockRosterRepo) CreateLeadership(_ repositories.SQLExecutor, leadership *models.Leadership) error {
	if m.createLeaderErr != nil {
		return m.createLeaderErr
	}
	if _, taken := m.leadersByScope[leadership.Scope]; taken {
		return repositories.ErrDuplicateKey
	}
	m.createdLeaders = append(m.createdLeaders, leadership)
	if m.leadersByScope == nil {
		m.leadersByScope = map[models.LeaderScope]*models.Leadership{}
	}
	m.leadersByScope[leadership.Scope] = leadership
	return nil
}

func (m *mockRosterRepo) DeleteLeadership(_ repositories.SQLExecutor, scope models.LeaderScope) error {
	m.deletedScopes = append(m.deletedScopes, scope)
	return nil
}

type mockEventRepo struct {
	event      *models.Event
	getErr     error
	created    []*models.Event
	refreshed  []models.ScaleStatus
	refreshErr error
}

func (m *mockEventRepo) CreateEvent(_ repositories.SQLExecutor, event *models.Event) error {
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	m.created = append(m.created, event)
	return nil
}

func (m *mockEventRepo) GetEventByID(id string) (*models.Event, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.event == nil || m.event.ID != id {
		return nil, repositories.ErrNotFound
	}
	return m.event, nil
}

func (m *mockEventRepo) GetEvents(_ *string, _, _ int) ([]models.Event, int, error) {
	if m.event == nil {
		return []models.Event{}, 0, nil
	}
	return []models.Event{*m.event}, 1, nil
}

func (m *mockEventRepo) RefreshScaleStatus(_ repositories.SQLExecutor, _ string, status models.ScaleStatus) error {
	if m.refreshErr != nil {
		return m.refreshErr
	}
	m.refreshed = append(m.refreshed, status)
	return nil
}

type mockAssignmentRepo struct {
	assignment         *models.Assignment
	getErr             error
	upserted           []*models.Assignment
	savedConfirmations models.ConfirmationMap
	finalizedBy        string
	deleted            []string
}

func (m *mockAssignmentRepo) UpsertAssignment(_ repositories.SQLExecutor, assignment *models.Assignment) error {
	assignment.IsConfirmedFinal = false
	assignment.FinalizedBy = nil
	assignment.FinalizedAt = nil
	m.upserted = append(m.upserted, assignment)
	return nil
}

func (m *mockAssignmentRepo) GetAssignment(eventID, _ string) (*models.Assignment, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.assignment == nil || m.assignment.EventID != eventID {
		return nil, repositories.ErrNotFound
	}
	return m.assignment, nil
}

func (m *mockAssignmentRepo) GetAssignments(_ string, _ *models.Team, _ bool) ([]models.Assignment, error) {
	if m.assignment == nil {
		return []models.Assignment{}, nil
	}
	return []models.Assignment{*m.assignment}, nil
}

func (m *mockAssignmentRepo) SetConfirmations(_ repositories.SQLExecutor, _, _ string, confirmations models.ConfirmationMap) error {
	m.savedConfirmations = confirmations
	return nil
}

func (m *mockAssignmentRepo) SetFinalized(_ repositories.SQLExecutor, _, _, finalizedBy string, _ time.Time) error {
	m.finalizedBy = finalizedBy
	return nil
}

func (m *mockAssignmentRepo) DeleteAssignment(_ repositories.SQLExecutor, eventID, _ string) error {
	m.deleted = append(m.deleted, eventID)
	return nil
}

type mockReportRepo struct {
	report    *models.CollectionReport
	upserted  []*models.CollectionReport
	upsertErr error
}

func (m *mockReportRepo) UpsertReport(_ repositories.SQLExecutor, report *models.CollectionReport) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, report)
	return nil
}

func (m *mockReportRepo) GetReport(eventID, _ string) (*models.CollectionReport, error) {
	if m.report == nil || m.report.EventID != eventID {
		return nil, repositories.ErrNotFound
	}
	return m.report, nil
}

func (m *mockReportRepo) GetReports(_ string, _, _ int) ([]models.CollectionReport, int, error) {
	if m.report == nil {
		return []models.CollectionReport{}, 0, nil
	}
	return []models.CollectionReport{*m.report}, 1, nil
}

// noopDriver backs the *sql.DB handed to services whose write paths run in a
// transaction. Begin, Commit and Rollback succeed without a server; every
// query still goes through the repository mocks, so Prepare is never reached.
type noopDriver struct{}

func (noopDriver) Open(string) (driver.Conn, error) { return noopConn{}, nil }

type noopConn struct{}

func (noopConn) Prepare(string) (driver.Stmt, error) {
	return nil, errors.New("statements are not supported")
}
func (noopConn) Close() error              { return nil }
func (noopConn) Begin() (driver.Tx, error) { return noopTx{}, nil }

type noopTx struct{}

func (noopTx) Commit() error   { return nil }
func (noopTx) Rollback() error { return nil }

func init() {
	sql.Register("noop", noopDriver{})
}

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("noop", "")
	if err != nil {
		t.Fatalf("open stub database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// Common actors used across the service tests.

func generalLeaderActor() models.Actor {
	return models.Actor{UserID: "leader-general", FullName: "Grace Leader", Role: models.RoleGeneralLeader}
}

func teamLeaderAActor() models.Actor {
	return models.Actor{UserID: "leader-a", FullName: "Anna Leader", Role: models.RoleTeamLeaderA}
}

func adminActor() models.Actor {
	return models.Actor{UserID: "admin-1", FullName: "Alice Admin", Role: models.RoleAdmin}
}

func memberActor(userID string) models.Actor {
	return models.Actor{UserID: userID, FullName: "Plain Member", Role: models.RoleMember}
}
