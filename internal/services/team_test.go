package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dimitrije/teamvault-api/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTeamService(t *testing.T) (*TeamService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewTeamService(db), mock
}

func TestGenerateTeamCode(t *testing.T) {
	code, err := generateTeamCode()

	require.NoError(t, err)
	assert.Len(t, code, 8)
	assert.Equal(t, strings.ToUpper(code), code)
	assert.Regexp(t, `^[0-9A-F]{8}$`, code)

	other, err := generateTeamCode()
	require.NoError(t, err)
	assert.NotEqual(t, code, other)
}

func TestTeamService_Create(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	creatorID := uuid.New()
	teamID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()

	teamRows := pgxmock.NewRows([]string{"id", "name", "team_code", "created_by", "created_at"}).
		AddRow(teamID, "Test Team", "AB12CD34", creatorID, now)
	mock.ExpectQuery(`INSERT INTO teams`).
		WithArgs("Test Team", pgxmock.AnyArg(), creatorID).
		WillReturnRows(teamRows)

	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(creatorID, teamID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	mock.ExpectCommit()

	team, err := svc.Create(ctx, "Test Team", creatorID)

	require.NoError(t, err)
	assert.Equal(t, teamID, team.ID)
	assert.Equal(t, "Test Team", team.Name)
	assert.Equal(t, creatorID, team.CreatedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Create_MembershipInsertRollsBack(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	creatorID := uuid.New()
	teamID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()

	teamRows := pgxmock.NewRows([]string{"id", "name", "team_code", "created_by", "created_at"}).
		AddRow(teamID, "Test Team", "AB12CD34", creatorID, now)
	mock.ExpectQuery(`INSERT INTO teams`).
		WithArgs("Test Team", pgxmock.AnyArg(), creatorID).
		WillReturnRows(teamRows)

	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(creatorID, teamID).
		WillReturnError(assert.AnError)

	mock.ExpectRollback()

	_, err := svc.Create(ctx, "Test Team", creatorID)

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Create_RetriesOnCodeCollision(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	creatorID := uuid.New()
	teamID := uuid.New()
	now := time.Now()

	// First attempt collides on the unique team_code index
	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO teams`).
		WithArgs("Test Team", pgxmock.AnyArg(), creatorID).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	// Second attempt succeeds with a fresh code
	mock.ExpectBegin()
	teamRows := pgxmock.NewRows([]string{"id", "name", "team_code", "created_by", "created_at"}).
		AddRow(teamID, "Test Team", "EF56AB78", creatorID, now)
	mock.ExpectQuery(`INSERT INTO teams`).
		WithArgs("Test Team", pgxmock.AnyArg(), creatorID).
		WillReturnRows(teamRows)
	mock.ExpectExec(`INSERT INTO team_members`).
		WithArgs(creatorID, teamID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	team, err := svc.Create(ctx, "Test Team", creatorID)

	require.NoError(t, err)
	assert.Equal(t, teamID, team.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_GetByCode_NormalizesCase(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	teamID := uuid.New()
	creatorID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "name", "team_code", "created_by", "created_at"}).
		AddRow(teamID, "T1", "AB12CD34", creatorID, now)
	mock.ExpectQuery(`SELECT id, name, team_code, created_by, created_at`).
		WithArgs("AB12CD34").
		WillReturnRows(rows)

	team, err := svc.GetByCode(ctx, "ab12cd34")

	require.NoError(t, err)
	assert.Equal(t, teamID, team.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_GetByCode_Unknown(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id, name, team_code, created_by, created_at`).
		WithArgs("ZZZZZZZZ").
		WillReturnError(assert.AnError)

	_, err := svc.GetByCode(ctx, "zzzzzzzz")

	assert.ErrorIs(t, err, ErrTeamCodeNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Join(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	userID := uuid.New()
	teamID := uuid.New()
	memberID := uuid.New()
	now := time.Now()

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(teamID, userID).
		WillReturnRows(existsRows)

	memberRows := pgxmock.NewRows([]string{"id", "user_id", "team_id", "joined_at"}).
		AddRow(memberID, userID, teamID, now)
	mock.ExpectQuery(`INSERT INTO team_members`).
		WithArgs(userID, teamID).
		WillReturnRows(memberRows)

	member, err := svc.Join(ctx, userID, teamID)

	require.NoError(t, err)
	assert.Equal(t, userID, member.UserID)
	assert.Equal(t, teamID, member.TeamID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Join_AlreadyMember(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	userID := uuid.New()
	teamID := uuid.New()

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(teamID, userID).
		WillReturnRows(existsRows)

	_, err := svc.Join(ctx, userID, teamID)

	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_Join_RaceLosesToUniqueConstraint(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	userID := uuid.New()
	teamID := uuid.New()

	existsRows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(teamID, userID).
		WillReturnRows(existsRows)

	mock.ExpectQuery(`INSERT INTO team_members`).
		WithArgs(userID, teamID).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Join(ctx, userID, teamID)

	assert.ErrorIs(t, err, ErrAlreadyMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_IsMember(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	userID := uuid.New()
	teamID := uuid.New()

	rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(teamID, userID).
		WillReturnRows(rows)

	isMember, err := svc.IsMember(ctx, teamID, userID)

	require.NoError(t, err)
	assert.True(t, isMember)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeamService_GetUserTeams(t *testing.T) {
	svc, mock := setupTeamService(t)
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "name", "team_code", "created_by", "created_at"}).
		AddRow(uuid.New(), "T2", "CD34EF56", userID, now).
		AddRow(uuid.New(), "T1", "AB12CD34", userID, now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT t.id, t.name, t.team_code, t.created_by, t.created_at`).
		WithArgs(userID).
		WillReturnRows(rows)

	teams, err := svc.GetUserTeams(ctx, userID)

	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "T2", teams[0].Name)
	assert.Equal(t, "T1", teams[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
