package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/teamvault-api/internal/database"
	"github.com/dimitrije/teamvault-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamCodeNotFound = errors.New("invalid or expired team code")
	ErrAlreadyMember    = errors.New("already a member of this team")
)

const (
	teamCodeRandomLen  = 4
	teamCodeMaxRetries = 3
)

type TeamService struct {
	db *database.DB
}

func NewTeamService(db *database.DB) *TeamService {
	return &TeamService{db: db}
}

// generateTeamCode draws random bytes and encodes them to a fixed-length
// uppercase hex string. 4 bytes -> 8 characters.
func generateTeamCode() (string, error) {
	b := make([]byte, teamCodeRandomLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate team code: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

// Create inserts the team and the creator's membership in one transaction.
// A team with zero members must never be observable. Code-generation
// collisions hit the unique index and are retried with a fresh code.
func (s *TeamService) Create(ctx context.Context, name string, creatorID uuid.UUID) (*models.Team, error) {
	var lastErr error
	for attempt := 0; attempt < teamCodeMaxRetries; attempt++ {
		teamCode, err := generateTeamCode()
		if err != nil {
			return nil, err
		}

		team, err := s.createWithCode(ctx, name, teamCode, creatorID)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				lastErr = err
				continue
			}
			return nil, err
		}
		return team, nil
	}
	return nil, fmt.Errorf("failed to generate unique team code: %w", lastErr)
}

func (s *TeamService) createWithCode(ctx context.Context, name, teamCode string, creatorID uuid.UUID) (*models.Team, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var team models.Team
	err = tx.QueryRow(ctx, `
		INSERT INTO teams (name, team_code, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, name, team_code, created_by, created_at
	`, name, teamCode, creatorID).Scan(
		&team.ID, &team.Name, &team.TeamCode, &team.CreatedBy, &team.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO team_members (user_id, team_id)
		VALUES ($1, $2)
	`, creatorID, team.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add creator as member: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &team, nil
}

func (s *TeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, team_code, created_by, created_at
		FROM teams WHERE id = $1
	`, teamID).Scan(
		&team.ID, &team.Name, &team.TeamCode, &team.CreatedBy, &team.CreatedAt,
	)
	if err != nil {
		return nil, ErrTeamNotFound
	}
	return &team, nil
}

// GetByCode looks up a team by its invite code. Codes are stored uppercase,
// so the input is normalized before matching.
func (s *TeamService) GetByCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, team_code, created_by, created_at
		FROM teams WHERE team_code = $1
	`, strings.ToUpper(code)).Scan(
		&team.ID, &team.Name, &team.TeamCode, &team.CreatedBy, &team.CreatedAt,
	)
	if err != nil {
		return nil, ErrTeamCodeNotFound
	}
	return &team, nil
}

// Join adds the user to the team. Joining a team the user already belongs to
// returns ErrAlreadyMember; the UNIQUE(user_id, team_id) constraint backstops
// the race between the check and the insert.
func (s *TeamService) Join(ctx context.Context, userID, teamID uuid.UUID) (*models.TeamMember, error) {
	isMember, err := s.IsMember(ctx, teamID, userID)
	if err != nil {
		return nil, err
	}
	if isMember {
		return nil, ErrAlreadyMember
	}

	var member models.TeamMember
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO team_members (user_id, team_id)
		VALUES ($1, $2)
		RETURNING id, user_id, team_id, joined_at
	`, userID, teamID).Scan(
		&member.ID, &member.UserID, &member.TeamID, &member.JoinedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}

	return &member, nil
}

// IsMember is the single authorization primitive every vault operation
// consults before touching a secret.
func (s *TeamService) IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM team_members WHERE team_id = $1 AND user_id = $2)
	`, teamID, userID).Scan(&exists)
	return exists, err
}

func (s *TeamService) GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT t.id, t.name, t.team_code, t.created_by, t.created_at
		FROM teams t
		JOIN team_members tm ON t.id = tm.team_id
		WHERE tm.user_id = $1
		ORDER BY t.created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []models.Team
	for rows.Next() {
		var team models.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.TeamCode, &team.CreatedBy, &team.CreatedAt); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, nil
}
