package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/teamvault-api/internal/database"
	"github.com/dimitrije/teamvault-api/internal/models"
	"github.com/dimitrije/teamvault-api/internal/services"
	"github.com/google/uuid"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
	}

	for _, opt := range opts {
		opt(user)
	}

	passwordHash, err := services.HashPassword("test-password-1")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	ctx := context.Background()
	err = f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash)
		VALUES ($1, $2)
		RETURNING id, email, password_hash, role, created_at
	`, user.Email, passwordHash).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Role, &user.CreatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// CreateTeam creates a team together with the creator's membership
func (f *Fixtures) CreateTeam(t *testing.T, name string, creatorID uuid.UUID) *models.Team {
	t.Helper()

	svc := services.NewTeamService(f.db)
	team, err := svc.Create(context.Background(), name, creatorID)
	if err != nil {
		t.Fatalf("failed to create team: %v", err)
	}

	return team
}

// AddMember joins a user to a team directly
func (f *Fixtures) AddMember(t *testing.T, userID, teamID uuid.UUID) {
	t.Helper()

	_, err := f.db.Pool.Exec(context.Background(), `
		INSERT INTO team_members (user_id, team_id) VALUES ($1, $2)
	`, userID, teamID)
	if err != nil {
		t.Fatalf("failed to add member: %v", err)
	}
}

// MembershipCount returns the number of membership rows for a (user, team) pair
func (f *Fixtures) MembershipCount(t *testing.T, userID, teamID uuid.UUID) int {
	t.Helper()

	var count int
	err := f.db.Pool.QueryRow(context.Background(), `
		SELECT COUNT(*) FROM team_members WHERE user_id = $1 AND team_id = $2
	`, userID, teamID).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count memberships: %v", err)
	}
	return count
}
