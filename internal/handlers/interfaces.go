package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/teamvault-api/internal/models"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TeamServiceInterface defines the methods used by handlers from TeamService
type TeamServiceInterface interface {
	Create(ctx context.Context, name string, creatorID uuid.UUID) (*models.Team, error)
	GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error)
	GetByCode(ctx context.Context, code string) (*models.Team, error)
	Join(ctx context.Context, userID, teamID uuid.UUID) (*models.TeamMember, error)
	IsMember(ctx context.Context, teamID, userID uuid.UUID) (bool, error)
	GetUserTeams(ctx context.Context, userID uuid.UUID) ([]models.Team, error)
}

// APIKeyServiceInterface defines the methods used by handlers from APIKeyService
type APIKeyServiceInterface interface {
	Create(ctx context.Context, teamID uuid.UUID, name, plaintext string, createdBy uuid.UUID) (*models.APIKey, error)
	List(ctx context.Context, teamID uuid.UUID) ([]models.APIKeyMeta, error)
	GetByID(ctx context.Context, keyID uuid.UUID) (*models.APIKey, error)
	Reveal(key *models.APIKey) (string, error)
	Delete(ctx context.Context, keyID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	Generate(userID uuid.UUID, email, role string) (string, error)
	Expiry() time.Duration
}
