package models

import (
	"time"

	"github.com/google/uuid"
)

type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeamCode  string    `json:"team_code"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TeamMember is the membership relation. Existence of a row is the sole
// authorization fact for every vault operation.
type TeamMember struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	TeamID   uuid.UUID `json:"team_id"`
	JoinedAt time.Time `json:"joined_at"`
}
