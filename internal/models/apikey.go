package models

import (
	"time"

	"github.com/google/uuid"
)

// APIKey is a stored secret. EncryptedKey and IV are opaque base64 strings,
// always written together. The plaintext is never persisted.
type APIKey struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	EncryptedKey string    `json:"-"`
	IV           string    `json:"-"`
	TeamID       uuid.UUID `json:"team_id"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// APIKeyMeta is the list projection. It deliberately has no field for
// ciphertext or IV so they cannot leak through serialization.
type APIKeyMeta struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}
