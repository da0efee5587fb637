package dto

import "github.com/google/uuid"

type CreateAPIKeyRequest struct {
	Name   string    `json:"name"`
	Key    string    `json:"key"`
	TeamID uuid.UUID `json:"teamId"`
}

type APIKeyCreatedResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeamID    uuid.UUID `json:"teamId"`
	CreatedAt string    `json:"createdAt"`
}

// APIKeyMetaResponse is the list projection. It has no ciphertext or IV
// field under any serialization.
type APIKeyMetaResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedBy uuid.UUID `json:"createdBy"`
	CreatedAt string    `json:"createdAt"`
}

type APIKeyListResponse struct {
	Data []APIKeyMetaResponse `json:"data"`
}

type RevealAPIKeyResponse struct {
	Data string `json:"data"`
}
