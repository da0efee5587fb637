package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dimitrije/teamvault-api/internal/database"
	"github.com/dimitrije/teamvault-api/internal/models"
	"github.com/google/uuid"
)

var ErrAPIKeyNotFound = errors.New("api key not found")

// APIKeyService owns the encrypted secret records. Ciphertext and IV are
// produced by the envelope and written together in a single insert.
type APIKeyService struct {
	db        *database.DB
	encryptor *EncryptionService
}

func NewAPIKeyService(db *database.DB, encryptor *EncryptionService) *APIKeyService {
	return &APIKeyService{db: db, encryptor: encryptor}
}

// Create encrypts the plaintext and persists the new record. The plaintext
// is discarded as soon as the envelope has produced the ciphertext.
func (s *APIKeyService) Create(ctx context.Context, teamID uuid.UUID, name, plaintext string, createdBy uuid.UUID) (*models.APIKey, error) {
	ciphertext, iv, err := s.encryptor.Encrypt(plaintext)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt api key: %w", err)
	}

	var key models.APIKey
	err = s.db.Pool.QueryRow(ctx, `
		INSERT INTO api_keys (name, encrypted_key, iv, team_id, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, name, encrypted_key, iv, team_id, created_by, created_at
	`, name, ciphertext, iv, teamID, createdBy).Scan(
		&key.ID, &key.Name, &key.EncryptedKey, &key.IV,
		&key.TeamID, &key.CreatedBy, &key.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to store api key: %w", err)
	}

	return &key, nil
}

// List returns the metadata projection only, newest first. Ciphertext and IV
// never appear in list results.
func (s *APIKeyService) List(ctx context.Context, teamID uuid.UUID) ([]models.APIKeyMeta, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, name, created_by, created_at
		FROM api_keys
		WHERE team_id = $1
		ORDER BY created_at DESC
	`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []models.APIKeyMeta
	for rows.Next() {
		var key models.APIKeyMeta
		if err := rows.Scan(&key.ID, &key.Name, &key.CreatedBy, &key.CreatedAt); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// GetByID fetches the full record. Callers must authorize against the
// record's own team before revealing or deleting it.
func (s *APIKeyService) GetByID(ctx context.Context, keyID uuid.UUID) (*models.APIKey, error) {
	var key models.APIKey
	err := s.db.Pool.QueryRow(ctx, `
		SELECT id, name, encrypted_key, iv, team_id, created_by, created_at
		FROM api_keys WHERE id = $1
	`, keyID).Scan(
		&key.ID, &key.Name, &key.EncryptedKey, &key.IV,
		&key.TeamID, &key.CreatedBy, &key.CreatedAt,
	)
	if err != nil {
		return nil, ErrAPIKeyNotFound
	}
	return &key, nil
}

// Reveal decrypts a record transiently. The result is returned to the caller
// and never cached or persisted.
func (s *APIKeyService) Reveal(key *models.APIKey) (string, error) {
	return s.encryptor.Decrypt(key.EncryptedKey, key.IV)
}

func (s *APIKeyService) Delete(ctx context.Context, keyID uuid.UUID) error {
	result, err := s.db.Pool.Exec(ctx, `
		DELETE FROM api_keys WHERE id = $1
	`, keyID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}
