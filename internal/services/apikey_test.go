package services

import (
	"context"
	"testing"
	"time"

	"github.com/dimitrije/teamvault-api/internal/database"
	"github.com/dimitrije/teamvault-api/internal/models"
	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAPIKeyService(t *testing.T) (*APIKeyService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewAPIKeyService(db, newTestEncryptionService(t)), mock
}

func TestAPIKeyService_Create(t *testing.T) {
	svc, mock := setupAPIKeyService(t)
	ctx := context.Background()
	teamID := uuid.New()
	createdBy := uuid.New()
	keyID := uuid.New()
	now := time.Now()

	// The ciphertext and IV arguments are fresh per call, so only the
	// deterministic columns are pinned.
	mock.ExpectQuery(`INSERT INTO api_keys`).
		WithArgs("svc", pgxmock.AnyArg(), pgxmock.AnyArg(), teamID, createdBy).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "encrypted_key", "iv", "team_id", "created_by", "created_at"}).
			AddRow(keyID, "svc", "ciphertext-opaque", "iv-opaque", teamID, createdBy, now))

	key, err := svc.Create(ctx, teamID, "svc", "sk-abc123", createdBy)

	require.NoError(t, err)
	assert.Equal(t, keyID, key.ID)
	assert.Equal(t, "svc", key.Name)
	assert.Equal(t, teamID, key.TeamID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyService_CreateThenReveal_RoundTrip(t *testing.T) {
	svc, mock := setupAPIKeyService(t)
	ctx := context.Background()
	teamID := uuid.New()
	createdBy := uuid.New()

	// Capture what Create would persist by encrypting through the same
	// envelope, then hand it back through GetByID.
	ciphertext, iv, err := svc.encryptor.Encrypt("sk-abc123")
	require.NoError(t, err)

	keyID := uuid.New()
	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, encrypted_key, iv, team_id, created_by, created_at`).
		WithArgs(keyID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "encrypted_key", "iv", "team_id", "created_by", "created_at"}).
			AddRow(keyID, "svc", ciphertext, iv, teamID, createdBy, now))

	key, err := svc.GetByID(ctx, keyID)
	require.NoError(t, err)

	plaintext, err := svc.Reveal(key)

	require.NoError(t, err)
	assert.Equal(t, "sk-abc123", plaintext)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyService_List_MetadataOnly(t *testing.T) {
	svc, mock := setupAPIKeyService(t)
	ctx := context.Background()
	teamID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{"id", "name", "created_by", "created_at"}).
		AddRow(uuid.New(), "newest", uuid.New(), now).
		AddRow(uuid.New(), "oldest", uuid.New(), now.Add(-time.Hour))
	mock.ExpectQuery(`SELECT id, name, created_by, created_at`).
		WithArgs(teamID).
		WillReturnRows(rows)

	keys, err := svc.List(ctx, teamID)

	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "newest", keys[0].Name)
	assert.Equal(t, "oldest", keys[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupAPIKeyService(t)
	ctx := context.Background()
	keyID := uuid.New()

	mock.ExpectQuery(`SELECT id, name, encrypted_key, iv, team_id, created_by, created_at`).
		WithArgs(keyID).
		WillReturnError(assert.AnError)

	_, err := svc.GetByID(ctx, keyID)

	assert.ErrorIs(t, err, ErrAPIKeyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyService_Delete(t *testing.T) {
	svc, mock := setupAPIKeyService(t)
	ctx := context.Background()
	keyID := uuid.New()

	mock.ExpectExec(`DELETE FROM api_keys`).
		WithArgs(keyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := svc.Delete(ctx, keyID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyService_Delete_NotFound(t *testing.T) {
	svc, mock := setupAPIKeyService(t)
	ctx := context.Background()
	keyID := uuid.New()

	mock.ExpectExec(`DELETE FROM api_keys`).
		WithArgs(keyID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := svc.Delete(ctx, keyID)

	assert.ErrorIs(t, err, ErrAPIKeyNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAPIKeyService_Reveal_CorruptIV(t *testing.T) {
	svc, _ := setupAPIKeyService(t)

	key := &models.APIKey{
		EncryptedKey: "AAAAAAAAAAAAAAAAAAAAAA==",
		IV:           "c2hvcnQ=",
	}

	_, err := svc.Reveal(key)
	assert.ErrorIs(t, err, ErrInvalidIVLength)
}
