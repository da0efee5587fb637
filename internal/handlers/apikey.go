package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dimitrije/teamvault-api/internal/middleware"
	"github.com/dimitrije/teamvault-api/internal/services"
	"github.com/dimitrije/teamvault-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const maxAPIKeyNameLength = 100

type APIKeyHandler struct {
	apiKeyService APIKeyServiceInterface
	teamService   TeamServiceInterface
}

func NewAPIKeyHandler(apiKeyService APIKeyServiceInterface, teamService TeamServiceInterface) *APIKeyHandler {
	return &APIKeyHandler{
		apiKeyService: apiKeyService,
		teamService:   teamService,
	}
}

func (h *APIKeyHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateAPIKeyRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxAPIKeyNameLength {
		c.BadRequest("name must be between 1 and 100 characters")
		return
	}
	if req.Key == "" {
		c.BadRequest("key is required")
		return
	}
	if req.TeamID == uuid.Nil {
		c.BadRequest("valid team id is required")
		return
	}

	isMember, err := h.teamService.IsMember(context.Background(), req.TeamID, userID)
	if err != nil {
		c.InternalServerError("failed to check membership")
		return
	}
	if !isMember {
		c.Forbidden("you are not a member of this team")
		return
	}

	key, err := h.apiKeyService.Create(context.Background(), req.TeamID, name, req.Key, userID)
	if err != nil {
		c.InternalServerError("failed to securely store api key")
		return
	}

	_ = c.JSON(200, dto.APIKeyCreatedResponse{
		ID:        key.ID,
		Name:      key.Name,
		TeamID:    key.TeamID,
		CreatedAt: key.CreatedAt.Format(time.RFC3339),
	})
}

func (h *APIKeyHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teamID, err := uuid.Parse(c.QueryParam("teamId"))
	if err != nil {
		c.BadRequest("valid teamId parameter is required")
		return
	}

	isMember, err := h.teamService.IsMember(context.Background(), teamID, userID)
	if err != nil {
		c.InternalServerError("failed to check membership")
		return
	}
	if !isMember {
		c.Forbidden("you are not a member of this team")
		return
	}

	keys, err := h.apiKeyService.List(context.Background(), teamID)
	if err != nil {
		c.InternalServerError("failed to fetch api keys")
		return
	}

	response := dto.APIKeyListResponse{Data: []dto.APIKeyMetaResponse{}}
	for _, k := range keys {
		response.Data = append(response.Data, dto.APIKeyMetaResponse{
			ID:        k.ID,
			Name:      k.Name,
			CreatedBy: k.CreatedBy,
			CreatedAt: k.CreatedAt.Format(time.RFC3339),
		})
	}

	_ = c.JSON(200, response)
}

// Reveal fetches the record first, then authorizes against the record's own
// team. The client never supplies the team id here; the stored record
// governs who may decrypt it.
func (h *APIKeyHandler) Reveal(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	key, err := h.apiKeyService.GetByID(context.Background(), keyID)
	if err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to fetch api key")
		return
	}

	isMember, err := h.teamService.IsMember(context.Background(), key.TeamID, userID)
	if err != nil {
		c.InternalServerError("failed to check membership")
		return
	}
	if !isMember {
		c.Forbidden("you do not have permission to reveal this key")
		return
	}

	plaintext, err := h.apiKeyService.Reveal(key)
	if err != nil {
		c.InternalServerError("failed to reveal api key")
		return
	}

	_ = c.JSON(200, dto.RevealAPIKeyResponse{Data: plaintext})
}

func (h *APIKeyHandler) Delete(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.BadRequest("invalid key id")
		return
	}

	key, err := h.apiKeyService.GetByID(context.Background(), keyID)
	if err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to fetch api key")
		return
	}

	isMember, err := h.teamService.IsMember(context.Background(), key.TeamID, userID)
	if err != nil {
		c.InternalServerError("failed to check membership")
		return
	}
	if !isMember {
		c.Forbidden("you do not have permission to delete this key")
		return
	}

	if err := h.apiKeyService.Delete(context.Background(), keyID); err != nil {
		if errors.Is(err, services.ErrAPIKeyNotFound) {
			c.NotFound("api key not found")
			return
		}
		c.InternalServerError("failed to delete api key")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "api key deleted"})
}
