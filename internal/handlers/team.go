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

const (
	minTeamNameLength = 3
	maxTeamNameLength = 50
	minTeamCodeLength = 4
	maxTeamCodeLength = 12
)

type TeamHandler struct {
	teamService TeamServiceInterface
}

func NewTeamHandler(teamService TeamServiceInterface) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

func (h *TeamHandler) Create(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.CreateTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < minTeamNameLength || len(name) > maxTeamNameLength {
		c.BadRequest("team name must be between 3 and 50 characters")
		return
	}

	team, err := h.teamService.Create(context.Background(), name, userID)
	if err != nil {
		c.InternalServerError("failed to create team")
		return
	}

	_ = c.JSON(200, map[string]dto.TeamResponse{
		"team": {
			ID:        team.ID,
			Name:      team.Name,
			TeamCode:  team.TeamCode,
			CreatedAt: team.CreatedAt.Format(time.RFC3339),
		},
	})
}

func (h *TeamHandler) Join(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	var req dto.JoinTeamRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if len(code) < minTeamCodeLength || len(code) > maxTeamCodeLength {
		c.BadRequest("invalid code format")
		return
	}

	team, err := h.teamService.GetByCode(context.Background(), code)
	if err != nil {
		c.NotFound("invalid or expired team code")
		return
	}

	if _, err := h.teamService.Join(context.Background(), userID, team.ID); err != nil {
		if errors.Is(err, services.ErrAlreadyMember) {
			_ = c.JSON(409, map[string]string{"error": "you are already a member of this team"})
			return
		}
		c.InternalServerError("failed to join team")
		return
	}

	_ = c.JSON(200, dto.JoinTeamResponse{
		Message: "successfully joined team",
		Team: dto.TeamResponse{
			ID:        team.ID,
			Name:      team.Name,
			TeamCode:  team.TeamCode,
			CreatedAt: team.CreatedAt.Format(time.RFC3339),
		},
	})
}

func (h *TeamHandler) List(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	teams, err := h.teamService.GetUserTeams(context.Background(), userID)
	if err != nil {
		c.InternalServerError("failed to get teams")
		return
	}

	response := make([]dto.TeamResponse, len(teams))
	for i, team := range teams {
		response[i] = dto.TeamResponse{
			ID:        team.ID,
			Name:      team.Name,
			TeamCode:  team.TeamCode,
			CreatedAt: team.CreatedAt.Format(time.RFC3339),
		}
	}

	_ = c.JSON(200, response)
}
