package dto

import "github.com/google/uuid"

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type JoinTeamRequest struct {
	Code string `json:"code"`
}

type TeamResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	TeamCode  string    `json:"teamCode"`
	CreatedAt string    `json:"createdAt"`
}

type JoinTeamResponse struct {
	Message string       `json:"message"`
	Team    TeamResponse `json:"team"`
}
