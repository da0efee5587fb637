package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/mail"

	"github.com/dimitrije/teamvault-api/internal/config"
	"github.com/dimitrije/teamvault-api/internal/middleware"
	"github.com/dimitrije/teamvault-api/internal/services"
	"github.com/dimitrije/teamvault-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const minPasswordLength = 8

type AuthHandler struct {
	cfg         *config.Config
	userService UserServiceInterface
	jwtService  JWTServiceInterface
}

func NewAuthHandler(cfg *config.Config, userService UserServiceInterface, jwtService JWTServiceInterface) *AuthHandler {
	return &AuthHandler{
		cfg:         cfg,
		userService: userService,
		jwtService:  jwtService,
	}
}

func (h *AuthHandler) Register(c *drift.Context) {
	var req dto.RegisterRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if _, err := mail.ParseAddress(req.Email); err != nil {
		c.BadRequest("invalid email")
		return
	}
	if len(req.Password) < minPasswordLength {
		c.BadRequest("password must be at least 8 characters")
		return
	}

	user, err := h.userService.Register(context.Background(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrEmailExists) {
			_ = c.JSON(409, map[string]string{"error": "email already exists"})
			return
		}
		c.InternalServerError("failed to register user")
		return
	}

	token, err := h.jwtService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to issue token")
		return
	}

	h.setAuthCookie(c, token)

	_ = c.JSON(200, dto.AuthResponse{
		Token: token,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		c.BadRequest("email and password are required")
		return
	}

	// One generic message for every credential failure, so the endpoint
	// cannot be used to probe which emails exist.
	user, err := h.userService.Authenticate(context.Background(), req.Email, req.Password)
	if err != nil {
		c.Unauthorized("invalid email or password")
		return
	}

	token, err := h.jwtService.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to issue token")
		return
	}

	h.setAuthCookie(c, token)

	_ = c.JSON(200, dto.AuthResponse{
		Token: token,
		User: dto.UserResponse{
			ID:    user.ID,
			Email: user.Email,
			Role:  user.Role,
		},
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) Me(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	user, err := h.userService.GetByID(context.Background(), userID)
	if err != nil {
		c.NotFound("user not found")
		return
	}

	_ = c.JSON(200, dto.UserResponse{
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
	})
}

func (h *AuthHandler) setAuthCookie(c *drift.Context, token string) {
	http.SetCookie(c.Response, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.jwtService.Expiry().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
