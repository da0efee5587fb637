package middleware

import (
	"strings"

	"github.com/dimitrije/teamvault-api/internal/services"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
	UserRoleKey  = "user_role"

	// AuthCookieName is the HTTP-only session cookie used by browser flows.
	AuthCookieName = "auth_token"
)

// Auth resolves the caller's identity from either an Authorization bearer
// header or the session cookie. Both transports go through the same token
// validation; downstream handlers never know which one carried the token.
func Auth(jwtService *services.JWTService) drift.HandlerFunc {
	return func(c *drift.Context) {
		token := extractToken(c)
		if token == "" {
			c.Unauthorized("not authenticated")
			return
		}

		claims, err := jwtService.Validate(token)
		if err != nil {
			c.Unauthorized("not authenticated")
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		c.Set(UserRoleKey, claims.Role)

		c.Next()
	}
}

func extractToken(c *drift.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
		return ""
	}

	cookie, err := c.Request.Cookie(AuthCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func GetUserID(c *drift.Context) uuid.UUID {
	if id, ok := c.Get(UserIDKey); ok {
		if uid, ok := id.(uuid.UUID); ok {
			return uid
		}
	}
	return uuid.Nil
}

func GetUserEmail(c *drift.Context) string {
	if email, ok := c.Get(UserEmailKey); ok {
		if e, ok := email.(string); ok {
			return e
		}
	}
	return ""
}

func GetUserRole(c *drift.Context) string {
	if role, ok := c.Get(UserRoleKey); ok {
		if r, ok := role.(string); ok {
			return r
		}
	}
	return ""
}
