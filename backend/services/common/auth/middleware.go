package auth

import (
	"net/http"
	"strings"

	apperrors "github.com/Arpita030/deals-App/backend/services/common/errors"
	"github.com/gin-gonic/gin"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Context keys set by RequireAuth.
const (
	ContextUserID = "user_id"
	ContextEmail  = "email"
	ContextRole   = "role"
	ContextToken  = "token"
)

// RequireAuth validates the bearer token and stores its claims on the context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerFromHeader(c.GetHeader("Authorization"))
		if token == "" {
			apperrors.Respond(c, apperrors.New(http.StatusUnauthorized, "Missing or malformed Authorization header", nil))
			return
		}

		claims, err := ParseAndValidateToken(token, TokenTypeAccess)
		if err != nil {
			apperrors.Respond(c, apperrors.New(http.StatusUnauthorized, "Invalid or expired token", err))
			return
		}

		sub, _ := claims["sub"].(string)
		email, _ := claims["email"].(string)
		role, _ := claims["role"].(string)
		if email == "" {
			apperrors.Respond(c, apperrors.New(http.StatusUnauthorized, "Token has no email claim", nil))
			return
		}

		c.Set(ContextUserID, sub)
		c.Set(ContextEmail, email)
		c.Set(ContextRole, role)
		c.Set(ContextToken, token)
		c.Next()
	}
}

// RequireRole must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := Role(c)
		for _, r := range roles {
			if strings.EqualFold(role, r) {
				c.Next()
				return
			}
		}
		apperrors.Respond(c, apperrors.Forbidden("Access denied"))
	}
}

func Email(c *gin.Context) string { return c.GetString(ContextEmail) }
func Role(c *gin.Context) string  { return c.GetString(ContextRole) }

// Bearer returns the raw token of the authenticated request.
func Bearer(c *gin.Context) string { return c.GetString(ContextToken) }

func bearerFromHeader(h string) string {
	parts := strings.SplitN(strings.TrimSpace(h), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
