package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/matiasb-dev/authkeep/internal/application"
	"github.com/matiasb-dev/authkeep/pkg/response"
)

// ContextUserID is the Gin context key holding the authenticated user's id.
const ContextUserID = "userID"

// BearerToken extracts the token from the Authorization header. Empty string
// when the header is missing or not a bearer scheme.
func BearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Auth verifies the bearer token and sets userID in the Gin context.
func Auth(tokens *application.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			response.Unauthorized(c, "Unauthorized")
			return
		}
		userID, err := tokens.Verify(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, application.ErrTokenExpired):
				response.Unauthorized(c, "Token expired")
			case errors.Is(err, application.ErrTokenRevoked):
				response.Unauthorized(c, "Token revoked")
			default:
				response.Unauthorized(c, "Unauthorized")
			}
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}
