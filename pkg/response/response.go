package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// TokenEnvelope is the payload returned whenever a bearer token is issued.
type TokenEnvelope struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Token writes the standard token envelope with expires_in in seconds.
func Token(c *gin.Context, accessToken string, expiresIn int64) {
	c.JSON(http.StatusOK, TokenEnvelope{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresIn:   expiresIn,
	})
}

// Message writes a {"message": ...} envelope with the given status.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

// Unauthorized writes the 401 {"error": ...} envelope and aborts the request.
func Unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}

// Forbidden writes the 403 envelope and aborts the request.
func Forbidden(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": msg})
}

// ValidationFailed writes the 422 envelope carrying the first failed rule.
func ValidationFailed(c *gin.Context, msg string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{"message": msg})
}
