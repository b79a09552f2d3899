package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matiasb-dev/authkeep/internal/application"
	"github.com/matiasb-dev/authkeep/pkg/response"
)

type UserHandler struct {
	Auth   *application.AuthService
	Logger *logrus.Logger
}

func NewUserHandler(auth *application.AuthService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Auth: auth, Logger: logger}
}

// Search queries the user index by name or email fragment.
func (h *UserHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.ValidationFailed(c, "the q field is required")
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	hits, err := h.Auth.SearchUsers(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Warn("user search failed")
		response.Message(c, http.StatusServiceUnavailable, "search is unavailable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hits})
}
