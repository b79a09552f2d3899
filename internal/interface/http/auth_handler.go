package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/matiasb-dev/authkeep/internal/application"
	"github.com/matiasb-dev/authkeep/internal/domain/entity"
	"github.com/matiasb-dev/authkeep/internal/interface/middleware"
	"github.com/matiasb-dev/authkeep/pkg/response"
	"github.com/matiasb-dev/authkeep/pkg/validation"
)

type AuthHandler struct {
	Auth   *application.AuthService
	Tokens *application.TokenService
	Logger *logrus.Logger
}

func NewAuthHandler(auth *application.AuthService, tokens *application.TokenService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Auth: auth, Tokens: tokens, Logger: logger}
}

type registerRequest struct {
	Name                 string `json:"name" binding:"required,max=40"`
	Email                string `json:"email" binding:"required,email"`
	Password             string `json:"password" binding:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" binding:"required,eqfield=Password"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates the account and signs the user in immediately, answering
// with the same token envelope as Login.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	u, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.ValidationFailed(c, "the email has already been taken")
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Message(c, http.StatusInternalServerError, "could not register user")
		return
	}

	h.issueToken(c, u.ID)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	u, err := h.Auth.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	h.issueToken(c, u.ID)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	uid := c.GetString(middleware.ContextUserID)
	u, err := h.Auth.Profile(c.Request.Context(), uid)
	if err != nil {
		response.Message(c, http.StatusNotFound, "user does not exist")
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if err := h.Tokens.Revoke(c.Request.Context(), token); err != nil {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	response.Message(c, http.StatusOK, "Successfully logged out")
}

// Refresh rotates the session: the presented token stops working and a fresh
// envelope is returned. Accepts tokens past their exp as long as they are
// inside the refresh window.
func (h *AuthHandler) Refresh(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		response.Unauthorized(c, "Unauthorized")
		return
	}
	fresh, _, err := h.Tokens.Refresh(c.Request.Context(), token)
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
	response.Token(c, fresh, int64(h.Tokens.JWT.AccessTTL.Seconds()))
}

// UploadAvatar stores the multipart "avatar" file and returns its public URL.
func (h *AuthHandler) UploadAvatar(c *gin.Context) {
	uid := c.GetString(middleware.ContextUserID)

	file, err := c.FormFile("avatar")
	if err != nil {
		response.ValidationFailed(c, "the avatar field is required")
		return
	}
	src, err := file.Open()
	if err != nil {
		response.ValidationFailed(c, "could not read the avatar file")
		return
	}
	defer src.Close()

	url, err := h.Auth.UploadAvatar(c.Request.Context(), uid, src, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("avatar upload failed")
		response.Message(c, http.StatusInternalServerError, "could not upload avatar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"avatar_url": url})
}

func (h *AuthHandler) issueToken(c *gin.Context, userID string) {
	token, _, err := h.Tokens.Issue(c.Request.Context(), userID)
	if err != nil {
		h.Logger.WithError(err).Error("token issue failed")
		response.Message(c, http.StatusInternalServerError, "could not issue token")
		return
	}
	response.Token(c, token, int64(h.Tokens.JWT.AccessTTL.Seconds()))
}

func userJSON(u *entity.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"avatar_url": u.AvatarURL,
		"created_at": u.CreatedAt,
		"updated_at": u.UpdatedAt,
	}
}
