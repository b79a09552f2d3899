package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/matiasb-dev/authkeep/internal/application"
	"github.com/matiasb-dev/authkeep/internal/domain/repository"
	"github.com/matiasb-dev/authkeep/pkg/response"
	"github.com/matiasb-dev/authkeep/pkg/validation"
)

type PermissionHandler struct {
	RBAC   *application.RBACService
	Logger *logrus.Logger
}

func NewPermissionHandler(rbac *application.RBACService, logger *logrus.Logger) *PermissionHandler {
	return &PermissionHandler{RBAC: rbac, Logger: logger}
}

func (h *PermissionHandler) Index(c *gin.Context) {
	perms, err := h.RBAC.ListPermissions(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list permissions failed")
		response.Message(c, http.StatusInternalServerError, "could not list permissions")
		return
	}
	c.JSON(http.StatusOK, perms)
}

func (h *PermissionHandler) Store(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	perm, err := h.RBAC.CreatePermission(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidName):
			response.ValidationFailed(c, "the name must be between 3 and 30 characters")
		case errors.Is(err, repository.ErrConflict):
			response.ValidationFailed(c, "the name has already been taken")
		default:
			h.Logger.WithError(err).Error("create permission failed")
			response.Message(c, http.StatusInternalServerError, "could not create permission")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":    "permission created successfully",
		"permission": perm,
	})
}

func (h *PermissionHandler) Show(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Message(c, http.StatusNotFound, "permission does not exist")
		return
	}
	perm, err := h.RBAC.GetPermission(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Message(c, http.StatusNotFound, "permission does not exist")
			return
		}
		h.Logger.WithError(err).Error("get permission failed")
		response.Message(c, http.StatusInternalServerError, "could not get permission")
		return
	}
	c.JSON(http.StatusOK, gin.H{"permission": perm})
}

func (h *PermissionHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Message(c, http.StatusNotFound, "permission does not exist")
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	perm, err := h.RBAC.UpdatePermission(c.Request.Context(), id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidName):
			response.ValidationFailed(c, "the name must be between 3 and 30 characters")
		case errors.Is(err, repository.ErrNotFound):
			response.Message(c, http.StatusNotFound, "permission does not exist")
		case errors.Is(err, repository.ErrConflict):
			response.ValidationFailed(c, "the name has already been taken")
		default:
			h.Logger.WithError(err).Error("update permission failed")
			response.Message(c, http.StatusInternalServerError, "could not update permission")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "permission updated successfully",
		"permission": perm,
	})
}

func (h *PermissionHandler) Destroy(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Message(c, http.StatusNotFound, "permission does not exist")
		return
	}
	if err := h.RBAC.DeletePermission(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Message(c, http.StatusNotFound, "permission does not exist")
			return
		}
		h.Logger.WithError(err).Error("delete permission failed")
		response.Message(c, http.StatusInternalServerError, "could not delete permission")
		return
	}
	response.Message(c, http.StatusOK, "permission deleted successfully")
}
