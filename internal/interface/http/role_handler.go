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

type RoleHandler struct {
	RBAC   *application.RBACService
	Logger *logrus.Logger
}

func NewRoleHandler(rbac *application.RBACService, logger *logrus.Logger) *RoleHandler {
	return &RoleHandler{RBAC: rbac, Logger: logger}
}

type nameRequest struct {
	Name string `json:"name" binding:"required,min=3,max=30"`
}

type userRoleRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	RoleID string `json:"role_id" binding:"required,uuid"`
}

type rolePermissionRequest struct {
	RoleID       string `json:"role_id" binding:"required,uuid"`
	PermissionID string `json:"permission_id" binding:"required,uuid"`
}

func (h *RoleHandler) Index(c *gin.Context) {
	roles, err := h.RBAC.ListRoles(c.Request.Context())
	if err != nil {
		h.Logger.WithError(err).Error("list roles failed")
		response.Message(c, http.StatusInternalServerError, "could not list roles")
		return
	}
	c.JSON(http.StatusOK, roles)
}

func (h *RoleHandler) Store(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	role, err := h.RBAC.CreateRole(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidName):
			response.ValidationFailed(c, "the name must be between 3 and 30 characters")
		case errors.Is(err, repository.ErrConflict):
			response.ValidationFailed(c, "the name has already been taken")
		default:
			h.Logger.WithError(err).Error("create role failed")
			response.Message(c, http.StatusInternalServerError, "could not create role")
		}
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "role created successfully",
		"role":    role,
	})
}

func (h *RoleHandler) Show(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Message(c, http.StatusNotFound, "role does not exist")
		return
	}
	role, err := h.RBAC.GetRole(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Message(c, http.StatusNotFound, "role does not exist")
			return
		}
		h.Logger.WithError(err).Error("get role failed")
		response.Message(c, http.StatusInternalServerError, "could not get role")
		return
	}
	c.JSON(http.StatusOK, gin.H{"role": role})
}

func (h *RoleHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Message(c, http.StatusNotFound, "role does not exist")
		return
	}
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	role, err := h.RBAC.UpdateRole(c.Request.Context(), id, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrInvalidName):
			response.ValidationFailed(c, "the name must be between 3 and 30 characters")
		case errors.Is(err, repository.ErrNotFound):
			response.Message(c, http.StatusNotFound, "role does not exist")
		case errors.Is(err, repository.ErrConflict):
			response.ValidationFailed(c, "the name has already been taken")
		default:
			h.Logger.WithError(err).Error("update role failed")
			response.Message(c, http.StatusInternalServerError, "could not update role")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "role updated successfully",
		"role":    role,
	})
}

func (h *RoleHandler) Destroy(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		response.Message(c, http.StatusNotFound, "role does not exist")
		return
	}
	if err := h.RBAC.DeleteRole(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			response.Message(c, http.StatusNotFound, "role does not exist")
			return
		}
		h.Logger.WithError(err).Error("delete role failed")
		response.Message(c, http.StatusInternalServerError, "could not delete role")
		return
	}
	response.Message(c, http.StatusOK, "role deleted successfully")
}

// AssignRole attaches a role to a user. Assigning a role the user already
// holds answers 400 instead of silently succeeding.
func (h *RoleHandler) AssignRole(c *gin.Context) {
	var req userRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	err := h.RBAC.AssignRole(c.Request.Context(), req.UserID, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Message(c, http.StatusNotFound, "user or role does not exist")
		case errors.Is(err, repository.ErrConflict):
			response.Message(c, http.StatusBadRequest, "user already has this role")
		default:
			h.Logger.WithError(err).Error("assign role failed")
			response.Message(c, http.StatusInternalServerError, "could not assign role")
		}
		return
	}
	response.Message(c, http.StatusOK, "role assigned successfully")
}

func (h *RoleHandler) RemoveRole(c *gin.Context) {
	var req userRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	err := h.RBAC.RemoveRole(c.Request.Context(), req.UserID, req.RoleID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Message(c, http.StatusNotFound, "user or role does not exist")
		case errors.Is(err, repository.ErrConflict):
			response.Message(c, http.StatusBadRequest, "user does not have this role")
		default:
			h.Logger.WithError(err).Error("remove role failed")
			response.Message(c, http.StatusInternalServerError, "could not remove role")
		}
		return
	}
	response.Message(c, http.StatusOK, "role removed successfully")
}

func (h *RoleHandler) GivePermission(c *gin.Context) {
	var req rolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	err := h.RBAC.GivePermission(c.Request.Context(), req.RoleID, req.PermissionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Message(c, http.StatusNotFound, "role or permission does not exist")
		case errors.Is(err, repository.ErrConflict):
			response.Message(c, http.StatusBadRequest, "role already has this permission")
		default:
			h.Logger.WithError(err).Error("give permission failed")
			response.Message(c, http.StatusInternalServerError, "could not give permission")
		}
		return
	}
	response.Message(c, http.StatusOK, "permission given to role successfully")
}

func (h *RoleHandler) RevokePermission(c *gin.Context) {
	var req rolePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationFailed(c, validation.First(err))
		return
	}

	err := h.RBAC.RevokePermission(c.Request.Context(), req.RoleID, req.PermissionID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			response.Message(c, http.StatusNotFound, "role or permission does not exist")
		case errors.Is(err, repository.ErrConflict):
			response.Message(c, http.StatusBadRequest, "role does not have this permission")
		default:
			h.Logger.WithError(err).Error("revoke permission failed")
			response.Message(c, http.StatusInternalServerError, "could not revoke permission")
		}
		return
	}
	response.Message(c, http.StatusOK, "permission revoked from role successfully")
}
