package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/domain/models"
	"github.com/elmolle/eggtrack/internal/service/auth"
	"github.com/elmolle/eggtrack/pkg/clients/firebaseauth"
)

// UsersHandler handles the admin user-management operations.
type UsersHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

// NewUsersHandler constructs the HTTP handler adapter.
func NewUsersHandler(svc *auth.Service, logger *zap.Logger) *UsersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsersHandler{svc: svc, logger: logger}
}

// List returns every user profile.
func (h *UsersHandler) List(c *gin.Context) {
	users, err := h.svc.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("failed listing users", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Ocurrió un error. Intenta nuevamente."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Create provisions a new account with role and optional assigned shed.
func (h *UsersHandler) Create(c *gin.Context) {
	var input auth.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.logger.Warn("invalid create-user payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Por favor completa todos los campos obligatorios."})
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err, "failed creating user")
		return
	}

	c.JSON(http.StatusCreated, user)
}

type updateRoleRequest struct {
	Role         models.Role `json:"role" binding:"required"`
	AssignedShed string      `json:"assignedShed"`
}

// UpdateRole changes a user's role.
func (h *UsersHandler) UpdateRole(c *gin.Context) {
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid role payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.UpdateRole(c.Request.Context(), c.Param("uid"), req.Role, req.AssignedShed); err != nil {
		h.respondError(c, err, "failed updating role")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rol actualizado correctamente."})
}

// Delete removes a user's profile document, revoking their access.
func (h *UsersHandler) Delete(c *gin.Context) {
	if err := h.svc.DeleteUser(c.Request.Context(), c.Param("uid")); err != nil {
		h.respondError(c, err, "failed deleting user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado correctamente."})
}

func (h *UsersHandler) respondError(c *gin.Context, err error, logMessage string) {
	var provErr *firebaseauth.ProviderError

	switch {
	case errors.Is(err, auth.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rol no válido."})
	case errors.Is(err, auth.ErrShedRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Si es pollero, debe tener galpón asignado."})
	case errors.As(err, &provErr):
		status := http.StatusBadGateway
		if provErr.Code == "EMAIL_EXISTS" {
			status = http.StatusConflict
		}
		h.logger.Warn(logMessage, zap.Error(err))
		c.JSON(status, gin.H{"error": auth.UserMessage(err)})
	default:
		h.logger.Error(logMessage, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": auth.UserMessage(err)})
	}
}
