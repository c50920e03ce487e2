package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/elmolle/eggtrack/internal/service/auth"
)

// ContextUserKey is the gin context key holding the resolved session user.
const ContextUserKey = "currentUser"

// AuthHandler handles sign-in and password recovery.
type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

// NewAuthHandler constructs the HTTP handler adapter.
func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

type signInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// SignIn authenticates credentials and returns the session profile plus tokens.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sign-in payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := h.svc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("sign-in failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, session)
}

type recoverRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// Recover sends a password reset email through the identity provider.
func (h *AuthHandler) Recover(c *gin.Context) {
	var req recoverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid recover payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if err := h.svc.SendRecovery(c.Request.Context(), req.Email); err != nil {
		h.logger.Warn("password recovery failed", zap.String("email", req.Email), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": auth.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Correo de recuperación enviado."})
}
