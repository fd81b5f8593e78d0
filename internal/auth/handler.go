package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/detske-trhy/backend/pkg/response"
)

// LoginRequest is the body for POST /admin/login.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Handler handles admin authentication endpoints.
type Handler struct {
	service *AdminService
	logger  *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(service *AdminService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Login handles POST /admin/login. Exchanges the admin password for a
// short-lived session token so the dashboard does not keep resending the
// shared secret.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "password required")
		return
	}
	token, err := h.service.Login(req.Password)
	if err != nil {
		h.logger.Warn("admin login rejected", zap.String("client_ip", c.ClientIP()))
		response.Unauthorized(c, "invalid credentials")
		return
	}
	response.OK(c, gin.H{"token": token})
}
