package registrations

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/detske-trhy/backend/internal/models"
	"github.com/detske-trhy/backend/pkg/response"
)

// CreateRequest is the body for POST /api/registrations.
type CreateRequest struct {
	ParentName      string `json:"parent_name" binding:"required"`
	ParentEmail     string `json:"parent_email" binding:"required,email"`
	ParentPhone     string `json:"parent_phone" binding:"required"`
	ParentAddress   string `json:"parent_address"`
	City            string `json:"city"`
	ChildName       string `json:"child_name" binding:"required"`
	ChildAge        int    `json:"child_age" binding:"required,gte=5,lte=18"`
	StallName       string `json:"stall_name" binding:"required"`
	Products        string `json:"products"`
	PresentationURL string `json:"presentation_url"`
	ConsentGiven    bool   `json:"consent_given"`
}

// ActionRequest is the body for PUT /api/registrations/:id.
type ActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// Handler handles registration HTTP endpoints.
type Handler struct {
	workflow *Workflow
	logger   *zap.Logger
}

// NewHandler creates a registrations handler.
func NewHandler(workflow *Workflow, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{workflow: workflow, logger: logger}
}

// Create handles POST /api/registrations (public). Creates a pending
// registration with a fresh upload token and sends the confirmation email.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if !req.ConsentGiven {
		response.BadRequest(c, "consent_given must be true")
		return
	}

	reg := &models.Registration{
		ParentName:    req.ParentName,
		ParentEmail:   req.ParentEmail,
		ParentPhone:   req.ParentPhone,
		ParentAddress: req.ParentAddress,
		City:          req.City,
		ChildName:     req.ChildName,
		ChildAge:      req.ChildAge,
		StallName:     req.StallName,
		Products:      req.Products,
		ConsentGiven:  req.ConsentGiven,
	}
	if req.PresentationURL != "" {
		reg.PresentationURL = &req.PresentationURL
	}

	if err := h.workflow.Create(c.Request.Context(), reg); err != nil {
		h.logger.Error("create registration failed", zap.Error(err))
		response.Internal(c, "failed to create registration")
		return
	}

	response.Created(c, gin.H{
		"registration": reg,
		"upload_token": reg.UploadToken,
		"has_video":    reg.HasVideo(),
	})
}

// List handles GET /api/registrations (admin). Newest first.
func (h *Handler) List(c *gin.Context) {
	list, err := h.workflow.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list registrations failed", zap.Error(err))
		response.Internal(c, "failed to list registrations")
		return
	}
	response.OK(c, list)
}

// GetByID handles GET /api/registrations/:id (admin).
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	reg, err := h.workflow.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("get registration failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to load registration")
		return
	}
	response.OK(c, reg)
}

// ApplyAction handles PUT /api/registrations/:id (admin). The body names one
// of approve_theme, approve_video or approve_all.
func (h *Handler) ApplyAction(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	var req ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "action required")
		return
	}
	action, err := ParseAction(req.Action)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	updated, err := h.workflow.ApplyAction(c.Request.Context(), id, action)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.NotFound(c, "registration not found")
		case errors.Is(err, ErrInvalidTransition):
			response.Conflict(c, "action not allowed for current status")
		default:
			h.logger.Error("apply action failed", zap.Error(err), zap.String("id", id.String()), zap.String("action", string(action)))
			response.Internal(c, "failed to apply action")
		}
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /api/registrations/:id (admin). Hard delete, legal
// from any state.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	if err := h.workflow.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("delete registration failed", zap.Error(err), zap.String("id", id.String()))
		response.Internal(c, "failed to delete registration")
		return
	}
	response.OK(c, gin.H{"deleted": true})
}
