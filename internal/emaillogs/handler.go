package emaillogs

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/detske-trhy/backend/pkg/response"
)

// Handler handles the admin email audit endpoint.
type Handler struct {
	repo *Repository
}

// NewHandler creates an email logs handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// ListByRegistration handles GET /api/registrations/:id/emails. Admin access
// is enforced by middleware before this runs.
func (h *Handler) ListByRegistration(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid registration id")
		return
	}
	logs, err := h.repo.ListByRegistration(c.Request.Context(), id)
	if err != nil {
		response.Internal(c, "failed to load email logs")
		return
	}
	response.OK(c, logs)
}
