// Package uploads exposes the public upload-token surface: resolving a token
// to its registration, obtaining a presigned S3 URL and redeeming the token
// with the uploaded video. No admin credential is involved; the token is the
// capability.
package uploads

import (
	"errors"
	"fmt"
	"path"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/detske-trhy/backend/internal/registrations"
	"github.com/detske-trhy/backend/pkg/response"
	"github.com/detske-trhy/backend/pkg/storage"
)

// RedeemRequest is the body for PUT /api/upload/:token.
type RedeemRequest struct {
	PresentationURL string `json:"presentation_url" binding:"required"`
}

// SignRequest is the body for POST /api/upload/:token/sign.
type SignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
}

// Handler handles the token-based upload endpoints.
type Handler struct {
	workflow *registrations.Workflow
	s3       *storage.S3 // nil when object storage is not configured
	logger   *zap.Logger
}

// NewHandler creates an uploads handler.
func NewHandler(workflow *registrations.Workflow, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{workflow: workflow, s3: s3, logger: logger}
}

// Resolve handles GET /api/upload/:token. Returns the restricted projection
// only; never status or approval timestamps.
func (h *Handler) Resolve(c *gin.Context) {
	info, err := h.workflow.ResolveByToken(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, registrations.ErrNotFound) {
			response.NotFound(c, "registration not found")
			return
		}
		h.logger.Error("resolve upload token failed", zap.Error(err))
		response.Internal(c, "failed to load registration")
		return
	}
	response.OK(c, info)
}

// Redeem handles PUT /api/upload/:token. Attaches the uploaded video URL to
// the registration; single use.
func (h *Handler) Redeem(c *gin.Context) {
	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "presentation_url is required")
		return
	}

	updated, err := h.workflow.RedeemToken(c.Request.Context(), c.Param("token"), req.PresentationURL)
	if err != nil {
		h.writeRedeemError(c, err)
		return
	}
	response.OK(c, updated)
}

// SignUpload handles POST /api/upload/:token/sign. Returns a presigned PUT
// URL so the browser can upload the video directly to S3, plus the public URL
// to redeem the token with afterwards.
func (h *Handler) SignUpload(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "object storage not configured")
		return
	}
	var req SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "filename is required")
		return
	}
	if !storage.ValidateVideoFileType(req.ContentType, req.Filename) {
		response.BadRequest(c, "unsupported video type")
		return
	}

	reg, err := h.workflow.ResolveForUpload(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.writeRedeemError(c, err)
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(req.Filename)
	}
	key := storage.PresentationKey(reg.ID.String(), uniqueFilename(req.Filename))
	uploadURL, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), key, contentType)
	if err != nil {
		h.logger.Error("presign upload failed", zap.Error(err), zap.String("registration_id", reg.ID.String()))
		response.Internal(c, "failed to prepare upload")
		return
	}

	response.OK(c, gin.H{
		"upload_url":       uploadURL,
		"presentation_url": h.s3.PublicObjectURL(key),
		"expires_in":       int(h.s3.PresignExpire().Seconds()),
	})
}

// UploadVideo handles POST /api/upload/:token/video. Accepts the video as
// multipart form data, streams it to S3 and redeems the token in one request.
// This is the no-CORS fallback for clients that cannot PUT to a presigned URL.
func (h *Handler) UploadVideo(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "object storage not configured")
		return
	}

	reg, err := h.workflow.ResolveForUpload(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.writeRedeemError(c, err)
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		response.BadRequest(c, "video file is required")
		return
	}
	if fileHeader.Size > storage.MaxPresentationFileSize {
		response.BadRequest(c, "video file too large")
		return
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if !storage.ValidateVideoFileType(contentType, fileHeader.Filename) {
		response.BadRequest(c, "unsupported video type")
		return
	}
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(fileHeader.Filename)
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Internal(c, "failed to read video file")
		return
	}
	defer file.Close()

	key := storage.PresentationKey(reg.ID.String(), uniqueFilename(fileHeader.Filename))
	url, err := h.s3.Upload(c.Request.Context(), key, contentType, file, fileHeader.Size)
	if err != nil {
		h.logger.Error("video upload failed", zap.Error(err), zap.String("registration_id", reg.ID.String()))
		response.Internal(c, "failed to upload video")
		return
	}

	updated, err := h.workflow.RedeemToken(c.Request.Context(), c.Param("token"), url)
	if err != nil {
		// The object is already in S3 but unreferenced; clean it up so a lost
		// redemption race does not leak storage.
		if delErr := h.s3.DeleteObject(c.Request.Context(), key); delErr != nil {
			h.logger.Warn("orphaned video cleanup failed", zap.Error(delErr), zap.String("key", key))
		}
		h.writeRedeemError(c, err)
		return
	}
	response.OK(c, updated)
}

func (h *Handler) writeRedeemError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, registrations.ErrNotFound):
		response.NotFound(c, "registration not found")
	case errors.Is(err, registrations.ErrAlreadyRedeemed):
		response.Conflict(c, "video already uploaded")
	case errors.Is(err, registrations.ErrDeadlinePassed):
		response.BadRequest(c, "upload deadline has passed")
	case errors.Is(err, registrations.ErrURLRequired):
		response.BadRequest(c, "presentation_url is required")
	default:
		h.logger.Error("redeem upload token failed", zap.Error(err))
		response.Internal(c, "failed to save video")
	}
}

func uniqueFilename(original string) string {
	ext := path.Ext(original)
	return fmt.Sprintf("%s%s", uuid.New().String(), ext)
}
