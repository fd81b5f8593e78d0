package models

import (
	"time"

	"github.com/google/uuid"
)

// Email kinds sent by the approval workflow.
const (
	EmailTypeRegistrationConfirmed = "registration_confirmed"
	EmailTypeThemeApproved         = "theme_approved"
	EmailTypeVideoApproved         = "video_approved"
)

// Email delivery outcomes. There is no pending state: sends are attempted
// inline after the commit and recorded with their final result.
const (
	EmailLogStatusSent   = "sent"
	EmailLogStatusFailed = "failed"
)

// EmailLog records one attempted notification for a registration.
type EmailLog struct {
	ID             uuid.UUID `json:"id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	EmailType      string    `json:"email_type"`
	RecipientEmail string    `json:"recipient_email"`
	Subject        string    `json:"subject"`
	Status         string    `json:"status"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
