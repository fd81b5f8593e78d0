package models

import (
	"time"

	"github.com/google/uuid"
)

// Registration status values. Status only ever advances forward:
// pending -> theme_approved -> video_approved.
const (
	StatusPending       = "pending"
	StatusThemeApproved = "theme_approved"
	StatusVideoApproved = "video_approved"
)

// Registration is one stall submission (guardian + child + stall) and its
// approval lifecycle.
type Registration struct {
	ID              uuid.UUID  `json:"id"`
	ParentName      string     `json:"parent_name"`
	ParentEmail     string     `json:"parent_email"`
	ParentPhone     string     `json:"parent_phone"`
	ParentAddress   string     `json:"parent_address"`
	City            string     `json:"city"`
	ChildName       string     `json:"child_name"`
	ChildAge        int        `json:"child_age"`
	StallName       string     `json:"stall_name"`
	Products        string     `json:"products"`
	ConsentGiven    bool       `json:"consent_given"`
	PresentationURL *string    `json:"presentation_url"`
	Status          string     `json:"status"`
	ThemeApprovedAt *time.Time `json:"theme_approved_at"`
	VideoApprovedAt *time.Time `json:"video_approved_at"`
	EmailsSent      []string   `json:"emails_sent"`
	UploadToken     string     `json:"upload_token"`
	CreatedAt       time.Time  `json:"created_at"`
}

// HasVideo reports whether a presentation has been attached.
func (r *Registration) HasVideo() bool {
	return r.PresentationURL != nil && *r.PresentationURL != ""
}

// UploadInfo is the restricted projection returned for an upload token.
// It never exposes status, timestamps or the full guardian record.
type UploadInfo struct {
	ID              uuid.UUID `json:"id"`
	ChildName       string    `json:"child_name"`
	StallName       string    `json:"stall_name"`
	ParentEmail     string    `json:"parent_email"`
	PresentationURL *string   `json:"presentation_url"`
}
