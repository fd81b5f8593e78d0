package registrations

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/detske-trhy/backend/internal/mailer"
	"github.com/detske-trhy/backend/internal/models"
)

// Failure classes surfaced to handlers. Each maps to a distinct HTTP outcome
// so the UI can render a differentiated message.
var (
	ErrNotFound          = errors.New("registration not found")
	ErrInvalidTransition = errors.New("action not allowed for current status")
	ErrAlreadyRedeemed   = errors.New("video already uploaded")
	ErrDeadlinePassed    = errors.New("upload deadline has passed")
	ErrURLRequired       = errors.New("presentation_url is required")
)

// Action is an approval transition requested by an admin.
type Action string

const (
	// ActionApproveTheme moves pending -> theme_approved.
	ActionApproveTheme Action = "approve_theme"
	// ActionApproveVideo moves theme_approved -> video_approved.
	ActionApproveVideo Action = "approve_video"
	// ActionApproveAll collapses both steps when a video was attached at
	// registration time: pending -> video_approved in one transition.
	ActionApproveAll Action = "approve_all"
)

// ParseAction validates an action name from a request body.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionApproveTheme, ActionApproveVideo, ActionApproveAll:
		return a, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Store is the persistence contract the workflow runs against. The conditional
// methods express their precondition at the storage layer (UPDATE ... WHERE
// status = ...) and return nil when no row matched, so concurrent transitions
// resolve to exactly one winner.
type Store interface {
	Create(ctx context.Context, reg *models.Registration) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error)
	GetByToken(ctx context.Context, token string) (*models.Registration, error)
	List(ctx context.Context) ([]models.Registration, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	ApproveTheme(ctx context.Context, id uuid.UUID, now time.Time) (*models.Registration, error)
	ApproveVideo(ctx context.Context, id uuid.UUID, now time.Time) (*models.Registration, error)
	ApproveAll(ctx context.Context, id uuid.UUID, now time.Time) (*models.Registration, error)
	SetPresentationURL(ctx context.Context, token, url string) (*models.Registration, error)
}

// EmailLogStore records notification attempts for the admin audit view.
type EmailLogStore interface {
	Record(ctx context.Context, log *models.EmailLog) error
}

// Workflow drives the registration lifecycle: creation, the three-state
// approval machine and the upload-token redemption. State changes are
// persisted first; email dispatch is best-effort and never fails the
// operation.
type Workflow struct {
	store    Store
	logs     EmailLogStore
	sender   mailer.Sender // nil disables email entirely
	baseURL  string
	deadline time.Time
	logger   *zap.Logger
	now      func() time.Time
}

// NewWorkflow creates a registration workflow.
func NewWorkflow(store Store, logs EmailLogStore, sender mailer.Sender, baseURL string, deadline time.Time, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Workflow{
		store:    store,
		logs:     logs,
		sender:   sender,
		baseURL:  baseURL,
		deadline: deadline,
		logger:   logger,
		now:      time.Now,
	}
}

// Create persists a new registration with status pending and a fresh upload
// token, then sends the confirmation email.
func (w *Workflow) Create(ctx context.Context, reg *models.Registration) error {
	token, err := generateUploadToken()
	if err != nil {
		return fmt.Errorf("generate upload token: %w", err)
	}
	reg.UploadToken = token
	reg.Status = models.StatusPending
	reg.EmailsSent = []string{}

	if err := w.store.Create(ctx, reg); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}

	uploadURL := ""
	if !reg.HasVideo() {
		uploadURL = w.uploadURL(reg.UploadToken)
	}
	w.notify(ctx, reg, models.EmailTypeRegistrationConfirmed,
		mailer.RegistrationConfirmed(reg.ChildName, reg.StallName, uploadURL))
	return nil
}

// Get returns one registration by ID.
func (w *Workflow) Get(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := w.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrNotFound
	}
	return reg, nil
}

// List returns all registrations, newest first.
func (w *Workflow) List(ctx context.Context) ([]models.Registration, error) {
	return w.store.List(ctx)
}

// Delete removes a registration unconditionally. Legal from any state.
func (w *Workflow) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := w.store.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete registration: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ApplyAction applies one approval transition. The precondition for each
// action is enforced by a conditional update; when it does not fire, the
// record is re-read to distinguish ErrNotFound from ErrInvalidTransition.
func (w *Workflow) ApplyAction(ctx context.Context, id uuid.UUID, action Action) (*models.Registration, error) {
	now := w.now().UTC()

	var (
		updated   *models.Registration
		err       error
		emailType string
	)
	switch action {
	case ActionApproveTheme:
		updated, err = w.store.ApproveTheme(ctx, id, now)
		emailType = models.EmailTypeThemeApproved
	case ActionApproveVideo:
		updated, err = w.store.ApproveVideo(ctx, id, now)
		emailType = models.EmailTypeVideoApproved
	case ActionApproveAll:
		updated, err = w.store.ApproveAll(ctx, id, now)
		emailType = models.EmailTypeVideoApproved
	default:
		return nil, ErrInvalidTransition
	}
	if err != nil {
		return nil, fmt.Errorf("apply %s: %w", action, err)
	}
	if updated == nil {
		existing, getErr := w.store.GetByID(ctx, id)
		if getErr != nil {
			return nil, fmt.Errorf("apply %s: %w", action, getErr)
		}
		if existing == nil {
			return nil, ErrNotFound
		}
		return nil, ErrInvalidTransition
	}

	switch emailType {
	case models.EmailTypeThemeApproved:
		uploadURL := ""
		if !updated.HasVideo() {
			uploadURL = w.uploadURL(updated.UploadToken)
		}
		w.notify(ctx, updated, emailType, mailer.ThemeApproved(updated.ChildName, uploadURL))
	case models.EmailTypeVideoApproved:
		w.notify(ctx, updated, emailType, mailer.VideoApproved(updated.ChildName))
	}
	return updated, nil
}

// ResolveByToken returns the restricted projection for an upload token.
func (w *Workflow) ResolveByToken(ctx context.Context, token string) (*models.UploadInfo, error) {
	reg, err := w.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrNotFound
	}
	return &models.UploadInfo{
		ID:              reg.ID,
		ChildName:       reg.ChildName,
		StallName:       reg.StallName,
		ParentEmail:     reg.ParentEmail,
		PresentationURL: reg.PresentationURL,
	}, nil
}

// ResolveForUpload checks that a token is still redeemable: it must resolve,
// the registration must not carry a video yet and the deadline must not have
// passed. No state is written.
func (w *Workflow) ResolveForUpload(ctx context.Context, token string) (*models.Registration, error) {
	reg, err := w.store.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if reg == nil {
		return nil, ErrNotFound
	}
	if reg.HasVideo() {
		return nil, ErrAlreadyRedeemed
	}
	if w.now().After(w.deadline) {
		return nil, ErrDeadlinePassed
	}
	return reg, nil
}

// RedeemToken attaches the media URL to the registration identified by the
// upload token. Single use: the conditional update only fires while
// presentation_url is null, so a concurrent second redemption loses and gets
// ErrAlreadyRedeemed.
func (w *Workflow) RedeemToken(ctx context.Context, token, url string) (*models.Registration, error) {
	if url == "" {
		return nil, ErrURLRequired
	}
	if w.now().After(w.deadline) {
		return nil, ErrDeadlinePassed
	}

	updated, err := w.store.SetPresentationURL(ctx, token, url)
	if err != nil {
		return nil, fmt.Errorf("redeem token: %w", err)
	}
	if updated == nil {
		existing, getErr := w.store.GetByToken(ctx, token)
		if getErr != nil {
			return nil, fmt.Errorf("redeem token: %w", getErr)
		}
		if existing == nil {
			return nil, ErrNotFound
		}
		return nil, ErrAlreadyRedeemed
	}
	return updated, nil
}

// Deadline returns the configured upload cutoff.
func (w *Workflow) Deadline() time.Time {
	return w.deadline
}

func (w *Workflow) uploadURL(token string) string {
	return w.baseURL + "/upload/" + token
}

// notify sends one lifecycle email and records the attempt. Failures are
// logged and swallowed; the committed state change is the source of truth.
func (w *Workflow) notify(ctx context.Context, reg *models.Registration, emailType string, msg mailer.Message) {
	if w.sender == nil {
		w.logger.Debug("email disabled, skipping", zap.String("email_type", emailType))
		return
	}
	msg.To = reg.ParentEmail

	status := models.EmailLogStatusSent
	errMsg := ""
	if err := w.sender.Send(ctx, msg); err != nil {
		status = models.EmailLogStatusFailed
		errMsg = err.Error()
		w.logger.Error("send email failed",
			zap.String("email_type", emailType),
			zap.String("registration_id", reg.ID.String()),
			zap.Error(err),
		)
	}

	if w.logs == nil {
		return
	}
	logEntry := &models.EmailLog{
		RegistrationID: reg.ID,
		EmailType:      emailType,
		RecipientEmail: reg.ParentEmail,
		Subject:        msg.Subject,
		Status:         status,
		ErrorMessage:   errMsg,
	}
	if err := w.logs.Record(ctx, logEntry); err != nil {
		w.logger.Error("record email log failed", zap.Error(err), zap.String("registration_id", reg.ID.String()))
	}
}

func generateUploadToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b)[:43], nil
}
