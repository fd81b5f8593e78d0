package registrations

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detske-trhy/backend/internal/mailer"
	"github.com/detske-trhy/backend/internal/models"
)

// memStore is an in-memory Store with the same conditional-update semantics
// as the PostgreSQL repository: transition methods return nil when the
// precondition row does not match.
type memStore struct {
	byID      map[uuid.UUID]*models.Registration
	createErr error
}

func newMemStore() *memStore {
	return &memStore{byID: make(map[uuid.UUID]*models.Registration)}
}

func (m *memStore) Create(_ context.Context, reg *models.Registration) error {
	if m.createErr != nil {
		return m.createErr
	}
	reg.ID = uuid.New()
	reg.CreatedAt = time.Now().UTC()
	m.byID[reg.ID] = reg
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*models.Registration, error) {
	return m.byID[id], nil
}

func (m *memStore) GetByToken(_ context.Context, token string) (*models.Registration, error) {
	for _, reg := range m.byID {
		if reg.UploadToken == token {
			return reg, nil
		}
	}
	return nil, nil
}

func (m *memStore) List(_ context.Context) ([]models.Registration, error) {
	var list []models.Registration
	for _, reg := range m.byID {
		list = append(list, *reg)
	}
	return list, nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	if _, ok := m.byID[id]; !ok {
		return false, nil
	}
	delete(m.byID, id)
	return true, nil
}

func (m *memStore) ApproveTheme(_ context.Context, id uuid.UUID, now time.Time) (*models.Registration, error) {
	reg, ok := m.byID[id]
	if !ok || reg.Status != models.StatusPending {
		return nil, nil
	}
	reg.Status = models.StatusThemeApproved
	reg.ThemeApprovedAt = &now
	reg.EmailsSent = append(reg.EmailsSent, models.EmailTypeThemeApproved)
	return reg, nil
}

func (m *memStore) ApproveVideo(_ context.Context, id uuid.UUID, now time.Time) (*models.Registration, error) {
	reg, ok := m.byID[id]
	if !ok || reg.Status != models.StatusThemeApproved {
		return nil, nil
	}
	reg.Status = models.StatusVideoApproved
	reg.VideoApprovedAt = &now
	reg.EmailsSent = append(reg.EmailsSent, models.EmailTypeVideoApproved)
	return reg, nil
}

func (m *memStore) ApproveAll(_ context.Context, id uuid.UUID, now time.Time) (*models.Registration, error) {
	reg, ok := m.byID[id]
	if !ok || reg.Status != models.StatusPending || !reg.HasVideo() {
		return nil, nil
	}
	reg.Status = models.StatusVideoApproved
	reg.ThemeApprovedAt = &now
	reg.VideoApprovedAt = &now
	reg.EmailsSent = append(reg.EmailsSent, models.EmailTypeVideoApproved)
	return reg, nil
}

func (m *memStore) SetPresentationURL(_ context.Context, token, url string) (*models.Registration, error) {
	for _, reg := range m.byID {
		if reg.UploadToken == token {
			if reg.HasVideo() {
				return nil, nil
			}
			reg.PresentationURL = &url
			return reg, nil
		}
	}
	return nil, nil
}

type memSender struct {
	sent    []mailer.Message
	sendErr error
}

func (s *memSender) Send(_ context.Context, msg mailer.Message) error {
	if s.sendErr != nil {
		return s.sendErr
	}
	s.sent = append(s.sent, msg)
	return nil
}

type memLogStore struct {
	records []models.EmailLog
}

func (l *memLogStore) Record(_ context.Context, log *models.EmailLog) error {
	l.records = append(l.records, *log)
	return nil
}

func newTestWorkflow(store *memStore, sender mailer.Sender, logs EmailLogStore) *Workflow {
	deadline := time.Now().Add(30 * 24 * time.Hour)
	return NewWorkflow(store, logs, sender, "https://trhy.example.com", deadline, nil)
}

func createPending(t *testing.T, w *Workflow, withVideo bool) *models.Registration {
	t.Helper()
	reg := &models.Registration{
		ParentName:   "Jana Nováková",
		ParentEmail:  "jana@example.com",
		ParentPhone:  "602123456",
		City:         "Brno",
		ChildName:    "Eliška",
		ChildAge:     9,
		StallName:    "Korálky od Elišky",
		Products:     "náramky a náušnice",
		ConsentGiven: true,
	}
	if withVideo {
		url := "https://cdn.example.com/video.mp4"
		reg.PresentationURL = &url
	}
	require.NoError(t, w.Create(context.Background(), reg))
	return reg
}

func TestCreateRegistration(t *testing.T) {
	store := newMemStore()
	sender := &memSender{}
	w := newTestWorkflow(store, sender, nil)

	reg := createPending(t, w, false)

	assert.Equal(t, models.StatusPending, reg.Status)
	assert.NotEmpty(t, reg.UploadToken)
	assert.Len(t, reg.UploadToken, 43)
	assert.Nil(t, reg.PresentationURL)
	assert.Empty(t, reg.EmailsSent)
	assert.Nil(t, reg.ThemeApprovedAt)
	assert.Nil(t, reg.VideoApprovedAt)

	// Confirmation email carries the upload link when no video was attached.
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "jana@example.com", sender.sent[0].To)
	assert.Contains(t, sender.sent[0].HTML, "https://trhy.example.com/upload/"+reg.UploadToken)
}

func TestCreateRegistrationTokensAreUnique(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		reg := createPending(t, w, false)
		assert.False(t, seen[reg.UploadToken])
		seen[reg.UploadToken] = true
	}
}

func TestCreateWithVideoOmitsUploadLink(t *testing.T) {
	store := newMemStore()
	sender := &memSender{}
	w := newTestWorkflow(store, sender, nil)

	reg := createPending(t, w, true)

	assert.True(t, reg.HasVideo())
	require.Len(t, sender.sent, 1)
	assert.NotContains(t, sender.sent[0].HTML, "/upload/")
}

func TestApproveThemeFromPending(t *testing.T) {
	store := newMemStore()
	sender := &memSender{}
	w := newTestWorkflow(store, sender, nil)
	reg := createPending(t, w, false)
	sender.sent = nil

	updated, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	require.NoError(t, err)

	assert.Equal(t, models.StatusThemeApproved, updated.Status)
	require.NotNil(t, updated.ThemeApprovedAt)
	assert.Nil(t, updated.VideoApprovedAt)
	assert.Equal(t, []string{models.EmailTypeThemeApproved}, updated.EmailsSent)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, mailer.SubjectThemeApproved, sender.sent[0].Subject)
	assert.Contains(t, sender.sent[0].HTML, "/upload/"+reg.UploadToken)
}

func TestApproveVideoAfterTheme(t *testing.T) {
	store := newMemStore()
	sender := &memSender{}
	w := newTestWorkflow(store, sender, nil)
	reg := createPending(t, w, false)

	_, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	require.NoError(t, err)
	sender.sent = nil

	updated, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveVideo)
	require.NoError(t, err)

	assert.Equal(t, models.StatusVideoApproved, updated.Status)
	require.NotNil(t, updated.ThemeApprovedAt)
	require.NotNil(t, updated.VideoApprovedAt)
	assert.False(t, updated.VideoApprovedAt.Before(*updated.ThemeApprovedAt))
	assert.Equal(t, []string{models.EmailTypeThemeApproved, models.EmailTypeVideoApproved}, updated.EmailsSent)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, mailer.SubjectVideoApproved, sender.sent[0].Subject)
}

func TestApproveAllFastPath(t *testing.T) {
	store := newMemStore()
	sender := &memSender{}
	w := newTestWorkflow(store, sender, nil)
	reg := createPending(t, w, true)
	sender.sent = nil

	updated, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveAll)
	require.NoError(t, err)

	assert.Equal(t, models.StatusVideoApproved, updated.Status)
	require.NotNil(t, updated.ThemeApprovedAt)
	require.NotNil(t, updated.VideoApprovedAt)
	assert.True(t, updated.ThemeApprovedAt.Equal(*updated.VideoApprovedAt))
	assert.Equal(t, []string{models.EmailTypeVideoApproved}, updated.EmailsSent)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, mailer.SubjectVideoApproved, sender.sent[0].Subject)
}

func TestApproveAllWithoutVideoRejected(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	_, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveAll)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, _ := store.GetByID(context.Background(), reg.ID)
	assert.Equal(t, models.StatusPending, got.Status)
}

func TestApproveThemeTwiceRejected(t *testing.T) {
	store := newMemStore()
	sender := &memSender{}
	w := newTestWorkflow(store, sender, nil)
	reg := createPending(t, w, false)
	sender.sent = nil

	first, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	require.NoError(t, err)
	stamp := *first.ThemeApprovedAt

	_, err = w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// One winner, one rejection, exactly one email.
	got, _ := store.GetByID(context.Background(), reg.ID)
	assert.True(t, got.ThemeApprovedAt.Equal(stamp))
	assert.Equal(t, []string{models.EmailTypeThemeApproved}, got.EmailsSent)
	assert.Len(t, sender.sent, 1)
}

func TestApproveVideoFromPendingRejected(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	_, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveVideo)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestApplyActionUnknownID(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)

	for _, action := range []Action{ActionApproveTheme, ActionApproveVideo, ActionApproveAll} {
		_, err := w.ApplyAction(context.Background(), uuid.New(), action)
		assert.ErrorIs(t, err, ErrNotFound, "action %s", action)
	}
}

func TestParseAction(t *testing.T) {
	for _, name := range []string{"approve_theme", "approve_video", "approve_all"} {
		action, err := ParseAction(name)
		require.NoError(t, err)
		assert.Equal(t, Action(name), action)
	}
	_, err := ParseAction("reject")
	assert.Error(t, err)
	_, err = ParseAction("")
	assert.Error(t, err)
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	store := newMemStore()
	sender := &memSender{sendErr: errors.New("resend unavailable")}
	logs := &memLogStore{}
	w := newTestWorkflow(store, sender, logs)
	reg := createPending(t, w, false)

	updated, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	require.NoError(t, err)
	assert.Equal(t, models.StatusThemeApproved, updated.Status)

	// The failure is recorded in the audit trail, not surfaced.
	var failed int
	for _, rec := range logs.records {
		if rec.Status == models.EmailLogStatusFailed {
			failed++
			assert.Contains(t, rec.ErrorMessage, "resend unavailable")
		}
	}
	assert.Equal(t, 2, failed) // confirmation + theme approval
}

func TestNilSenderSkipsEmail(t *testing.T) {
	store := newMemStore()
	logs := &memLogStore{}
	w := newTestWorkflow(store, nil, logs)
	reg := createPending(t, w, false)

	_, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	require.NoError(t, err)
	assert.Empty(t, logs.records)
}

func TestEmailLogRecordsSends(t *testing.T) {
	store := newMemStore()
	sender := &memSender{}
	logs := &memLogStore{}
	w := newTestWorkflow(store, sender, logs)
	reg := createPending(t, w, false)

	_, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	require.NoError(t, err)

	require.Len(t, logs.records, 2)
	assert.Equal(t, models.EmailTypeRegistrationConfirmed, logs.records[0].EmailType)
	assert.Equal(t, models.EmailTypeThemeApproved, logs.records[1].EmailType)
	for _, rec := range logs.records {
		assert.Equal(t, models.EmailLogStatusSent, rec.Status)
		assert.Equal(t, reg.ID, rec.RegistrationID)
		assert.Equal(t, "jana@example.com", rec.RecipientEmail)
	}
}

func TestDeleteRegistration(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	require.NoError(t, w.Delete(context.Background(), reg.ID))
	assert.ErrorIs(t, w.Delete(context.Background(), reg.ID), ErrNotFound)
}

func TestResolveByToken(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	info, err := w.ResolveByToken(context.Background(), reg.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, info.ID)
	assert.Equal(t, "Eliška", info.ChildName)
	assert.Equal(t, "Korálky od Elišky", info.StallName)
	assert.Equal(t, "jana@example.com", info.ParentEmail)
	assert.Nil(t, info.PresentationURL)

	_, err = w.ResolveByToken(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemToken(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	updated, err := w.RedeemToken(context.Background(), reg.UploadToken, "https://cdn.example.com/a.mp4")
	require.NoError(t, err)
	require.NotNil(t, updated.PresentationURL)
	assert.Equal(t, "https://cdn.example.com/a.mp4", *updated.PresentationURL)
	// Redemption never touches the approval state.
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestRedeemTokenSecondAttemptRejected(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	_, err := w.RedeemToken(context.Background(), reg.UploadToken, "https://cdn.example.com/a.mp4")
	require.NoError(t, err)

	_, err = w.RedeemToken(context.Background(), reg.UploadToken, "https://cdn.example.com/b.mp4")
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)

	got, _ := store.GetByToken(context.Background(), reg.UploadToken)
	assert.Equal(t, "https://cdn.example.com/a.mp4", *got.PresentationURL)
}

func TestRedeemTokenUnknown(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)

	_, err := w.RedeemToken(context.Background(), "no-such-token", "https://cdn.example.com/a.mp4")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, store.byID)
}

func TestRedeemTokenEmptyURL(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	_, err := w.RedeemToken(context.Background(), reg.UploadToken, "")
	assert.ErrorIs(t, err, ErrURLRequired)
	assert.Nil(t, reg.PresentationURL)
}

func TestRedeemTokenAfterDeadline(t *testing.T) {
	store := newMemStore()
	w := NewWorkflow(store, nil, nil, "https://trhy.example.com", time.Now().Add(-time.Hour), nil)
	reg := createPending(t, w, false)

	_, err := w.RedeemToken(context.Background(), reg.UploadToken, "https://cdn.example.com/a.mp4")
	assert.ErrorIs(t, err, ErrDeadlinePassed)

	_, err = w.ResolveForUpload(context.Background(), reg.UploadToken)
	assert.ErrorIs(t, err, ErrDeadlinePassed)
}

func TestResolveForUpload(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	got, err := w.ResolveForUpload(context.Background(), reg.UploadToken)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, got.ID)

	_, err = w.ResolveForUpload(context.Background(), "no-such-token")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = w.RedeemToken(context.Background(), reg.UploadToken, "https://cdn.example.com/a.mp4")
	require.NoError(t, err)
	_, err = w.ResolveForUpload(context.Background(), reg.UploadToken)
	assert.ErrorIs(t, err, ErrAlreadyRedeemed)
}

func TestStatusNeverRegresses(t *testing.T) {
	store := newMemStore()
	w := newTestWorkflow(store, nil, nil)
	reg := createPending(t, w, false)

	_, err := w.ApplyAction(context.Background(), reg.ID, ActionApproveTheme)
	require.NoError(t, err)
	_, err = w.ApplyAction(context.Background(), reg.ID, ActionApproveVideo)
	require.NoError(t, err)

	// Terminal state: every further action is rejected.
	for _, action := range []Action{ActionApproveTheme, ActionApproveVideo, ActionApproveAll} {
		_, err := w.ApplyAction(context.Background(), reg.ID, action)
		assert.ErrorIs(t, err, ErrInvalidTransition, "action %s", action)
	}
	got, _ := store.GetByID(context.Background(), reg.ID)
	assert.Equal(t, models.StatusVideoApproved, got.Status)
}

func TestUploadLinkFormat(t *testing.T) {
	w := newTestWorkflow(newMemStore(), nil, nil)
	url := w.uploadURL("abc123")
	assert.True(t, strings.HasPrefix(url, "https://trhy.example.com/upload/"))
}
