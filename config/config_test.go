package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "tajne-heslo")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "tajne-heslo", cfg.Admin.Password)
	assert.Equal(t, "trhy-presentations", cfg.AWS.PresentationsBucket)
	assert.Equal(t, 2026, cfg.App.UploadDeadline.Year())
	assert.Equal(t, time.February, cfg.App.UploadDeadline.Month())
}

func TestLoadRequiresAdminCredential(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadDeadline(t *testing.T) {
	t.Setenv("ADMIN_PASSWORD", "tajne-heslo")
	t.Setenv("UPLOAD_DEADLINE", "28.2.2026")

	_, err := Load()
	assert.Error(t, err)
}

func TestDatabaseDSN(t *testing.T) {
	db := DatabaseConfig{Host: "localhost", Port: "5432", User: "u", Password: "p", DBName: "trhy", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@localhost:5432/trhy?sslmode=disable", db.DSN())

	db.URL = "postgres://elsewhere:5432/other"
	assert.Equal(t, "postgres://elsewhere:5432/other", db.DSN())
}

func TestEmailFrom(t *testing.T) {
	e := EmailConfig{FromAddress: "onboarding@resend.dev", FromName: "Dětské trhy"}
	assert.Equal(t, "Dětské trhy <onboarding@resend.dev>", e.From())

	e.FromName = ""
	assert.Equal(t, "onboarding@resend.dev", e.From())
}
