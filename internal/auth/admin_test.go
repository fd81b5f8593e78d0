package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/detske-trhy/backend/pkg/utils"
)

func TestVerifyPassword(t *testing.T) {
	s := NewAdminService("tajne-heslo", "", "jwt-secret", 12)

	assert.True(t, s.VerifyPassword("tajne-heslo"))
	assert.False(t, s.VerifyPassword("spatne-heslo"))
	assert.False(t, s.VerifyPassword(""))
}

func TestVerifyPasswordHashTakesPrecedence(t *testing.T) {
	hash, err := utils.HashPassword("tajne-heslo")
	require.NoError(t, err)

	s := NewAdminService("jine-heslo", hash, "jwt-secret", 12)
	assert.True(t, s.VerifyPassword("tajne-heslo"))
	// The plaintext fallback is ignored once a hash is configured.
	assert.False(t, s.VerifyPassword("jine-heslo"))
}

func TestLoginIssuesValidToken(t *testing.T) {
	s := NewAdminService("tajne-heslo", "", "jwt-secret", 12)

	token, err := s.Login("tajne-heslo")
	require.NoError(t, err)
	assert.NoError(t, s.VerifyToken(token))

	_, err = s.Login("spatne-heslo")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestVerifyTokenRejectsForeignSecret(t *testing.T) {
	issuer := NewAdminService("tajne-heslo", "", "jwt-secret", 12)
	other := NewAdminService("tajne-heslo", "", "different-secret", 12)

	token, err := issuer.Login("tajne-heslo")
	require.NoError(t, err)
	assert.ErrorIs(t, other.VerifyToken(token), ErrInvalidToken)
	assert.ErrorIs(t, issuer.VerifyToken("not-a-jwt"), ErrInvalidToken)
}

func TestVerifyCredentialAcceptsBothForms(t *testing.T) {
	s := NewAdminService("tajne-heslo", "", "jwt-secret", 12)

	assert.True(t, s.VerifyCredential("tajne-heslo"))

	token, err := s.Login("tajne-heslo")
	require.NoError(t, err)
	assert.True(t, s.VerifyCredential(token))

	assert.False(t, s.VerifyCredential("garbage"))
}
