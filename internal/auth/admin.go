// Package auth verifies the single administrative credential. There are no
// user accounts: the admin presents either the shared password or a
// short-lived session token obtained from /admin/login, independently on
// every request.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/detske-trhy/backend/pkg/utils"
)

var (
	ErrInvalidCredential = errors.New("invalid admin credential")
	ErrInvalidToken      = errors.New("invalid token")
)

// Claims holds admin session token claims.
type Claims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// AdminService verifies the admin password and issues session tokens.
type AdminService struct {
	password     string
	passwordHash string // bcrypt; takes precedence over password when set
	secret       []byte
	expireHours  int
}

// NewAdminService creates an admin credential service.
func NewAdminService(password, passwordHash, jwtSecret string, expireHours int) *AdminService {
	return &AdminService{
		password:     password,
		passwordHash: passwordHash,
		secret:       []byte(jwtSecret),
		expireHours:  expireHours,
	}
}

// VerifyPassword checks the presented password against the configured
// credential.
func (s *AdminService) VerifyPassword(presented string) bool {
	if presented == "" {
		return false
	}
	if s.passwordHash != "" {
		return utils.CheckPasswordHash(presented, s.passwordHash)
	}
	return s.password != "" && utils.SecureCompare(presented, s.password)
}

// Login verifies the password and issues a session token.
func (s *AdminService) Login(password string) (string, error) {
	if !s.VerifyPassword(password) {
		return "", ErrInvalidCredential
	}
	claims := Claims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.expireHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// VerifyToken parses and validates a session token.
func (s *AdminService) VerifyToken(tokenString string) error {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		return ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Admin {
		return ErrInvalidToken
	}
	return nil
}

// VerifyCredential accepts either the shared password or a session token.
func (s *AdminService) VerifyCredential(credential string) bool {
	if s.VerifyPassword(credential) {
		return true
	}
	return s.VerifyToken(credential) == nil
}
