package service

import (
	"errors"
	"time"

	"habittracker/pkg/util"
)

var (
	ErrInvalidPassword = errors.New("invalid password")
	ErrAuthDisabled    = errors.New("authentication is not configured")
)

// AuthService issues tokens for the single owner of the tracker.
type AuthService struct {
	passwordHash string
	jwtSecret    string
	tokenTTL     time.Duration
}

func NewAuthService(passwordHash, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		tokenTTL:     tokenTTL,
	}
}

// Enabled reports whether API routes require a bearer token.
func (s *AuthService) Enabled() bool {
	return s.jwtSecret != ""
}

// Login checks the owner password and returns a signed JWT.
func (s *AuthService) Login(password string) (string, error) {
	if !s.Enabled() || s.passwordHash == "" {
		return "", ErrAuthDisabled
	}
	if !util.CheckPassword(password, s.passwordHash) {
		return "", ErrInvalidPassword
	}
	return util.GenerateJWT("owner", s.jwtSecret, s.tokenTTL)
}

// Verify validates a bearer token and returns its subject.
func (s *AuthService) Verify(token string) (string, error) {
	return util.ParseJWT(token, s.jwtSecret)
}
