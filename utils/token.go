package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"civiclens-be/models"
)

var ErrInvalidSession = errors.New("invalid session token")

// SessionClaims is the payload of the session cookie.
type SessionClaims struct {
	Provider string `json:"provider"`
	jwt.RegisteredClaims
}

// SessionSigner issues and verifies HS256 session tokens.
type SessionSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	return &SessionSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *SessionSigner) TTL() time.Duration { return s.ttl }

// Sign returns a token for user that expires after the signer's TTL.
func (s *SessionSigner) Sign(user, provider string) (string, error) {
	if len(s.secret) == 0 {
		return "", fmt.Errorf("session secret is not configured")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Provider: provider,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})
	return token.SignedString(s.secret)
}

func (s *SessionSigner) Parse(tokenString string) (*models.Session, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if claims.Subject == "" {
		return nil, ErrInvalidSession
	}
	return &models.Session{
		User:     claims.Subject,
		Provider: claims.Provider,
		LoggedIn: true,
	}, nil
}
