package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/auth"

	"civiclens-be/logger"
	"civiclens-be/models"
	"civiclens-be/utils"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrIdentityUnavailable = errors.New("identity provider not configured")
)

const (
	devAdminUsername = "admin"
	devAdminPassword = "admin"
	passwordProvider = "password"
)

// IDTokenVerifier is satisfied by *auth.Client.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthService struct {
	admin       models.AdminAccount
	devFallback bool
	signer      *utils.SessionSigner
	verifier    IDTokenVerifier
}

// NewAuthService builds the login service. With an empty password hash outside
// production the admin/admin development login is accepted.
func NewAuthService(admin models.AdminAccount, production bool, signer *utils.SessionSigner, verifier IDTokenVerifier) *AuthService {
	return &AuthService{
		admin:       admin,
		devFallback: admin.PasswordHash == "" && !production,
		signer:      signer,
		verifier:    verifier,
	}
}

// Login checks the static admin account and returns a signed session token.
func (s *AuthService) Login(username, password string) (string, *models.Session, error) {
	if !s.checkPassword(username, password) {
		logger.Log.WithField("username", username).Warn("Failed admin login")
		return "", nil, ErrInvalidCredentials
	}
	return s.issue(username, models.ProviderPassword)
}

func (s *AuthService) checkPassword(username, password string) bool {
	if s.devFallback {
		return subtle.ConstantTimeCompare([]byte(username), []byte(devAdminUsername)) == 1 &&
			subtle.ConstantTimeCompare([]byte(password), []byte(devAdminPassword)) == 1
	}
	if s.admin.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.admin.Username)) == 1
	passOK := s.admin.ComparePassword(password)
	return userOK && passOK
}

// LoginWithIDToken accepts identity-provider tokens issued for email/password accounts.
func (s *AuthService) LoginWithIDToken(ctx context.Context, idToken string) (string, *models.Session, error) {
	if s.verifier == nil {
		return "", nil, ErrIdentityUnavailable
	}
	token, err := s.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		logger.Log.Warnf("ID token rejected: %v", err)
		return "", nil, ErrInvalidCredentials
	}
	if token.Firebase.SignInProvider != passwordProvider {
		return "", nil, fmt.Errorf("%w: sign-in provider %q", ErrInvalidCredentials, token.Firebase.SignInProvider)
	}

	user := token.UID
	if email, ok := token.Claims["email"].(string); ok && email != "" {
		user = email
	}
	return s.issue(user, models.ProviderFirebase)
}

func (s *AuthService) issue(user, provider string) (string, *models.Session, error) {
	token, err := s.signer.Sign(user, provider)
	if err != nil {
		return "", nil, err
	}
	logger.Log.WithField("user", user).Info("Admin session started")
	return token, &models.Session{User: user, Provider: provider, LoggedIn: true}, nil
}

// Verify resolves a session cookie value.
func (s *AuthService) Verify(token string) (*models.Session, error) {
	return s.signer.Parse(token)
}

func (s *AuthService) SessionTTLSeconds() int {
	return int(s.signer.TTL().Seconds())
}
