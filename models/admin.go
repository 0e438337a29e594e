package models

import (
	"golang.org/x/crypto/bcrypt"
)

// AdminAccount is the single staff login configured for the dashboard.
type AdminAccount struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// HashPassword returns the bcrypt hash stored in ADMIN_PASSWORD_HASH.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (a *AdminAccount) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(candidate))
	return err == nil
}

// Session is what the session cookie carries.
type Session struct {
	User     string `json:"user"`
	Provider string `json:"provider"`
	LoggedIn bool   `json:"loggedIn"`
}

const (
	ProviderPassword = "password"
	ProviderFirebase = "firebase"
)
