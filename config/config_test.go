package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclens-be/logger"
)

func init() {
	logger.Silence()
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PHOTO_BACKEND", "local")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, 120*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 15*time.Second, cfg.UploadStallTimeout)
	assert.EqualValues(t, 10*1024*1024, cfg.MaxUploadBytes)
	assert.EqualValues(t, 3, cfg.UploadAttempts)
	assert.Equal(t, devSessionSecret, cfg.SessionSecret)
	assert.InDelta(t, 34.0522, cfg.FallbackLat, 1e-9)
	assert.NotEmpty(t, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SESSION_SECRET", "short")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://civiclens.example")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_SECRET")

	t.Setenv("SESSION_SECRET", "0123456789abcdef0123456789abcdef")
	_, err = Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADMIN_PASSWORD_HASH")

	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://civiclens.example"}, cfg.AllowedOrigins)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DATA_BACKEND", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATA_BACKEND")
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("UPLOAD_STALL_TIMEOUT", "soon")

	_, err := Load()
	require.Error(t, err)
}

func TestFirebaseCredentialOption(t *testing.T) {
	opt, source, err := FirebaseConfig{ServiceAccountJSON: `{"type":"service_account"}`}.CredentialOption()
	require.NoError(t, err)
	assert.NotNil(t, opt)
	assert.Equal(t, "service-account-json", source)

	_, _, err = FirebaseConfig{ClientEmail: "svc@example.iam.gserviceaccount.com", PrivateKey: "key"}.CredentialOption()
	require.Error(t, err)

	opt, source, err = FirebaseConfig{ProjectID: "p", ClientEmail: "svc@p.iam.gserviceaccount.com", PrivateKey: "key"}.CredentialOption()
	require.NoError(t, err)
	assert.NotNil(t, opt)
	assert.Equal(t, "split-env", source)

	opt, source, err = FirebaseConfig{}.CredentialOption()
	require.NoError(t, err)
	assert.Nil(t, opt)
	assert.Equal(t, "application-default", source)
}

func TestLoadRejectsNonPositiveSettings(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"UPLOAD_STALL_TIMEOUT", "0s"},
		{"UPLOAD_STALL_TIMEOUT", "-5s"},
		{"AI_TIMEOUT", "0s"},
		{"SESSION_TTL", "-1h"},
		{"LOGIN_RATE_PERIOD", "0s"},
		{"MAX_UPLOAD_MB", "0"},
		{"MAX_UPLOAD_MB", "-3"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("APP_ENV", "development")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
