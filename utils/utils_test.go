package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"civiclens-be/models"
)

func TestSessionSignAndParse(t *testing.T) {
	signer := NewSessionSigner("0123456789abcdef0123456789abcdef", time.Hour)

	token, err := signer.Sign("admin", models.ProviderPassword)
	require.NoError(t, err)

	session, err := signer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", session.User)
	assert.Equal(t, models.ProviderPassword, session.Provider)
	assert.True(t, session.LoggedIn)
}

func TestSessionRejectsBadTokens(t *testing.T) {
	signer := NewSessionSigner("0123456789abcdef0123456789abcdef", time.Hour)
	token, err := signer.Sign("admin", models.ProviderPassword)
	require.NoError(t, err)

	other := NewSessionSigner("another-secret-another-secret-xx", time.Hour)
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	expired := NewSessionSigner("0123456789abcdef0123456789abcdef", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = signer.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "admin", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = signer.Parse(unsigned)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

type sampleRequest struct {
	Description string `json:"description" binding:"required,min=10"`
	Category    string `json:"category" binding:"required,issuecategory"`
	Status      string `json:"status" binding:"omitempty,issuestatus"`
	Other       string `json:"other" binding:"omitempty,email"`
}

func TestFieldErrors(t *testing.T) {
	RegisterValidators()

	err := binding.Validator.ValidateStruct(&sampleRequest{
		Description: "short",
		Category:    "volcano",
		Status:      "Closed",
		Other:       "nope",
	})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, []string{"Please provide a more detailed description."}, fields["description"])
	assert.Equal(t, []string{"Please select a category."}, fields["category"])
	assert.Equal(t, []string{"Invalid status."}, fields["status"])
	assert.Equal(t, []string{"Invalid value."}, fields["other"])

	assert.NoError(t, binding.Validator.ValidateStruct(&sampleRequest{
		Description: "A long enough description",
		Category:    string(models.Graffiti),
		Status:      string(models.InProgress),
	}))
	assert.Nil(t, FieldErrors(assert.AnError))
}

func TestFieldErrorsWrongJSONType(t *testing.T) {
	var req struct {
		Lat string `json:"lat"`
		Lng string `json:"lng"`
	}
	err := json.Unmarshal([]byte(`{"lat": 34.05}`), &req)
	require.Error(t, err)
	assert.Equal(t, map[string][]string{"lat": {"Invalid latitude."}}, FieldErrors(err))

	err = json.Unmarshal([]byte(`{"lng": true}`), &req)
	require.Error(t, err)
	assert.Equal(t, map[string][]string{"lng": {"Invalid longitude."}}, FieldErrors(err))
}
