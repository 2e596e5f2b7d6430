package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	tok, exp, err := m.Generate("5c8a1d5b0190b214360dc057")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "5c8a1d5b0190b214360dc057", claims.UserID)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt(), 5*time.Second)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	other := NewJWTManager("other-secret", time.Hour)
	tok, _, err := other.Generate("u1")
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.Error(t, err)

	expired := NewJWTManager("test-secret", -time.Minute)
	tok, _, err = expired.Generate("u1")
	require.NoError(t, err)
	_, err = m.Parse(tok)
	assert.Error(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"id": "u1"})
	s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.Parse(s)
	assert.Error(t, err)
}
