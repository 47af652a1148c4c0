package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), "schoolapi", time.Hour)

	raw, err := svc.Issue("uid-1", "parent@example.org", true)
	require.NoError(t, err)

	claims, err := svc.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "uid-1", claims.UID)
	assert.Equal(t, "parent@example.org", claims.Email)
	assert.True(t, claims.EmailVerified)
}

func TestTokenVerifyFailures(t *testing.T) {
	svc := NewTokenService([]byte("test-secret"), "schoolapi", time.Hour)
	raw, err := svc.Issue("uid-1", "parent@example.org", false)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenService([]byte("other-secret"), "schoolapi", time.Hour)
		_, err := other.Verify(raw)
		requireAuthError(t, err, 401, "auth/invalid-token")
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewTokenService([]byte("test-secret"), "otherapp", time.Hour)
		_, err := other.Verify(raw)
		requireAuthError(t, err, 401, "auth/invalid-token")
	})

	t.Run("expired", func(t *testing.T) {
		short := NewTokenService([]byte("test-secret"), "schoolapi", time.Millisecond)
		expired, err := short.Issue("uid-1", "parent@example.org", false)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
		_, err = svc.Verify(expired)
		requireAuthError(t, err, 401, "auth/invalid-token")
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Verify("not.a.token")
		requireAuthError(t, err, 401, "auth/invalid-token")
	})
}

func requireAuthError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	ae, ok := err.(*Error)
	require.True(t, ok, "expected *Error, got %T", err)
	assert.Equal(t, status, ae.Status)
	assert.Equal(t, code, ae.Code)
}
