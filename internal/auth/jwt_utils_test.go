package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)

	m, err := NewTokenManager("secret", 0)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, m.expiration)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m := newManager(t)

	token, err := m.GenerateToken(7, "yonetici")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "yonetici", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestValidateToken_Rejects(t *testing.T) {
	m := newManager(t)

	t.Run("expired", func(t *testing.T) {
		m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := m.GenerateToken(1, "yonetici")
		require.NoError(t, err)
		m.now = time.Now

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other, err := NewTokenManager("other-secret", time.Hour)
		require.NoError(t, err)
		token, err := other.GenerateToken(1, "yonetici")
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: "yonetici"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = m.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("link token used as bearer", func(t *testing.T) {
		link, err := m.SignLink("reports/2025-07-28_report.pdf", time.Now().Add(time.Hour))
		require.NoError(t, err)

		_, err = m.ValidateToken(link)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestSignLink(t *testing.T) {
	m := newManager(t)
	key := "reports/2025-07-28_report.pdf"

	t.Run("far future expiry", func(t *testing.T) {
		link, err := m.SignLink(key, time.Date(2491, 3, 9, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)

		assert.NoError(t, m.ValidateLink(link, key))
	})

	t.Run("other object", func(t *testing.T) {
		link, err := m.SignLink(key, time.Now().Add(time.Hour))
		require.NoError(t, err)

		assert.ErrorIs(t, m.ValidateLink(link, "reports/2025-07-29_report.pdf"), ErrWrongObject)
	})

	t.Run("expired", func(t *testing.T) {
		link, err := m.SignLink(key, time.Now().Add(-time.Minute))
		require.NoError(t, err)

		assert.ErrorIs(t, m.ValidateLink(link, key), ErrInvalidToken)
	})

	t.Run("bearer token used as link", func(t *testing.T) {
		token, err := m.GenerateToken(1, "yonetici")
		require.NoError(t, err)

		assert.ErrorIs(t, m.ValidateLink(token, key), ErrInvalidToken)
	})
}
