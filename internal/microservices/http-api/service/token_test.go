package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTIssuer_IssueResolve(t *testing.T) {
	issuer := NewJWTIssuer(testSecret, time.Hour)

	token, err := issuer.Issue(alice)
	require.NoError(t, err)

	userID, err := issuer.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, userID)
}

func TestJWTIssuer_Rejects(t *testing.T) {
	issuer := NewJWTIssuer(testSecret, time.Hour)

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.Resolve("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTIssuer("ffffffffffffffffffffffffffffffff", time.Hour).Issue(alice)
		require.NoError(t, err)
		_, err = issuer.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := &jwtIssuer{secret: []byte(testSecret), ttl: time.Hour, now: func() time.Time {
			return time.Now().Add(-2 * time.Hour)
		}}
		token, err := past.Issue(alice)
		require.NoError(t, err)
		_, err = issuer.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong type", func(t *testing.T) {
		claims := Claims{
			Username:  alice.Username,
			TokenType: "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   alice.ID,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = issuer.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		claims := jwt.MapClaims{"sub": alice.ID, "type": "access", "exp": time.Now().Add(time.Hour).Unix()}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = issuer.Resolve(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
