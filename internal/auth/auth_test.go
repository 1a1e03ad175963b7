package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalVerifier_RoundTrip(t *testing.T) {
	v := NewLocalVerifier("test-secret-key-for-testing-only")

	token, err := v.IssueToken("user_123", time.Hour)
	require.NoError(t, err)

	userID, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "user_123", userID)
}

func TestLocalVerifier_RejectsWrongSecret(t *testing.T) {
	token, err := NewLocalVerifier("one").IssueToken("user_123", time.Hour)
	require.NoError(t, err)

	_, err = NewLocalVerifier("two").Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalVerifier_RejectsExpired(t *testing.T) {
	v := NewLocalVerifier("secret")
	token, err := v.IssueToken("user_123", -time.Minute)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalVerifier_RejectsMissingSubjectAndForeignIssuer(t *testing.T) {
	secret := []byte("secret")
	v := NewLocalVerifier("secret")

	noSub := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss": "resolve-local",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := noSub.SignedString(secret)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), s)
	assert.ErrorIs(t, err, ErrInvalidToken)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user_123",
		"iss": "https://clerk.test",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err = foreign.SignedString(secret)
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), s)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalVerifier_RejectsGarbage(t *testing.T) {
	_, err := NewLocalVerifier("secret").Verify(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
