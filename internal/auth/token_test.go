package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSigningKey = []byte("test-signing-key")

func TestTokenIssuer_RoundTrip(t *testing.T) {
	ti := NewTokenIssuer(testSigningKey)

	token, err := ti.IssueToken(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userId, err := ti.VerifyToken(token)
	assert.NoError(t, err)
	assert.Equal(t, 42, userId)
}

func TestTokenIssuer_WrongKey(t *testing.T) {
	ti := NewTokenIssuer(testSigningKey)

	token, err := ti.IssueToken(42)
	require.NoError(t, err)

	other := NewTokenIssuer([]byte("some-other-key"))
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Expired(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: 42,
		expClaim:    time.Now().Add(-time.Hour).Unix(),
	})
	tokenString, err := expired.SignedString(testSigningKey)
	require.NoError(t, err)

	ti := NewTokenIssuer(testSigningKey)
	_, err = ti.VerifyToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_WrongSigningMethod(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		userIdClaim: 42,
		expClaim:    time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	ti := NewTokenIssuer(testSigningKey)
	_, err = ti.VerifyToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_MissingUserIdClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		expClaim: time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(testSigningKey)
	require.NoError(t, err)

	ti := NewTokenIssuer(testSigningKey)
	_, err = ti.VerifyToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenIssuer_Garbage(t *testing.T) {
	ti := NewTokenIssuer(testSigningKey)
	_, err := ti.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
