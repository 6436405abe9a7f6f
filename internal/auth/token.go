package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

// SessionTokenTTL bounds the lifetime of a session token. Verification
// is stateless; revocation happens by re-resolving the account on every
// protected request, not by embedding state in the token.
const SessionTokenTTL = 7 * 24 * time.Hour

const (
	userIdClaim = "user-id"
	expClaim    = "exp"
)

var ErrInvalidToken = errors.New("auth: invalid or expired token")

// TokenIssuer mints and verifies signed session tokens carrying only an
// account identifier and an expiry.
type TokenIssuer struct {
	signingKey []byte
}

func NewTokenIssuer(signingKey []byte) *TokenIssuer {
	return &TokenIssuer{signingKey: signingKey}
}

func (ti *TokenIssuer) IssueToken(userId int) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		userIdClaim: userId,
		expClaim:    time.Now().Add(SessionTokenTTL).Unix(),
	})

	return token.SignedString(ti.signingKey)
}

// VerifyToken checks signature and expiry and returns the account id.
// It has no knowledge of whether the account still exists; callers that
// need revocation must re-resolve the account themselves.
func (ti *TokenIssuer) VerifyToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ti.signingKey, nil
	})
	if err != nil || !token.Valid {
		return 0, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}

	userId, ok := claims[userIdClaim].(float64)
	if !ok {
		return 0, ErrInvalidToken
	}

	return int(userId), nil
}
