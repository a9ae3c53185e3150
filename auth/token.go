package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errInvalidToken = errors.New("invalid token")

// TokenSigner wraps a session id in a signed token so clients cannot forge
// or enumerate ids. The token carries nothing else; identity stays on the
// server.
type TokenSigner struct {
	secretKey []byte
}

func NewTokenSigner(secret string) *TokenSigner {
	return &TokenSigner{secretKey: []byte(secret)}
}

func (s *TokenSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Parse returns the session id inside a token signed by this signer.
func (s *TokenSigner) Parse(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		return s.secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}
	if claims.ID == "" {
		return "", errInvalidToken
	}
	return claims.ID, nil
}
