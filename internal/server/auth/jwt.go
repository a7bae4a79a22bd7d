// Package auth mints and verifies the HS256-signed bearer tokens handed
// out by the session endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// Claims carries the registered claim set stamped into every token:
// sub is the user's email, jti a fresh random identifier per issue,
// iss/aud come from server configuration.
type Claims struct {
	jwt.RegisteredClaims
}

// Issuer signs and verifies tokens with a shared symmetric key.
type Issuer struct {
	secret   []byte
	issuer   string
	audience string
}

func NewIssuer(secret []byte, issuer, audience string) *Issuer {
	return &Issuer{secret: secret, issuer: issuer, audience: audience}
}

// Issue builds a token for the given subject valid for the given window
// and returns the compact serialization together with the expiry time.
// Signing failures are returned to the caller, never swallowed.
func (i *Issuer) Issue(subject string, validity time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(validity)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// Verify parses the token, checks the HMAC signature and the issuer and
// audience claims, and returns the claim set.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithAudience(i.audience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, err
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
