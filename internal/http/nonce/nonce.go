// Package nonce issues the short-lived anti-forgery tokens that browser
// clients must present on subscribe/unsubscribe calls. Tokens are
// stateless HMAC-signed JWTs, so no server-side session is needed for
// anonymous subscribers.
package nonce

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const subject = "push-subscribe"

type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

func (i *Issuer) Issue() (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Verify reports whether token is a valid, unexpired nonce.
func (i *Issuer) Verify(token string) bool {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !parsed.Valid {
		return false
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	return ok && claims.Subject == subject
}
