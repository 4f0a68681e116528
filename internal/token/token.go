// Package token issues and reads the HS256 session tokens handed to back office admins.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/sekawan-grup/raya/internal/domain"
)

var (
	ErrMalformed       = errors.New("malformed token")
	ErrMissingExpiry   = errors.New("token has no expiry claim")
	ErrMissingUsername = errors.New("token has no username claim")
	ErrInvalid         = errors.New("invalid token")
)

// Claims is the token payload: {id, username, sub, exp, iat, jti}.
type Claims struct {
	AdminID  uint   `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Expiry returns the exp claim, zero when absent.
func (c Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Expired reports whether the token is past its exp claim at now.
// A token without exp is treated as expired.
func (c Claims) Expired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return true
	}
	return c.ExpiresAt.Time.Before(now)
}

// Issuer signs and verifies tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock returns a copy of the issuer using now as its time source.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// Issue signs a new token for admin, valid for the issuer's TTL.
func (i *Issuer) Issue(admin domain.Admin) (string, Claims, error) {
	now := i.now()
	claims := Claims{
		AdminID:  admin.ID,
		Username: admin.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(admin.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks the signature and expiry and returns the claims.
func (i *Issuer) Verify(tokenString string) (Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(tokenString, &claims,
		func(t *jwt.Token) (interface{}, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	if !tok.Valid {
		return Claims{}, ErrInvalid
	}
	if claims.AdminID == 0 || claims.Username == "" {
		return Claims{}, fmt.Errorf("%w: missing subject", ErrInvalid)
	}
	return claims, nil
}

// Decode reads the payload without verifying the signature. The API server is
// the only verifier; the back office only needs exp and username to decide
// whether a stored session is still usable.
func Decode(tokenString string) (Claims, error) {
	var claims Claims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, ErrMissingExpiry
	}
	if claims.Username == "" {
		return Claims{}, ErrMissingUsername
	}
	return claims, nil
}
