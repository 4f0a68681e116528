// Package auth answers whether the back office session is still usable,
// without contacting the API.
package auth

import (
	"errors"
	"time"

	"github.com/sekawan-grup/raya/internal/token"
)

// ErrNoToken is returned by Claims when nothing is stored.
var ErrNoToken = errors.New("no session token")

// TokenSource is satisfied by session.TokenStore.
type TokenSource interface {
	Get() (string, bool)
}

// Guard checks the stored token's exp claim against a clock. The signature is
// not verified here; the API rejects forged tokens on the first call.
type Guard struct {
	tokens TokenSource
	now    func() time.Time
}

func NewGuard(tokens TokenSource) *Guard {
	return &Guard{tokens: tokens, now: time.Now}
}

// WithClock returns a copy of the guard using now as its time source.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	cp := *g
	cp.now = now
	return &cp
}

// Claims decodes the stored token.
func (g *Guard) Claims() (token.Claims, error) {
	raw, ok := g.tokens.Get()
	if !ok {
		return token.Claims{}, ErrNoToken
	}
	return token.Decode(raw)
}

// IsValid reports whether a well-formed, unexpired token is stored.
// It never clears anything; callers decide what to do with a stale session.
func (g *Guard) IsValid() bool {
	claims, err := g.Claims()
	if err != nil {
		return false
	}
	return !claims.Expired(g.now())
}
