// Package backoffice holds the admin screens as view-models: each keeps its
// own state, talks to the API through a small interface and notifies
// observers with a snapshot after every change. Front ends (the raya-admin
// CLI, tests) render those snapshots.
package backoffice

import (
	"errors"
	"sync"

	"github.com/sekawan-grup/raya/internal/apiclient"
)

var (
	// ErrBusy rejects a submission while the same screen is still working.
	ErrBusy = errors.New("operation already in progress")
	// ErrValidation is returned when local checks fail; details live in the screen state.
	ErrValidation = errors.New("validation failed")
	// ErrNoCategory is returned by link creation without an active category.
	ErrNoCategory = errors.New("no active category")
)

// TokenStore is satisfied by session.TokenStore.
type TokenStore interface {
	Get() (string, bool)
	Set(token string, persistent bool) error
	Clear() error
}

// message is what a screen shows for err: the API's message when the call
// reached it, otherwise err itself or fallback.
func message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}

// busyFlag serializes a screen's operations without queueing them.
type busyFlag struct {
	mu   sync.Mutex
	busy bool
}

func (b *busyFlag) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.busy {
		return ErrBusy
	}
	b.busy = true
	return nil
}

func (b *busyFlag) release() {
	b.mu.Lock()
	b.busy = false
	b.mu.Unlock()
}

// observers fans state snapshots out to subscribers.
type observers[S any] struct {
	mu  sync.Mutex
	fns []func(S)
}

func (o *observers[S]) add(fn func(S)) {
	o.mu.Lock()
	o.fns = append(o.fns, fn)
	o.mu.Unlock()
}

func (o *observers[S]) notify(s S) {
	o.mu.Lock()
	fns := make([]func(S), len(o.fns))
	copy(fns, o.fns)
	o.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}
