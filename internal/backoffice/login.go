package backoffice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/sekawan-grup/raya/internal/logger"
)

// AuthAPI is the part of apiclient.Client used by the login, logout and
// password screens.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (string, error)
	Logout(ctx context.Context) error
	ChangePassword(ctx context.Context, current, next string) error
}

// FormState is the state of a single-form screen.
type FormState struct {
	Loading bool
	Error   string
	Success string
}

type formScreen struct {
	busy      busyFlag
	mu        sync.Mutex
	state     FormState
	observers observers[FormState]
}

func (s *formScreen) State() FormState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// OnChange subscribes fn to state snapshots.
func (s *formScreen) OnChange(fn func(FormState)) { s.observers.add(fn) }

func (s *formScreen) set(fn func(*FormState)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.state
	s.mu.Unlock()
	s.observers.notify(snap)
}

// LoginFlow submits credentials and stores the returned token, persistently
// when rememberMe is set.
type LoginFlow struct {
	formScreen
	api    AuthAPI
	tokens TokenStore
	logger logger.Logger
}

func NewLoginFlow(api AuthAPI, tokens TokenStore, log logger.Logger) *LoginFlow {
	return &LoginFlow{api: api, tokens: tokens, logger: log.Named("login")}
}

// Submit makes one login attempt. There is no retry and no lockout.
func (f *LoginFlow) Submit(ctx context.Context, username, password string, rememberMe bool) error {
	if username == "" || password == "" {
		f.set(func(s *FormState) { s.Error = "Username dan password harus diisi" })
		return ErrValidation
	}
	if err := f.busy.acquire(); err != nil {
		return err
	}
	defer f.busy.release()

	f.set(func(s *FormState) { *s = FormState{Loading: true} })

	tok, err := f.api.Login(ctx, username, password)
	if err == nil {
		err = f.tokens.Set(tok, rememberMe)
	}
	if err != nil {
		f.logger.Debug("login failed", logger.Error(err))
		f.set(func(s *FormState) { *s = FormState{Error: message(err, "Login failed")} })
		return err
	}

	f.logger.Debug("logged in", logger.String("username", username), logger.Bool("remember_me", rememberMe))
	f.set(func(s *FormState) { *s = FormState{} })
	return nil
}

// Logout revokes the session on the server when there is one, then clears
// both token stores whatever the server said. The returned error is
// informational: the local session is gone either way.
func Logout(ctx context.Context, api AuthAPI, tokens TokenStore, log logger.Logger) error {
	var apiErr error
	if _, ok := tokens.Get(); ok {
		apiErr = api.Logout(ctx)
		if apiErr != nil {
			log.Warn("logout call failed, clearing local session anyway", logger.Error(apiErr))
		}
	}
	return errors.Join(apiErr, tokens.Clear())
}

// Password rules checked before calling the API.
var PasswordRequirements = []struct {
	Text string
	Met  func(string) bool
}{
	{"Minimal 8 karakter", func(p string) bool { return len([]rune(p)) >= 8 }},
	{"Minimal 1 huruf besar", func(p string) bool { return strings.IndexFunc(p, unicode.IsUpper) >= 0 }},
	{"Minimal 1 huruf kecil", func(p string) bool { return strings.IndexFunc(p, unicode.IsLower) >= 0 }},
	{"Minimal 1 angka", func(p string) bool { return strings.IndexFunc(p, unicode.IsDigit) >= 0 }},
}

// UnmetRequirements lists the rules password fails.
func UnmetRequirements(password string) []string {
	var unmet []string
	for _, r := range PasswordRequirements {
		if !r.Met(password) {
			unmet = append(unmet, r.Text)
		}
	}
	return unmet
}

type PasswordChanger struct {
	formScreen
	api    AuthAPI
	logger logger.Logger
}

func NewPasswordChanger(api AuthAPI, log logger.Logger) *PasswordChanger {
	return &PasswordChanger{api: api, logger: log.Named("password")}
}

func (p *PasswordChanger) Submit(ctx context.Context, current, next, confirm string) error {
	var local string
	switch {
	case current == "" || next == "" || confirm == "":
		local = "Semua kolom harus diisi"
	case len(UnmetRequirements(next)) > 0:
		local = "Password baru tidak memenuhi semua persyaratan"
	case next != confirm:
		local = "Password baru dan konfirmasi password tidak cocok"
	}
	if local != "" {
		p.set(func(s *FormState) { *s = FormState{Error: local} })
		return ErrValidation
	}

	if err := p.busy.acquire(); err != nil {
		return err
	}
	defer p.busy.release()

	p.set(func(s *FormState) { *s = FormState{Loading: true} })

	if err := p.api.ChangePassword(ctx, current, next); err != nil {
		p.set(func(s *FormState) { *s = FormState{Error: message(err, "Gagal mengubah password")} })
		return err
	}

	p.logger.Info("password changed")
	p.set(func(s *FormState) { *s = FormState{Success: "Password berhasil diubah"} })
	return nil
}
