package backoffice

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sekawan-grup/raya/internal/logger"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/admin/dashboard"
)

var (
	// ErrLoginRequired is returned when a protected route was entered
	// without a valid session and the navigation was redirected.
	ErrLoginRequired = errors.New("login required")
	ErrRouteNotFound = errors.New("route not found")
)

// Validator is satisfied by auth.Guard.
type Validator interface {
	IsValid() bool
}

// Handler renders a route.
type Handler func(ctx context.Context) error

type route struct {
	handler   Handler
	protected bool
}

// Router maps paths to screens. Protected routes consult the guard on every
// entry: a valid session renders the screen, anything else is redirected
// once to LoginPath and the requested navigation is dropped.
type Router struct {
	guard  Validator
	logger logger.Logger

	mu         sync.Mutex
	routes     map[string]route
	current    string
	onRedirect func(from, to string)
}

func NewRouter(guard Validator, log logger.Logger) *Router {
	return &Router{
		guard:  guard,
		logger: log.Named("router"),
		routes: make(map[string]route),
	}
}

// Handle registers a public route.
func (r *Router) Handle(path string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[path] = route{handler: h}
}

// Protect registers a route that needs a valid session.
func (r *Router) Protect(path string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[path] = route{handler: h, protected: true}
}

// OnRedirect is called with the dropped path and the login path on every redirect.
func (r *Router) OnRedirect(fn func(from, to string)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onRedirect = fn
}

// Current is the last path rendered or redirected to.
func (r *Router) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate enters path. A redirected navigation renders the login route
// (when registered) and returns ErrLoginRequired.
func (r *Router) Navigate(ctx context.Context, path string) error {
	r.mu.Lock()
	rt, ok := r.routes[path]
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrRouteNotFound, path)
	}

	if rt.protected && !r.guard.IsValid() {
		return r.redirectToLogin(ctx, path)
	}

	r.setCurrent(path)
	return rt.handler(ctx)
}

func (r *Router) redirectToLogin(ctx context.Context, from string) error {
	r.mu.Lock()
	login, hasLogin := r.routes[LoginPath]
	onRedirect := r.onRedirect
	r.current = LoginPath
	r.mu.Unlock()

	r.logger.Debug("session invalid, redirecting",
		logger.String("from", from),
		logger.String("to", LoginPath))
	if onRedirect != nil {
		onRedirect(from, LoginPath)
	}

	// the login route is never protected, so this cannot redirect again
	if hasLogin && !login.protected {
		if err := login.handler(ctx); err != nil {
			return errors.Join(ErrLoginRequired, err)
		}
	}
	return ErrLoginRequired
}

func (r *Router) setCurrent(path string) {
	r.mu.Lock()
	r.current = path
	r.mu.Unlock()
}
