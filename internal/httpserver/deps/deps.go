package deps

import (
	"context"
	"time"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/index"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/media"
	"github.com/sekawan-grup/raya/internal/token"
)

// AuthService is the part of service.Auth the handlers use.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, error)
	Authenticate(ctx context.Context, bearer string) (token.Claims, error)
	Logout(ctx context.Context, claims token.Claims) error
	ChangePassword(ctx context.Context, adminID uint, current, next string) error
}

// CatalogService is the part of service.Catalog the handlers use.
type CatalogService interface {
	Categories(ctx context.Context) ([]domain.Category, error)
	Category(ctx context.Context, id uint) (*domain.Category, error)
	CreateCategory(ctx context.Context, name string, order int) (*domain.Category, error)
	UpdateCategory(ctx context.Context, id uint, name string, order int) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uint) error

	AllLinks(ctx context.Context) ([]domain.Link, error)
	Links(ctx context.Context) ([]domain.Link, error)
	Link(ctx context.Context, id uint) (*domain.Link, error)
	CategoryLinks(ctx context.Context, categoryID uint) ([]domain.Link, error)
	CreateLink(ctx context.Context, categoryID uint, in domain.Link) (*domain.Link, error)
	UpdateLink(ctx context.Context, categoryID, linkID uint, in domain.Link) (*domain.Link, error)
	DeleteLink(ctx context.Context, categoryID, linkID uint) error

	PublicCatalog(ctx context.Context) ([]domain.Category, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Deps struct {
	Logger            logger.Logger
	StartTime         time.Time
	Version           string
	Commit            string
	BuildDate         string
	GoVersion         string
	TimeNow           func() time.Time   // for testing, defaults to time.Now
	AllowedOrigins    []string           // CORS origins, supports "*.example.com"
	AllowedCIDRS      []string           // IPs allowed to access healthz/readyz/infra
	TrustProxy        bool               // true if running behind a trusted reverse proxy
	MobileOnly        bool               // reject non Android/iOS user agents on /api
	LoginBurst        int                // login attempts per IP before throttling
	LoginRefillPerMin int                // login attempts regained per minute
	MaxUploadBytes    int64              // multipart limit for image uploads
	Auth              AuthService        // login, logout, password, bearer checks
	Catalog           CatalogService     // categories, links and the public catalog
	Uploader          media.Uploader     // product images, media.Disabled when unset
	Database          Pinger             // SQL database health
	Redis             Pinger             // nil when running without Redis
	MemoryIndex       *index.MemoryIndex // in-memory cache and revocation fallback
	WarmTrigger       chan struct{}      // asks the catalog warmer to rebuild the cache
}
