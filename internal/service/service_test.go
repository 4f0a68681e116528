package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/index"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/store/sqlstore"
	"github.com/sekawan-grup/raya/internal/token"
)

type fixture struct {
	auth    *Auth
	catalog *Catalog
	admins  *sqlstore.AdminsRepository
	cache   *index.MemoryIndex
	warm    chan struct{}
	admin   domain.Admin
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		DSN:         "file:" + filepath.Join(t.TempDir(), "raya.db"),
		AutoMigrate: true,
	}, logger.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlstore.Close(db) })

	admins := sqlstore.NewAdminsRepository(db)
	hash, err := HashPassword("admin123")
	require.NoError(t, err)
	admin := domain.Admin{Username: "admin", Password: hash}
	require.NoError(t, admins.Create(ctx, &admin))

	mem := index.NewMemoryIndex()
	warm := make(chan struct{}, 1)

	return &fixture{
		auth:    NewAuth(admins, token.NewIssuer("0123456789abcdef-test", time.Hour), mem, logger.NewNop()),
		catalog: NewCatalog(sqlstore.NewCategoriesRepository(db), sqlstore.NewLinksRepository(db), mem, time.Minute, warm, logger.NewNop()),
		admins:  admins,
		cache:   mem,
		warm:    warm,
		admin:   admin,
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{name: "valid", username: "admin", password: "admin123"},
		{name: "wrong password", username: "admin", password: "nope", wantErr: ErrInvalidCredentials},
		{name: "unknown user", username: "root", password: "admin123", wantErr: ErrInvalidCredentials},
		{name: "empty password", username: "admin", password: "", wantErr: ErrValidation},
		{name: "blank username", username: "  ", password: "admin123", wantErr: ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := f.auth.Login(ctx, tt.username, tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, signed)
				return
			}
			require.NoError(t, err)

			claims, err := f.auth.Authenticate(ctx, signed)
			require.NoError(t, err)
			assert.Equal(t, "admin", claims.Username)
			assert.Equal(t, f.admin.ID, claims.AdminID)
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signed, err := f.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	claims, err := f.auth.Authenticate(ctx, signed)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, claims))

	_, err = f.auth.Authenticate(ctx, signed)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	other, err := f.auth.Login(ctx, "admin", "admin123")
	require.NoError(t, err)
	_, err = f.auth.Authenticate(ctx, other)
	assert.NoError(t, err, "a fresh login must not be affected by the revoked token")
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.ChangePassword(ctx, f.admin.ID, "admin123", "short"), ErrValidation)
	assert.ErrorIs(t, f.auth.ChangePassword(ctx, f.admin.ID, "", "longenough"), ErrValidation)
	assert.ErrorIs(t, f.auth.ChangePassword(ctx, f.admin.ID, "wrong", "longenough"), ErrWrongPassword)
	assert.ErrorIs(t, f.auth.ChangePassword(ctx, 999, "admin123", "longenough"), sqlstore.ErrAdminNotFound)

	require.NoError(t, f.auth.ChangePassword(ctx, f.admin.ID, "admin123", "Rahasia99"))

	_, err := f.auth.Login(ctx, "admin", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "admin", "Rahasia99")
	assert.NoError(t, err)
}

func TestCatalogValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.catalog.CreateCategory(ctx, "   ", 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)

	c, err := f.catalog.CreateCategory(ctx, "Shopee", 0)
	require.NoError(t, err)

	_, err = f.catalog.CreateLink(ctx, c.ID, domain.Link{Title: ""})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.catalog.CreateLink(ctx, 999, domain.Link{Title: "x"})
	assert.ErrorIs(t, err, sqlstore.ErrCategoryNotFound)
}

func TestCreateLinkDerivesMissingPriceString(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.catalog.CreateCategory(ctx, "Shopee", 0)
	require.NoError(t, err)

	l, err := f.catalog.CreateLink(ctx, c.ID, domain.Link{Title: "Emas", Price: decimal.NewFromInt(1631000)})
	require.NoError(t, err)
	assert.Equal(t, "Rp 1.631.000", l.PriceStr)

	kept, err := f.catalog.CreateLink(ctx, c.ID, domain.Link{Title: "Emas", Price: decimal.NewFromInt(5), PriceStr: "Hubungi kami"})
	require.NoError(t, err)
	assert.Equal(t, "Hubungi kami", kept.PriceStr)
}

func TestLinkPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.catalog.CreateCategory(ctx, "Shopee", 0)
	require.NoError(t, err)

	_, err = f.catalog.CreateLink(ctx, c.ID, domain.Link{Title: "Emas", Price: decimal.NewFromInt(-5000)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "price", verr.Field)

	exact := decimal.RequireFromString("1631000.75")
	l, err := f.catalog.CreateLink(ctx, c.ID, domain.Link{Title: "Emas", Price: exact})
	require.NoError(t, err)
	assert.True(t, exact.Equal(l.Price), "price = %v", l.Price)
	assert.Equal(t, "Rp 1.631.000", l.PriceStr)

	_, err = f.catalog.UpdateLink(ctx, c.ID, l.ID, domain.Link{Title: "Emas", Price: decimal.NewFromInt(-1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPublicCatalogInvalidatedOnEveryMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	shopee, err := f.catalog.CreateCategory(ctx, "Shopee", 0)
	require.NoError(t, err)
	drainWarm(f.warm)

	first, err := f.catalog.PublicCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Empty(t, first[0].Links)

	_, cached, _ := f.cache.GetCatalog(ctx)
	require.True(t, cached, "PublicCatalog should populate the cache")

	mutations := []struct {
		name string
		run  func() error
	}{
		{"create link", func() error {
			_, err := f.catalog.CreateLink(ctx, shopee.ID, domain.Link{Title: "Emas", URL: "u", IsActive: true})
			return err
		}},
		{"update category", func() error {
			_, err := f.catalog.UpdateCategory(ctx, shopee.ID, "Shopee Mall", 1)
			return err
		}},
		{"create category", func() error {
			_, err := f.catalog.CreateCategory(ctx, "Tokopedia", 0)
			return err
		}},
	}

	for _, m := range mutations {
		_, err := f.catalog.PublicCatalog(ctx)
		require.NoError(t, err)

		require.NoError(t, m.run(), m.name)

		_, cached, _ := f.cache.GetCatalog(ctx)
		assert.False(t, cached, "%s should invalidate the cache", m.name)
		select {
		case <-f.warm:
		default:
			t.Errorf("%s should trigger the warmer", m.name)
		}
	}

	got, err := f.catalog.PublicCatalog(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Shopee Mall", got[0].Name)
	require.Len(t, got[0].Links, 1)
}

func TestWarmTriggerNeverBlocks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.catalog.CreateCategory(ctx, "c", 0)
		require.NoError(t, err)
	}
	assert.Len(t, f.warm, 1)
}

func drainWarm(ch chan struct{}) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}
