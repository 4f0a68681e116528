// Package sqlstore persists admins, categories and links with GORM.
// A postgres:// DSN selects Postgres, anything else is opened as SQLite.
package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrLinkNotFound     = errors.New("link not found")
	ErrAdminNotFound    = errors.New("admin not found")
)

// Options configures the connection pool and schema handling.
type Options struct {
	DSN           string
	MaxOpenConns  int
	MaxIdleConns  int
	ConnMaxLife   time.Duration
	SlowThreshold time.Duration
	AutoMigrate   bool
}

// Open connects to the database described by opts.DSN and migrates the schema
// when opts.AutoMigrate is set.
func Open(ctx context.Context, opts Options, log logger.Logger) (*gorm.DB, error) {
	dialector, driver := dialectorFor(opts.DSN)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.New(gormWriter{log: log}, gormlogger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if isMemoryDSN(opts.DSN) {
		// every new connection to :memory: would see an empty database
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLife > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLife)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	log.Info("database connected", logger.String("driver", driver))

	if opts.AutoMigrate {
		if err := Migrate(ctx, db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates the tables for all entities.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(&domain.Admin{}, &domain.Category{}, &domain.Link{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// Ping checks the underlying connection, used by /readyz and /infra.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(dsn string) (gorm.Dialector, string) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn), "postgres"
	}
	return sqlite.Open(sqliteDSN(dsn)), "sqlite"
}

// sqliteDSN turns on foreign keys so ON DELETE CASCADE holds on SQLite too.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// gormWriter routes GORM's logger output through zap.
type gormWriter struct {
	log logger.Logger
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.log.Warnf(format, args...)
}
