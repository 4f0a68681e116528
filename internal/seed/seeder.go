// Package seed fills an empty database: the default admin account and an
// optional catalog imported from YAML.
package seed

import (
	"context"
	"fmt"

	"github.com/sekawan-grup/raya/internal/domain"
	"github.com/sekawan-grup/raya/internal/logger"
	"github.com/sekawan-grup/raya/internal/service"
)

type AdminCreator interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, admin *domain.Admin) error
}

type CategoryCreator interface {
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, c *domain.Category) error
}

type LinkCreator interface {
	Create(ctx context.Context, l *domain.Link) error
}

// EnsureAdmin creates the default admin when no admin exists yet.
func EnsureAdmin(ctx context.Context, admins AdminCreator, username, password string, usingDefault bool, log logger.Logger) error {
	n, err := admins.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Debug("admin users already exist, skipping factory")
		return nil
	}

	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	if err := admins.Create(ctx, &domain.Admin{Username: username, Password: hash}); err != nil {
		return err
	}

	if usingDefault {
		log.Warn("default admin created with the built-in password, change it now",
			logger.String("username", username))
	} else {
		log.Info("default admin created", logger.String("username", username))
	}
	return nil
}

// ImportCatalog loads the YAML catalog at path into an empty database.
// It returns the number of categories imported, 0 when the database already
// has categories.
func ImportCatalog(ctx context.Context, path string, categories CategoryCreator, links LinkCreator, log logger.Logger) (int, error) {
	n, err := categories.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Debug("catalog not empty, skipping seed import", logger.String("file", path))
		return 0, nil
	}

	file, err := NewLoader(path).Load()
	if err != nil {
		return 0, err
	}
	mapped, err := NewMapper().MapCatalog(file)
	if err != nil {
		return 0, err
	}

	linkCount := 0
	for _, c := range mapped {
		entries := c.Links
		c.Links = nil
		if err := categories.Create(ctx, &c); err != nil {
			return 0, fmt.Errorf("failed to import category %q: %w", c.Name, err)
		}
		for _, l := range entries {
			l.CategoryID = c.ID
			if err := links.Create(ctx, &l); err != nil {
				return 0, fmt.Errorf("failed to import link %q: %w", l.Title, err)
			}
			linkCount++
		}
	}

	log.Info("seed catalog imported",
		logger.String("file", path),
		logger.Int("categories", len(mapped)),
		logger.Int("links", linkCount))
	return len(mapped), nil
}
