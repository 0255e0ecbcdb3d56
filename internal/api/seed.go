package api

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/api/middleware"
	"github.com/jerseyshop/storefront/internal/config"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// DefaultSeedStock is the per-size quantity given to products with no stock row yet
const DefaultSeedStock = 10

// Seed makes sure the configured admin account exists and every catalog product
// has stock. Existing rows are left alone, so it is safe on every start.
func Seed(ctx context.Context, cfg config.MockBackendConfig, repos *repository.Repositories, products []domain.Product, perSize int, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.AdminEmail != "" {
		_, err := repos.User.GetByEmail(ctx, cfg.AdminEmail)
		switch {
		case errors.IsNotFound(err):
			hash, err := middleware.HashPassword(cfg.AdminPassword)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin := &domain.User{
				Name:         "Store Admin",
				Email:        cfg.AdminEmail,
				Role:         domain.RoleAdmin,
				PasswordHash: hash,
			}
			if err := repos.User.Create(ctx, admin); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			logger.Info("Seeded admin user", zap.String("email", admin.Email))
		case err != nil:
			return fmt.Errorf("look up admin: %w", err)
		}
	}

	seeded := 0
	for _, p := range products {
		_, err := repos.Stock.Get(ctx, p.ID)
		if err == nil {
			continue
		}
		if !errors.IsNotFound(err) {
			return fmt.Errorf("look up stock for %s: %w", p.ID, err)
		}
		stock := make(map[string]int, len(p.Sizes))
		for _, size := range p.Sizes {
			stock[size] = perSize
		}
		if err := repos.Stock.Set(ctx, p.ID, stock); err != nil {
			return fmt.Errorf("seed stock for %s: %w", p.ID, err)
		}
		seeded++
	}
	if seeded > 0 {
		logger.Info("Seeded stock", zap.Int("products", seeded), zap.Int("per_size", perSize))
	}
	return nil
}
