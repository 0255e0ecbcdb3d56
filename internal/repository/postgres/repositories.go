package postgres

import (
	"database/sql"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/repository"
)

// NewRepositories creates a new set of repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &repository.Repositories{
		User:           NewUserRepository(db, logger),
		Order:          NewOrderRepository(db, logger),
		Stock:          NewStockRepository(db, logger),
		Message:        NewMessageRepository(db, logger),
		IdempotencyKey: NewIdempotencyKeyRepository(db, logger),
	}
}
