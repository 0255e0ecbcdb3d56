package repository

import (
	"context"

	"github.com/jerseyshop/storefront/internal/domain"
)

// UserRepository defines user data access methods.
// Create returns *errors.ErrConflict when the email is taken.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
}

// OrderRepository defines order data access methods.
// Place reserves stock for every item and stores the order in one step;
// when any line cannot be covered nothing changes and *errors.ErrValidation is returned.
type OrderRepository interface {
	Place(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, int, error)
	List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, int, error)
	// UpdateStatus moves an order; restock returns its items to stock in the same step
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, restock bool) (*domain.Order, error)
}

// StockRepository defines per-size stock access methods
type StockRepository interface {
	List(ctx context.Context) ([]domain.StockEntry, error)
	Get(ctx context.Context, productID string) (*domain.StockEntry, error)
	Set(ctx context.Context, productID string, stock map[string]int) error
}

// MessageRepository defines inbox data access methods
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	CreateBatch(ctx context.Context, msgs []*domain.Message) error
	ListByUserID(ctx context.Context, userID string) ([]*domain.Message, error)
	List(ctx context.Context) ([]*domain.Message, error)
	// MarkRead returns *errors.ErrNotFound unless the message belongs to userID
	MarkRead(ctx context.Context, id, userID string) error
}

// IdempotencyKeyRepository defines idempotency key data access methods.
// GetByKey returns nil, nil for an unknown key.
type IdempotencyKeyRepository interface {
	GetByKey(ctx context.Context, key string) (*domain.IdempotencyKey, error)
	Create(ctx context.Context, key *domain.IdempotencyKey) error
}

// Repositories aggregates all repositories
type Repositories struct {
	User           UserRepository
	Order          OrderRepository
	Stock          StockRepository
	Message        MessageRepository
	IdempotencyKey IdempotencyKeyRepository
}
