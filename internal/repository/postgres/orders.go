package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/pkg/errors"
)

const orderColumns = `
	id, user_id, items, shipping_address, payment_method, notes,
	subtotal, delivery_charge, total_amount, status, created_at, updated_at
`

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON, shippingJSON []byte
	var notes sql.NullString
	var status string

	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&itemsJSON,
		&shippingJSON,
		&order.PaymentMethod,
		&notes,
		&order.Subtotal,
		&order.DeliveryCharge,
		&order.TotalAmount,
		&status,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	order.Status = domain.ParseOrderStatus(status)
	if notes.Valid {
		order.Notes = notes.String
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(shippingJSON, &order.ShippingAddress); err != nil {
		return nil, err
	}
	return &order, nil
}

// Place reserves stock line by line inside one transaction, then inserts the order
func (r *orderRepository) Place(ctx context.Context, order *domain.Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, it := range order.Items {
		res, err := tx.ExecContext(ctx, `
			UPDATE stock SET quantity = quantity - $3
			WHERE product_id = $1 AND size = $2 AND quantity >= $3
		`, it.ProductID, it.Size, it.Quantity)
		if err != nil {
			r.logger.Error("Failed to reserve stock", zap.String("product_id", it.ProductID), zap.Error(err))
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			var available int
			err := tx.QueryRowContext(ctx,
				`SELECT quantity FROM stock WHERE product_id = $1 AND size = $2`,
				it.ProductID, it.Size,
			).Scan(&available)
			if err != nil && err != sql.ErrNoRows {
				return err
			}
			return repository.InsufficientStock(it, available)
		}
	}

	now := time.Now().UTC()
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = order.CreatedAt

	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return err
	}
	shippingJSON, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		order.ID,
		order.UserID,
		itemsJSON,
		shippingJSON,
		order.PaymentMethod,
		sql.NullString{String: order.Notes, Valid: order.Notes != ""},
		order.Subtotal,
		order.DeliveryCharge,
		order.TotalAmount,
		string(order.Status),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	return tx.Commit()
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	order, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*domain.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID,
	).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	orders, err := r.query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return orders, total, err
}

func (r *orderRepository) List(ctx context.Context, status domain.OrderStatus, limit, offset int) ([]*domain.Order, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE ($1 = '' OR status = $1)`, string(status),
	).Scan(&total); err != nil {
		r.logger.Error("Failed to count orders", zap.Error(err))
		return nil, 0, err
	}

	orders, err := r.query(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE ($1 = '' OR status = $1)
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	return orders, total, err
}

func (r *orderRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, restock bool) (*domain.Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	order, err := scanOrder(tx.QueryRowContext(ctx, `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING `+orderColumns, id, string(status), time.Now().UTC()))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id}
	}
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return nil, err
	}

	if restock {
		for _, it := range order.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO stock (product_id, size, quantity) VALUES ($1, $2, $3)
				ON CONFLICT (product_id, size) DO UPDATE SET quantity = stock.quantity + EXCLUDED.quantity
			`, it.ProductID, it.Size, it.Quantity); err != nil {
				r.logger.Error("Failed to restock", zap.String("product_id", it.ProductID), zap.Error(err))
				return nil, err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return order, nil
}
