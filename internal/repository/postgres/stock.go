package postgres

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

type stockRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *sql.DB, logger *zap.Logger) *stockRepository {
	return &stockRepository{
		db:     db,
		logger: logger,
	}
}

func (r *stockRepository) List(ctx context.Context) ([]domain.StockEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, size, quantity FROM stock
		ORDER BY product_id, size
	`)
	if err != nil {
		r.logger.Error("Failed to list stock", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var entries []domain.StockEntry
	for rows.Next() {
		var productID, size string
		var qty int
		if err := rows.Scan(&productID, &size, &qty); err != nil {
			return nil, err
		}
		if n := len(entries); n == 0 || entries[n-1].ProductID != productID {
			entries = append(entries, domain.StockEntry{ProductID: productID, Stock: make(map[string]int)})
		}
		entries[len(entries)-1].Stock[size] = qty
	}
	return entries, rows.Err()
}

func (r *stockRepository) Get(ctx context.Context, productID string) (*domain.StockEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT size, quantity FROM stock WHERE product_id = $1`, productID)
	if err != nil {
		r.logger.Error("Failed to get stock", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	entry := domain.StockEntry{ProductID: productID, Stock: make(map[string]int)}
	for rows.Next() {
		var size string
		var qty int
		if err := rows.Scan(&size, &qty); err != nil {
			return nil, err
		}
		entry.Stock[size] = qty
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(entry.Stock) == 0 {
		return nil, &errors.ErrNotFound{Resource: "stock", ID: productID}
	}
	return &entry, nil
}

// Set replaces every size row of a product
func (r *stockRepository) Set(ctx context.Context, productID string, stock map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM stock WHERE product_id = $1`, productID); err != nil {
		return err
	}
	for size, qty := range stock {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stock (product_id, size, quantity) VALUES ($1, $2, $3)`,
			productID, size, qty,
		); err != nil {
			r.logger.Error("Failed to set stock", zap.String("product_id", productID), zap.Error(err))
			return err
		}
	}
	return tx.Commit()
}
