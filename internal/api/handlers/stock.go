package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// SetStockRequest replaces a product's per-size stock
type SetStockRequest struct {
	Stock map[string]int `json:"stock" binding:"required"`
}

// HandleGetStock handles GET /api/stock. The body is a bare array, not an envelope.
func HandleGetStock(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := repos.Stock.List(c.Request.Context())
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if entries == nil {
			entries = []domain.StockEntry{}
		}
		c.JSON(http.StatusOK, entries)
	}
}

// HandleSetStock handles PUT /api/stock/:productId
func HandleSetStock(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID := c.Param("productId")

		var req SetStockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		fields := make(map[string]string)
		for size, n := range req.Stock {
			if n < 0 {
				fields[size] = "stock cannot be negative"
			}
		}
		if len(fields) > 0 {
			respondError(c, logger, &errors.ErrValidation{Message: "Stock cannot be negative", Fields: fields})
			return
		}

		ctx := c.Request.Context()
		if err := repos.Stock.Set(ctx, productID, req.Stock); err != nil {
			respondError(c, logger, err)
			return
		}
		logger.Info("Stock updated", zap.String("product_id", productID), zap.Any("stock", req.Stock))

		entry := domain.StockEntry{ProductID: productID, Stock: req.Stock}
		respond(c, http.StatusOK, entry, "Stock updated")
	}
}
