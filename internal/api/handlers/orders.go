package handlers

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jerseyshop/storefront/internal/api/middleware"
	"github.com/jerseyshop/storefront/internal/checkout"
	"github.com/jerseyshop/storefront/internal/delivery"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/repository"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// CreateOrderRequest represents the order submission payload
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" binding:"required,min=1,dive"`
	ShippingAddress domain.ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string                 `json:"paymentMethod" binding:"required"`
	Notes           string                 `json:"notes"`
	Subtotal        float64                `json:"subtotal" binding:"min=0"`
	DeliveryCharge  int                    `json:"deliveryCharge" binding:"min=0"`
	TotalAmount     float64                `json:"totalAmount" binding:"min=0"`
}

type OrderItemRequest struct {
	ProductID  string  `json:"productId" binding:"required"`
	Name       string  `json:"name" binding:"required"`
	Size       string  `json:"size" binding:"required"`
	Quantity   int     `json:"quantity" binding:"required,min=1"`
	Price      float64 `json:"price" binding:"min=0"`
	Type       string  `json:"type"`
	FullSleeve bool    `json:"isFullSleeve"`
	Image      string  `json:"image"`
}

// UpdateStatusRequest represents an admin status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

const moneyTolerance = 0.01

// HandleCreateOrder handles POST /api/orders/create
func HandleCreateOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := c.Request.Context()

		// Check if this is a replayed submission
		key, requestHash, existingOrderID, isExisting := middleware.GetIdempotencyInfo(c)
		if isExisting {
			order, err := repos.Order.GetByID(ctx, existingOrderID)
			if err != nil {
				logger.Error("Failed to get existing order", zap.Error(err))
				respondError(c, logger, err)
				return
			}
			respond(c, http.StatusOK, order, "Order already placed")
			return
		}

		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		order, err := buildOrder(req)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		order.UserID = user.ID

		if err := repos.Order.Place(ctx, order); err != nil {
			respondError(c, logger, err)
			return
		}

		if key != "" {
			if err := repos.IdempotencyKey.Create(ctx, &domain.IdempotencyKey{
				Key:         key,
				UserID:      user.ID,
				OrderID:     order.ID,
				RequestHash: requestHash,
			}); err != nil {
				logger.Warn("Failed to store idempotency key", zap.String("order_id", order.ID), zap.Error(err))
			}
		}

		logger.Info("Order placed",
			zap.String("order_id", order.ID),
			zap.String("user_id", user.ID),
			zap.Int("items", len(order.Items)),
			zap.Float64("total", order.TotalAmount),
		)
		respond(c, http.StatusCreated, order, "Order placed successfully")
	}
}

// buildOrder checks the shipping block and the totals the client computed
func buildOrder(req CreateOrderRequest) (*domain.Order, error) {
	addr := req.ShippingAddress
	form := domain.CheckoutForm{
		Name:          addr.Name,
		Email:         addr.Email,
		ContactNumber: addr.ContactNumber,
		Address:       addr.Address,
		City:          addr.City,
		District:      addr.District,
		State:         addr.State,
		Pincode:       addr.Pincode,
		PostOffice:    addr.PostOffice,
	}
	if fields := checkout.Validate(form); len(fields) > 0 {
		return nil, &errors.ErrValidation{Message: "Please fix the errors in the form", Fields: fields}
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	subtotal := 0.0
	count := 0
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID:  it.ProductID,
			Name:       it.Name,
			Size:       it.Size,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Type:       it.Type,
			FullSleeve: it.FullSleeve,
			Image:      it.Image,
		})
		subtotal += it.Price * float64(it.Quantity)
		count += it.Quantity
	}

	charge := delivery.Charge(count)
	fields := make(map[string]string)
	if math.Abs(subtotal-req.Subtotal) > moneyTolerance {
		fields["subtotal"] = "does not match items"
	}
	if req.DeliveryCharge != charge {
		fields["deliveryCharge"] = "does not match item count"
	}
	if math.Abs(req.Subtotal+float64(req.DeliveryCharge)-req.TotalAmount) > moneyTolerance {
		fields["totalAmount"] = "must equal subtotal plus delivery charge"
	}
	if len(fields) > 0 {
		return nil, &errors.ErrValidation{Message: "Order totals do not add up", Fields: fields}
	}

	return &domain.Order{
		Items:           items,
		ShippingAddress: addr,
		PaymentMethod:   req.PaymentMethod,
		Notes:           checkout.SanitizeNotes(req.Notes),
		Subtotal:        subtotal,
		DeliveryCharge:  charge,
		TotalAmount:     subtotal + float64(charge),
		Status:          domain.OrderStatusPending,
	}, nil
}

// HandleMyOrders handles GET /api/orders/my-orders
func HandleMyOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}

		page, limit := pageParams(c)
		orders, total, err := repos.Order.ListByUserID(c.Request.Context(), user.ID, limit, (page-1)*limit)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if orders == nil {
			orders = []*domain.Order{}
		}
		respondPage(c, orders, pagination(page, limit, total))
	}
}

// HandleCancelOrder handles DELETE /api/orders/:id
func HandleCancelOrder(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			fail(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		ctx := c.Request.Context()

		order, err := repos.Order.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}

		// Shoppers can only cancel their own orders
		if order.UserID != user.ID {
			fail(c, http.StatusForbidden, "access denied")
			return
		}

		// Already cancelled - idempotent success
		if order.Status == domain.OrderStatusCancelled {
			respond(c, http.StatusOK, order, "Order already cancelled")
			return
		}
		if !order.Status.CanCancel() {
			respondError(c, logger, &errors.ErrInvalidStateTransition{From: order.Status, To: domain.OrderStatusCancelled})
			return
		}

		updated, err := repos.Order.UpdateStatus(ctx, order.ID, domain.OrderStatusCancelled, true)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		logger.Info("Order cancelled by customer", zap.String("order_id", order.ID))
		respond(c, http.StatusOK, updated, "Order cancelled")
	}
}

// HandleListOrders handles GET /api/orders (admin)
func HandleListOrders(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var status domain.OrderStatus
		if raw := strings.TrimSpace(c.Query("status")); raw != "" {
			status = domain.ParseOrderStatus(raw)
			if !status.IsValid() {
				fail(c, http.StatusBadRequest, "invalid status: "+raw)
				return
			}
		}

		page, limit := pageParams(c)
		orders, total, err := repos.Order.List(c.Request.Context(), status, limit, (page-1)*limit)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if orders == nil {
			orders = []*domain.Order{}
		}
		respondPage(c, orders, pagination(page, limit, total))
	}
}

// HandleUpdateOrderStatus handles PATCH /api/orders/:id/status (admin)
func HandleUpdateOrderStatus(repos *repository.Repositories, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}
		to := domain.ParseOrderStatus(req.Status)
		if !to.IsValid() {
			fail(c, http.StatusBadRequest, "invalid status: "+req.Status)
			return
		}

		ctx := c.Request.Context()
		order, err := repos.Order.GetByID(ctx, c.Param("id"))
		if err != nil {
			respondError(c, logger, err)
			return
		}
		if order.Status == to {
			respond(c, http.StatusOK, order, "")
			return
		}
		if !order.Status.CanTransitionTo(to) {
			respondError(c, logger, &errors.ErrInvalidStateTransition{From: order.Status, To: to})
			return
		}

		updated, err := repos.Order.UpdateStatus(ctx, order.ID, to, to == domain.OrderStatusCancelled)
		if err != nil {
			respondError(c, logger, err)
			return
		}
		logger.Info("Order status updated",
			zap.String("order_id", order.ID),
			zap.String("from", string(order.Status)),
			zap.String("to", string(to)),
		)
		respond(c, http.StatusOK, updated, "Order status updated")
	}
}
