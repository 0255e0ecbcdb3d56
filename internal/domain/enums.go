package domain

import (
	"encoding/json"
	"strings"
)

// OrderStatus represents the lifecycle state of a storefront order
type OrderStatus string

const (
	// PENDING - placed, not yet confirmed by the shop
	OrderStatusPending OrderStatus = "pending"
	// CONFIRMED - accepted, being packed
	OrderStatusConfirmed OrderStatus = "confirmed"
	// SHIPPED - handed to the courier
	OrderStatusShipped OrderStatus = "shipped"
	// DELIVERED - received by the customer
	OrderStatusDelivered OrderStatus = "delivered"
	// CANCELLED - cancelled by the customer or the shop
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ParseOrderStatus normalizes backend spellings ("Pending", "CANCELED") to an OrderStatus
func ParseOrderStatus(s string) OrderStatus {
	st := OrderStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == "canceled" {
		return OrderStatusCancelled
	}
	return st
}

// UnmarshalJSON accepts any casing the backend sends
func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseOrderStatus(raw)
	return nil
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusShipped,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusConfirmed ||
			newStatus == OrderStatusCancelled
	case OrderStatusConfirmed:
		return newStatus == OrderStatusShipped ||
			newStatus == OrderStatusCancelled
	case OrderStatusShipped:
		return newStatus == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// CanCancel reports whether a customer may still cancel the order
func (s OrderStatus) CanCancel() bool {
	return s.CanTransitionTo(OrderStatusCancelled)
}

// Role is a user's access level
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// MessageType classifies inbox messages
type MessageType string

const (
	MessageTypeInfo      MessageType = "info"
	MessageTypePromotion MessageType = "promotion"
	MessageTypeOrder     MessageType = "order"
	MessageTypeAlert     MessageType = "alert"
)

// IsValid checks if the message type is known
func (t MessageType) IsValid() bool {
	switch t {
	case MessageTypeInfo, MessageTypePromotion, MessageTypeOrder, MessageTypeAlert:
		return true
	default:
		return false
	}
}
