package repository

import (
	"fmt"

	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/pkg/errors"
)

// InsufficientStock is the error Place returns when a line cannot be covered
func InsufficientStock(item domain.OrderItem, available int) error {
	name := item.Name
	if name == "" {
		name = item.ProductID
	}
	return &errors.ErrValidation{
		Message: fmt.Sprintf("Insufficient stock for %s (%s): %d available", name, item.Size, available),
		Fields:  map[string]string{item.ProductID + "-" + item.Size: fmt.Sprintf("only %d available", available)},
	}
}
