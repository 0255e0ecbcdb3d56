// Package delivery computes the shipping fee charged on an order.
package delivery

const (
	// BaseFee is charged for the first item
	BaseFee = 50
	// PerAdditionalItemFee is charged for every item after the first
	PerAdditionalItemFee = 10
)

// Charge returns the delivery fee for a total item count.
// Cart preview and order total both call this, so it must stay pure.
func Charge(itemCount int) int {
	if itemCount <= 0 {
		return 0
	}
	return BaseFee + (itemCount-1)*PerAdditionalItemFee
}
