package checkout

import (
	"regexp"
	"strings"

	"github.com/jerseyshop/storefront/internal/delivery"
	"github.com/jerseyshop/storefront/internal/domain"
)

// PaymentMethod is the only payment option offered
const PaymentMethod = "Cash on Delivery"

var tagRe = regexp.MustCompile(`<[^>]*>`)

// SanitizeNotes strips anything that looks like an HTML tag and trims the result.
// It is a display guard, not an HTML parser; malformed markup is left as text.
func SanitizeNotes(notes string) string {
	return strings.TrimSpace(tagRe.ReplaceAllString(notes, ""))
}

// BuildOrder composes the order payload from cart lines and the checkout form
func BuildOrder(lines []domain.CartLine, form domain.CheckoutForm) domain.OrderRequest {
	items := make([]domain.OrderItem, 0, len(lines))
	var subtotal float64
	count := 0
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID:  l.ProductID,
			Name:       l.Product.Name,
			Size:       l.Size,
			Quantity:   l.Quantity,
			Price:      l.Product.Price,
			Type:       l.Product.Type,
			FullSleeve: l.Product.FullSleeve,
			Image:      l.Product.Image(),
		})
		subtotal += l.Subtotal()
		count += l.Quantity
	}

	charge := delivery.Charge(count)
	return domain.OrderRequest{
		Items: items,
		ShippingAddress: domain.ShippingAddress{
			Name:          strings.TrimSpace(form.Name),
			Email:         strings.TrimSpace(form.Email),
			ContactNumber: form.ContactNumber,
			Address:       strings.TrimSpace(form.Address),
			City:          strings.TrimSpace(form.City),
			District:      strings.TrimSpace(form.District),
			State:         strings.TrimSpace(form.State),
			Pincode:       form.Pincode,
			PostOffice:    strings.TrimSpace(form.PostOffice),
		},
		PaymentMethod:  PaymentMethod,
		Notes:          SanitizeNotes(form.Notes),
		Subtotal:       subtotal,
		DeliveryCharge: charge,
		TotalAmount:    subtotal + float64(charge),
	}
}
