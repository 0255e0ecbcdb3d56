package domain

import (
	"time"
)

// Product is a jersey in the catalog. Stock is filled at runtime from the backend snapshot.
type Product struct {
	ID          string         `json:"id" yaml:"id"`
	Name        string         `json:"name" yaml:"name"`
	Club        string         `json:"club" yaml:"club"`
	Type        string         `json:"type" yaml:"type"` // home, away, third, retro, training
	FullSleeve  bool           `json:"isFullSleeve" yaml:"full_sleeve"`
	Description string         `json:"description,omitempty" yaml:"description"`
	Images      []string       `json:"images" yaml:"images"`
	Sizes       []string       `json:"sizes" yaml:"sizes"`
	Price       float64        `json:"price" yaml:"price"`
	Stock       map[string]int `json:"stock,omitempty" yaml:"-"`
}

// StockFor returns the available count for a size; unknown sizes have none.
func (p Product) StockFor(size string) int {
	if p.Stock == nil {
		return 0
	}
	n := p.Stock[size]
	if n < 0 {
		return 0
	}
	return n
}

// InStock reports whether any size is available
func (p Product) InStock() bool {
	for _, n := range p.Stock {
		if n > 0 {
			return true
		}
	}
	return false
}

// Image returns the primary image URL
func (p Product) Image() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// HasSize reports whether the product is sold in the given size
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// CartLine is one (product, size) entry in the cart.
// Product is a copy taken when the line was created so display survives catalog changes.
type CartLine struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	Size      string    `json:"size"`
	Quantity  int       `json:"quantity"`
	Product   Product   `json:"product"`
	AddedAt   time.Time `json:"addedAt"`
}

// LineID builds the cart line identity for a product and size
func LineID(productID, size string) string {
	return productID + "-" + size
}

// Subtotal is price × quantity for the line
func (l CartLine) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// CheckoutForm is the shipping/contact draft persisted between visits
type CheckoutForm struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
	City          string `json:"city"`
	District      string `json:"district"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	PostOffice    string `json:"postOffice,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// OrderItem is one line of an order as the backend stores it
type OrderItem struct {
	ProductID  string  `json:"productId"`
	Name       string  `json:"name"`
	Size       string  `json:"size"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Type       string  `json:"type,omitempty"`
	FullSleeve bool    `json:"isFullSleeve"`
	Image      string  `json:"image,omitempty"`
}

// ShippingAddress is the address block sent with an order
type ShippingAddress struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Address       string `json:"address"`
	City          string `json:"city"`
	District      string `json:"district"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	PostOffice    string `json:"postOffice,omitempty"`
}

// OrderRequest is the payload for POST /api/orders/create
type OrderRequest struct {
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        float64         `json:"subtotal"`
	DeliveryCharge  int             `json:"deliveryCharge"`
	TotalAmount     float64         `json:"totalAmount"`
}

// ItemCount is the total quantity across items
func (r OrderRequest) ItemCount() int {
	n := 0
	for _, it := range r.Items {
		n += it.Quantity
	}
	return n
}

// Order is an order as returned by the backend
type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"userId,omitempty"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes,omitempty"`
	Subtotal        float64         `json:"subtotal"`
	DeliveryCharge  int             `json:"deliveryCharge"`
	TotalAmount     float64         `json:"totalAmount"`
	Status          OrderStatus     `json:"status"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// User is a storefront account
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// IsAdmin reports whether the user may use the back-office
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AuthResult is what sign-in and sign-up return
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Message is a notification delivered to one user's inbox.
// Broadcasts are fanned out as one message per recipient.
type Message struct {
	ID        string      `json:"id"`
	UserID    string      `json:"userId"`
	Message   string      `json:"message"`
	Type      MessageType `json:"type"`
	Read      bool        `json:"read"`
	Broadcast bool        `json:"broadcast,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}

// StockEntry is one product's per-size stock in the snapshot
type StockEntry struct {
	ProductID string         `json:"productId"`
	Stock     map[string]int `json:"stock"`
}

// Pagination accompanies paged listings
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether another page exists
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// OrderPage is one page of orders
type OrderPage struct {
	Orders     []Order    `json:"orders"`
	Pagination Pagination `json:"pagination"`
}

// IdempotencyKey records which order a submission key produced (development backend)
type IdempotencyKey struct {
	Key         string    `json:"key"`
	UserID      string    `json:"userId"`
	OrderID     string    `json:"orderId"`
	RequestHash string    `json:"requestHash"`
	CreatedAt   time.Time `json:"createdAt"`
}
