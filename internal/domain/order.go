package domain

import "time"

// Item status constants. Every line item moves through its own lifecycle.
const (
	ItemStatusPending   = "pending"
	ItemStatusConfirmed = "confirmed"
	ItemStatusShipped   = "shipped"
	ItemStatusDelivered = "delivered"
	ItemStatusCancelled = "cancelled"
)

// Payment method constants.
const (
	PaymentMethodCOD    = "COD"
	PaymentMethodOnline = "Online"
)

// Order represents a placed customer order. Monetary amounts are in minor
// currency units.
type Order struct {
	ID             string       `json:"id"`
	UserID         string       `json:"user_id"`
	Items          []OrderItem  `json:"items"`
	TotalAmount    int64        `json:"total_amount"`
	TotalQuantity  int          `json:"total_quantity"`
	ShippingCharge int64        `json:"shipping_charge"`
	PaymentMethod  string       `json:"payment_method"`
	Address        Address      `json:"address"`
	CartSnapshot   string       `json:"-"`
	User           *UserSummary `json:"user,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// OrderItem is a single product line within an order. UnitPrice is the
// discounted price captured at placement time. Product is resolved on reads
// and nil when the product row no longer exists.
type OrderItem struct {
	ID        string    `json:"id"`
	OrderID   string    `json:"order_id"`
	ProductID string    `json:"product_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice int64     `json:"unit_price"`
	Status    string    `json:"status"`
	Product   *Product  `json:"product,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Address is the shipping address captured with an order.
type Address struct {
	FullName    string `json:"full_name"`
	Phone       string `json:"phone"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
}

// ValidItemStatuses returns all valid item statuses.
func ValidItemStatuses() []string {
	return []string{
		ItemStatusPending,
		ItemStatusConfirmed,
		ItemStatusShipped,
		ItemStatusDelivered,
		ItemStatusCancelled,
	}
}

// IsValidItemStatus checks if a status string is valid.
func IsValidItemStatus(status string) bool {
	for _, s := range ValidItemStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsValidPaymentMethod checks if a payment method string is valid.
func IsValidPaymentMethod(method string) bool {
	return method == PaymentMethodCOD || method == PaymentMethodOnline
}

// AllowedItemTransitions defines the forward-only item status graph.
// Delivered and cancelled are terminal.
func AllowedItemTransitions() map[string][]string {
	return map[string][]string{
		ItemStatusPending:   {ItemStatusConfirmed, ItemStatusCancelled},
		ItemStatusConfirmed: {ItemStatusShipped, ItemStatusCancelled},
		ItemStatusShipped:   {ItemStatusDelivered},
		ItemStatusDelivered: {},
		ItemStatusCancelled: {},
	}
}

// CanTransitionTo checks if the item can move to the target status.
func (i *OrderItem) CanTransitionTo(target string) bool {
	allowed, ok := AllowedItemTransitions()[i.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}
