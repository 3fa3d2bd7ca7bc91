package domain

import (
	"fmt"
	"time"
)

// Cart represents a shopping cart. Version increments on every write and
// backs optimistic concurrency control in the store.
type Cart struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Items     []CartEntry `json:"items"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// CartEntry is a product reference with a quantity. Prices are resolved from
// the catalog at read and checkout time, never stored in the cart.
type CartEntry struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// TotalQuantity returns the summed quantity across all entries.
func (c *Cart) TotalQuantity() int {
	var count int
	for _, e := range c.Items {
		count += e.Quantity
	}
	return count
}

// FindEntryIndex returns the index of the entry for the given product, or -1.
func (c *Cart) FindEntryIndex(productID string) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no entries.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// Snapshot returns the identity of this exact cart state. Placing an order
// records it, so the same cart contents can be converted at most once.
func (c *Cart) Snapshot() string {
	return fmt.Sprintf("%s:%d", c.ID, c.Version)
}
