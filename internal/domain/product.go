package domain

import "time"

// Product represents a catalog item. Price is in minor currency units and
// Discount is an integer percentage from 0 to 100.
type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Price      int64     `json:"price"`
	Discount   int       `json:"discount"`
	Image      string    `json:"image,omitempty"`
	BgColor    string    `json:"bg_color,omitempty"`
	PanelColor string    `json:"panel_color,omitempty"`
	TextColor  string    `json:"text_color,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DiscountedPrice returns the unit price after applying the discount
// percentage, truncated toward zero.
func (p *Product) DiscountedPrice() int64 {
	return p.Price - p.Price*int64(p.Discount)/100
}
