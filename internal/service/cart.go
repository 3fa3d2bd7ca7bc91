package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/repository"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

// Cart operation upper-bound limits to prevent abuse.
const (
	// MaxQuantityPerItem is the maximum quantity allowed for a single cart entry.
	MaxQuantityPerItem = 100
	// MaxItemsPerCart is the maximum number of distinct products allowed in a cart.
	MaxItemsPerCart = 50
)

// CartLine is a cart entry joined with its catalog product and current
// discounted pricing.
type CartLine struct {
	Product   *domain.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice int64           `json:"unit_price"`
	LineTotal int64           `json:"line_total"`
}

// CartView is the priced projection of a cart returned to callers. Prices
// reflect the catalog at read time; unavailable products are listed with a
// nil Product and a zero price.
type CartView struct {
	CartID        string     `json:"cart_id"`
	UserID        string     `json:"user_id"`
	Items         []CartLine `json:"items"`
	TotalQuantity int        `json:"total_quantity"`
	TotalAmount   int64      `json:"total_amount"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CartService implements cart reads and mutations. The store holds only
// product references and quantities; prices come from the catalog on every
// read.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
	cartTTL  time.Duration
}

// NewCartService creates a new cart service.
func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger, cartTTL time.Duration) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		logger:   logger,
		cartTTL:  cartTTL,
	}
}

// GetCart returns the priced view of the user's cart. A user without a cart
// gets an empty view.
func (s *CartService) GetCart(ctx context.Context, userID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.buildView(ctx, s.newEmptyCart(userID))
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}

	return s.buildView(ctx, cart)
}

// AddItem adds a product to the user's cart, merging quantities when the
// product is already present. Optimistic locking keeps concurrent writers
// from losing updates.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if quantity <= 0 {
		return nil, apperrors.InvalidInput("quantity must be greater than 0")
	}
	if quantity > MaxQuantityPerItem {
		return nil, apperrors.InvalidInput(fmt.Sprintf("quantity must not exceed %d", MaxQuantityPerItem))
	}

	// The cart stores only a reference, but the product must exist now.
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("product", productID)
		}
		return nil, fmt.Errorf("check product: %w", err)
	}

	cart, err := s.getOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	expectedVersion := cart.Version

	if i := cart.FindEntryIndex(productID); i >= 0 {
		newQty := cart.Items[i].Quantity + quantity
		if newQty > MaxQuantityPerItem {
			return nil, apperrors.InvalidInput(fmt.Sprintf("combined quantity must not exceed %d", MaxQuantityPerItem))
		}
		cart.Items[i].Quantity = newQty
	} else {
		if len(cart.Items) >= MaxItemsPerCart {
			return nil, apperrors.InvalidInput(fmt.Sprintf("cart must not contain more than %d items", MaxItemsPerCart))
		}
		cart.Items = append(cart.Items, domain.CartEntry{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	if err := s.save(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item added to cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
		slog.Int("quantity", quantity),
	)

	return s.buildView(ctx, cart)
}

// RemoveItem removes a product from the cart entirely.
func (s *CartService) RemoveItem(ctx context.Context, userID, productID string) (*CartView, error) {
	if userID == "" {
		return nil, apperrors.InvalidInput("user id is required")
	}
	if productID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("cart item", productID)
		}
		return nil, fmt.Errorf("get cart for remove: %w", err)
	}

	expectedVersion := cart.Version

	i := cart.FindEntryIndex(productID)
	if i < 0 {
		return nil, apperrors.NotFound("cart item", productID)
	}
	cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)

	if err := s.save(ctx, cart, expectedVersion); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "item removed from cart",
		slog.String("user_id", userID),
		slog.String("product_id", productID),
	)

	return s.buildView(ctx, cart)
}

// ClearCart removes the user's cart unconditionally.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperrors.InvalidInput("user id is required")
	}

	if err := s.carts.Delete(ctx, userID); err != nil {
		return fmt.Errorf("delete cart: %w", err)
	}

	s.logger.InfoContext(ctx, "cart cleared",
		slog.String("user_id", userID),
	)

	return nil
}

// save bumps the version, refreshes the TTL window, and writes the cart at
// the version we read it.
func (s *CartService) save(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	now := time.Now().UTC()
	cart.Version = expectedVersion + 1
	cart.UpdatedAt = now
	cart.ExpiresAt = now.Add(s.cartTTL)

	if err := s.carts.SaveIfVersion(ctx, cart, expectedVersion); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func (s *CartService) getOrCreateCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return s.newEmptyCart(userID), nil
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	return cart, nil
}

func (s *CartService) newEmptyCart(userID string) *domain.Cart {
	now := time.Now().UTC()
	return &domain.Cart{
		ID:        uuid.New().String(),
		UserID:    userID,
		Items:     []domain.CartEntry{},
		Version:   0,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(s.cartTTL),
	}
}

// buildView joins cart entries with catalog products and computes discounted
// line totals.
func (s *CartService) buildView(ctx context.Context, cart *domain.Cart) (*CartView, error) {
	view := &CartView{
		CartID:    cart.ID,
		UserID:    cart.UserID,
		Items:     make([]CartLine, 0, len(cart.Items)),
		UpdatedAt: cart.UpdatedAt,
	}

	if len(cart.Items) == 0 {
		return view, nil
	}

	productIDs := make([]string, len(cart.Items))
	for i, entry := range cart.Items {
		productIDs[i] = entry.ProductID
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	for _, entry := range cart.Items {
		line := CartLine{Quantity: entry.Quantity}
		if product, ok := products[entry.ProductID]; ok {
			line.Product = product
			line.UnitPrice = product.DiscountedPrice()
			line.LineTotal = line.UnitPrice * int64(entry.Quantity)
		}
		view.Items = append(view.Items, line)
		view.TotalQuantity += entry.Quantity
		view.TotalAmount += line.LineTotal
	}

	return view, nil
}
