package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/event"
	"github.com/ironabhi05/scatch-backend/internal/repository"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
	"github.com/ironabhi05/scatch-backend/pkg/pagination"
)

// OrderService implements the order lifecycle: cart checkout, cancellation,
// and per-item fulfillment transitions.
type OrderService struct {
	orders         repository.OrderRepository
	products       repository.ProductRepository
	carts          repository.CartRepository
	producer       *event.Producer
	shippingCharge int64
	logger         *slog.Logger
}

// NewOrderService creates an order service. shippingCharge is the flat
// per-order fee in minor currency units.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	producer *event.Producer,
	shippingCharge int64,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orders:         orders,
		products:       products,
		carts:          carts,
		producer:       producer,
		shippingCharge: shippingCharge,
		logger:         logger,
	}
}

// PlaceOrderInput holds the parameters for converting a cart into an order.
type PlaceOrderInput struct {
	UserID        string
	Address       domain.Address
	PaymentMethod string
}

// PlaceOrder converts the user's cart into an order. Prices and discounts
// are resolved from the catalog at this moment and frozen into the order.
// The shipping charge is applied once per order. A snapshot of the cart
// identity is recorded so the same cart state converts at most once, even
// under concurrent requests.
func (s *OrderService) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*domain.Order, error) {
	if input.PaymentMethod == "" {
		input.PaymentMethod = domain.PaymentMethodCOD
	}
	if !domain.IsValidPaymentMethod(input.PaymentMethod) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("Invalid payment method %q", input.PaymentMethod))
	}

	cart, err := s.carts.Get(ctx, input.UserID)
	if err != nil {
		if apperrors.HTTPStatus(err) == 404 {
			return nil, apperrors.EmptyCart()
		}
		return nil, fmt.Errorf("get cart: %w", err)
	}
	if cart.IsEmpty() {
		return nil, apperrors.EmptyCart()
	}

	productIDs := make([]string, len(cart.Items))
	for i, entry := range cart.Items {
		productIDs[i] = entry.ProductID
	}

	products, err := s.products.GetByIDs(ctx, productIDs)
	if err != nil {
		return nil, fmt.Errorf("resolve cart products: %w", err)
	}

	now := time.Now().UTC()
	orderID := uuid.New().String()

	var totalAmount int64
	items := make([]domain.OrderItem, 0, len(cart.Items))
	for _, entry := range cart.Items {
		product, ok := products[entry.ProductID]
		if !ok {
			return nil, apperrors.InvalidState(
				fmt.Sprintf("Product %s is no longer available", entry.ProductID))
		}

		unitPrice := product.DiscountedPrice()
		totalAmount += unitPrice * int64(entry.Quantity)

		items = append(items, domain.OrderItem{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: entry.ProductID,
			Quantity:  entry.Quantity,
			UnitPrice: unitPrice,
			Status:    domain.ItemStatusPending,
			UpdatedAt: now,
		})
	}
	totalAmount += s.shippingCharge

	order := &domain.Order{
		ID:             orderID,
		UserID:         input.UserID,
		Items:          items,
		TotalAmount:    totalAmount,
		TotalQuantity:  cart.TotalQuantity(),
		ShippingCharge: s.shippingCharge,
		PaymentMethod:  input.PaymentMethod,
		Address:        input.Address,
		CartSnapshot:   cart.Snapshot(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// Clear the cart at the version we checked out. If another writer bumped
	// it meanwhile their changes survive; the placed order stands either way.
	if err := s.carts.DeleteIfVersion(ctx, input.UserID, cart.Version); err != nil {
		s.logger.WarnContext(ctx, "cart not cleared after order placement",
			slog.String("order_id", order.ID),
			slog.String("user_id", input.UserID),
			slog.String("error", err.Error()),
		)
	}

	if err := s.producer.PublishOrderPlaced(ctx, order); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.placed event",
			slog.String("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		// Event publishing never fails the operation.
	}

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
		slog.Int64("total_amount", order.TotalAmount),
		slog.Int("total_quantity", order.TotalQuantity),
	)

	return order, nil
}

// GetUserOrders returns the user's orders, newest first.
func (s *OrderService) GetUserOrders(ctx context.Context, userID string, params pagination.Params) ([]domain.Order, int, error) {
	orders, total, err := s.orders.ListByUser(ctx, userID, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list user orders: %w", err)
	}
	return orders, total, nil
}

// GetAllOrders returns all orders with user summaries. Admin only; the
// handler enforces the role.
func (s *OrderService) GetAllOrders(ctx context.Context, params pagination.Params) ([]domain.Order, int, error) {
	orders, total, err := s.orders.ListAll(ctx, params.PerPage, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list all orders: %w", err)
	}
	return orders, total, nil
}

// CancelOrder cancels the user's order. Cancellation is only possible while
// every item is still pending; once fulfillment has started the order is
// refused with a reason naming how far it got.
func (s *OrderService) CancelOrder(ctx context.Context, orderID, userID string) (*domain.Order, error) {
	order, err := s.orders.GetByIDForUser(ctx, orderID, userID)
	if err != nil {
		if apperrors.HTTPStatus(err) == 404 {
			return nil, apperrors.NotFoundMsg("Order not found")
		}
		return nil, fmt.Errorf("get order for cancel: %w", err)
	}

	var (
		allCancelled = true
		anyDelivered bool
		anyShipped   bool
		anyStarted   bool
	)
	for _, item := range order.Items {
		if item.Status != domain.ItemStatusCancelled {
			allCancelled = false
		}
		switch item.Status {
		case domain.ItemStatusDelivered:
			anyDelivered = true
		case domain.ItemStatusShipped:
			anyShipped = true
		case domain.ItemStatusConfirmed:
			anyStarted = true
		}
	}

	switch {
	case allCancelled:
		return nil, apperrors.InvalidState("Order is already cancelled")
	case anyDelivered:
		return nil, apperrors.InvalidState("Cannot cancel order because it has already been delivered")
	case anyShipped:
		return nil, apperrors.InvalidState("Cannot cancel order because it has already been shipped. Please contact customer support.")
	case anyStarted:
		return nil, apperrors.InvalidState("Cannot cancel order because it is already being processed")
	}

	itemIDs := make([]string, len(order.Items))
	for i, item := range order.Items {
		itemIDs[i] = item.ID
	}

	if err := s.orders.UpdateItemStatuses(ctx, itemIDs, domain.ItemStatusPending, domain.ItemStatusCancelled); err != nil {
		return nil, fmt.Errorf("cancel order items: %w", err)
	}

	if err := s.producer.PublishOrderCancelled(ctx, orderID, userID, itemIDs); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.cancelled event",
			slog.String("order_id", orderID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order cancelled",
		slog.String("order_id", orderID),
		slog.String("user_id", userID),
		slog.Int("items_cancelled", len(itemIDs)),
	)

	for i := range order.Items {
		order.Items[i].Status = domain.ItemStatusCancelled
	}

	return order, nil
}

// UpdateItemStatusInput holds the parameters for an admin status update on a
// single order item.
type UpdateItemStatusInput struct {
	OrderID string
	ItemID  string
	Status  string
}

// UpdateItemStatus moves one order item to a new status, enforcing the
// forward-only transition graph.
func (s *OrderService) UpdateItemStatus(ctx context.Context, input UpdateItemStatusInput) (*domain.Order, error) {
	if !domain.IsValidItemStatus(input.Status) {
		return nil, apperrors.InvalidStatus(input.Status, domain.ValidItemStatuses())
	}

	order, err := s.orders.GetByID(ctx, input.OrderID)
	if err != nil {
		if apperrors.HTTPStatus(err) == 404 {
			return nil, apperrors.NotFoundMsg("Order not found")
		}
		return nil, fmt.Errorf("get order for status update: %w", err)
	}

	// The selector matches either the item's own id or its product id.
	var item *domain.OrderItem
	for i := range order.Items {
		if order.Items[i].ID == input.ItemID || order.Items[i].ProductID == input.ItemID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		return nil, apperrors.ItemNotFound(input.ItemID)
	}

	if !item.CanTransitionTo(input.Status) {
		return nil, apperrors.InvalidTransition(
			fmt.Sprintf("Cannot change item status from %q to %q", item.Status, input.Status))
	}

	oldStatus := item.Status

	if err := s.orders.UpdateItemStatus(ctx, item.ID, oldStatus, input.Status); err != nil {
		return nil, fmt.Errorf("update item status: %w", err)
	}

	if err := s.producer.PublishItemStatusChanged(ctx, order.ID, item.ID, oldStatus, input.Status); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish order.item_status_changed event",
			slog.String("order_id", order.ID),
			slog.String("item_id", item.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "order item status updated",
		slog.String("order_id", order.ID),
		slog.String("item_id", item.ID),
		slog.String("old_status", oldStatus),
		slog.String("new_status", input.Status),
	)

	item.Status = input.Status
	return order, nil
}
