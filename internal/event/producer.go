package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	pkgkafka "github.com/ironabhi05/scatch-backend/pkg/kafka"
	"github.com/ironabhi05/scatch-backend/pkg/logger"
)

// Kafka topics for domain events.
const (
	TopicOrderPlaced            = "scatch.order.placed"
	TopicOrderCancelled         = "scatch.order.cancelled"
	TopicOrderItemStatusChanged = "scatch.order.item_status_changed"
	TopicUserRegistered         = "scatch.user.registered"
	TopicPasswordOTPIssued      = "scatch.user.password_otp_issued"
)

// Aggregate type constants.
const (
	AggregateTypeOrder = "order"
	AggregateTypeUser  = "user"
)

// Source identifier stamped on every published event.
const Source = "scatch-backend"

// OrderPlacedData is the payload for an order.placed event.
type OrderPlacedData struct {
	OrderID        string          `json:"order_id"`
	UserID         string          `json:"user_id"`
	Items          []OrderItemData `json:"items"`
	TotalAmount    int64           `json:"total_amount"`
	TotalQuantity  int             `json:"total_quantity"`
	ShippingCharge int64           `json:"shipping_charge"`
	PaymentMethod  string          `json:"payment_method"`
}

// OrderItemData is the event payload for a single order line.
type OrderItemData struct {
	ItemID    string `json:"item_id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// OrderCancelledData is the payload for an order.cancelled event.
type OrderCancelledData struct {
	OrderID string   `json:"order_id"`
	UserID  string   `json:"user_id"`
	ItemIDs []string `json:"item_ids"`
}

// ItemStatusChangedData is the payload for an order.item_status_changed event.
type ItemStatusChangedData struct {
	OrderID   string `json:"order_id"`
	ItemID    string `json:"item_id"`
	OldStatus string `json:"old_status"`
	NewStatus string `json:"new_status"`
}

// UserRegisteredData is the payload for a user.registered event.
type UserRegisteredData struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Fullname string `json:"fullname"`
	Role     string `json:"role"`
}

// PasswordOTPIssuedData is the payload for a user.password_otp_issued event.
// Downstream delivery (email) consumes this; the code itself is included so
// the notification worker can send it.
type PasswordOTPIssuedData struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Code      string `json:"code"`
	ExpiresAt int64  `json:"expires_at"`
}

// Producer publishes domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates an event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	return nil
}

// PublishOrderPlaced publishes an order.placed event.
func (p *Producer) PublishOrderPlaced(ctx context.Context, order *domain.Order) error {
	items := make([]OrderItemData, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemData{
			ItemID:    item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
	}

	data := OrderPlacedData{
		OrderID:        order.ID,
		UserID:         order.UserID,
		Items:          items,
		TotalAmount:    order.TotalAmount,
		TotalQuantity:  order.TotalQuantity,
		ShippingCharge: order.ShippingCharge,
		PaymentMethod:  order.PaymentMethod,
	}

	if err := p.publish(ctx, TopicOrderPlaced, order.ID, AggregateTypeOrder, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published order.placed event",
		slog.String("order_id", order.ID),
		slog.String("user_id", order.UserID),
	)
	return nil
}

// PublishOrderCancelled publishes an order.cancelled event.
func (p *Producer) PublishOrderCancelled(ctx context.Context, orderID, userID string, itemIDs []string) error {
	data := OrderCancelledData{OrderID: orderID, UserID: userID, ItemIDs: itemIDs}

	if err := p.publish(ctx, TopicOrderCancelled, orderID, AggregateTypeOrder, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published order.cancelled event",
		slog.String("order_id", orderID),
		slog.Int("items", len(itemIDs)),
	)
	return nil
}

// PublishItemStatusChanged publishes an order.item_status_changed event.
func (p *Producer) PublishItemStatusChanged(ctx context.Context, orderID, itemID, oldStatus, newStatus string) error {
	data := ItemStatusChangedData{
		OrderID:   orderID,
		ItemID:    itemID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
	}

	if err := p.publish(ctx, TopicOrderItemStatusChanged, orderID, AggregateTypeOrder, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published order.item_status_changed event",
		slog.String("order_id", orderID),
		slog.String("item_id", itemID),
		slog.String("new_status", newStatus),
	)
	return nil
}

// PublishUserRegistered publishes a user.registered event.
func (p *Producer) PublishUserRegistered(ctx context.Context, user *domain.User) error {
	data := UserRegisteredData{
		UserID:   user.ID,
		Email:    user.Email,
		Fullname: user.Fullname,
		Role:     user.Role,
	}

	if err := p.publish(ctx, TopicUserRegistered, user.ID, AggregateTypeUser, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published user.registered event",
		slog.String("user_id", user.ID),
	)
	return nil
}

// PublishPasswordOTPIssued publishes a user.password_otp_issued event.
func (p *Producer) PublishPasswordOTPIssued(ctx context.Context, userID, email, code string, expiresAt int64) error {
	data := PasswordOTPIssuedData{
		UserID:    userID,
		Email:     email,
		Code:      code,
		ExpiresAt: expiresAt,
	}

	if err := p.publish(ctx, TopicPasswordOTPIssued, userID, AggregateTypeUser, data); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "published user.password_otp_issued event",
		slog.String("user_id", userID),
	)
	return nil
}
