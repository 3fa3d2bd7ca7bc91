package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/pkg/database"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	pool database.DBTX
}

// NewOrderRepository creates a PostgreSQL-backed order repository.
func NewOrderRepository(pool database.DBTX) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts an order and its items atomically. The unique constraint on
// cart_snapshot rejects a second order placed from the same cart state.
func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	orderQuery := `
		INSERT INTO orders (id, user_id, total_amount, total_quantity, shipping_charge, payment_method,
			address_fullname, address_phone, address_line, address_city, address_postal, address_country,
			cart_snapshot, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	_, err = tx.Exec(ctx, orderQuery,
		o.ID,
		o.UserID,
		o.TotalAmount,
		o.TotalQuantity,
		o.ShippingCharge,
		o.PaymentMethod,
		o.Address.FullName,
		o.Address.Phone,
		o.Address.AddressLine,
		o.Address.City,
		o.Address.PostalCode,
		o.Address.Country,
		o.CartSnapshot,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperrors.Conflict("An order for this cart has already been placed")
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `
		INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	for _, item := range o.Items {
		_, err = tx.Exec(ctx, itemQuery,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Quantity,
			item.UnitPrice,
			item.Status,
			item.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// Items and their product rows are folded into one JSONB array per order so
// a single query serves the whole aggregate.
const orderItemsAgg = `
	COALESCE(
		JSONB_AGG(
			JSONB_BUILD_OBJECT(
				'id', oi.id,
				'order_id', oi.order_id,
				'product_id', oi.product_id,
				'quantity', oi.quantity,
				'unit_price', oi.unit_price,
				'status', oi.status,
				'updated_at', oi.updated_at,
				'product', CASE WHEN p.id IS NULL THEN NULL ELSE JSONB_BUILD_OBJECT(
					'id', p.id,
					'name', p.name,
					'price', p.price,
					'discount', p.discount,
					'image', p.image,
					'bg_color', p.bg_color,
					'panel_color', p.panel_color,
					'text_color', p.text_color,
					'created_at', p.created_at,
					'updated_at', p.updated_at
				) END
			) ORDER BY oi.id
		) FILTER (WHERE oi.id IS NOT NULL),
		'[]'::jsonb
	)`

const orderColumns = `
	o.id, o.user_id, o.total_amount, o.total_quantity, o.shipping_charge, o.payment_method,
	o.address_fullname, o.address_phone, o.address_line, o.address_city, o.address_postal, o.address_country,
	o.cart_snapshot, o.created_at, o.updated_at`

// GetByID retrieves an order with its items and resolved products.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `, ` + orderItemsAgg + ` AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE o.id = $1
		GROUP BY o.id`

	return r.scanOrder(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUser retrieves an order only if it belongs to the given user.
func (r *OrderRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	query := `
		SELECT ` + orderColumns + `, ` + orderItemsAgg + ` AS items
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE o.id = $1 AND o.user_id = $2
		GROUP BY o.id`

	return r.scanOrder(r.pool.QueryRow(ctx, query, id, userID))
}

func (r *OrderRepository) scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o         domain.Order
		itemsJSON []byte
	)

	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.TotalQuantity, &o.ShippingCharge, &o.PaymentMethod,
		&o.Address.FullName, &o.Address.Phone, &o.Address.AddressLine, &o.Address.City,
		&o.Address.PostalCode, &o.Address.Country,
		&o.CartSnapshot, &o.CreatedAt, &o.UpdatedAt,
		&itemsJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan order: %w", err)
	}

	if err := unmarshalItems(itemsJSON, &o.Items); err != nil {
		return nil, err
	}

	return &o, nil
}

func unmarshalItems(itemsJSON []byte, items *[]domain.OrderItem) error {
	if len(itemsJSON) == 0 || string(itemsJSON) == "null" {
		*items = []domain.OrderItem{}
		return nil
	}
	if err := json.Unmarshal(itemsJSON, items); err != nil {
		return fmt.Errorf("unmarshal order items: %w", err)
	}
	if *items == nil {
		*items = []domain.OrderItem{}
	}
	return nil
}

// ListByUser returns the user's orders, newest first, with the total count.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	query := `
		SELECT ` + orderColumns + `, ` + orderItemsAgg + ` AS items,
			count(*) OVER() AS total_count
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		WHERE o.user_id = $1
		GROUP BY o.id
		ORDER BY o.created_at DESC
		LIMIT $2 OFFSET $3`

	return r.listOrders(ctx, query, false, userID, limit, offset)
}

// ListAll returns all orders with user summaries, newest first.
func (r *OrderRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Order, int, error) {
	query := `
		SELECT ` + orderColumns + `, ` + orderItemsAgg + ` AS items,
			count(*) OVER() AS total_count,
			u.fullname, u.email, u.contact
		FROM orders o
		LEFT JOIN order_items oi ON o.id = oi.order_id
		LEFT JOIN products p ON oi.product_id = p.id
		JOIN users u ON o.user_id = u.id
		GROUP BY o.id, u.fullname, u.email, u.contact
		ORDER BY o.created_at DESC
		LIMIT $1 OFFSET $2`

	return r.listOrders(ctx, query, true, limit, offset)
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, withUser bool, args ...any) ([]domain.Order, int, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var totalCount int
	orders := make([]domain.Order, 0)

	for rows.Next() {
		var (
			o         domain.Order
			itemsJSON []byte
			user      domain.UserSummary
		)

		dest := []any{
			&o.ID, &o.UserID, &o.TotalAmount, &o.TotalQuantity, &o.ShippingCharge, &o.PaymentMethod,
			&o.Address.FullName, &o.Address.Phone, &o.Address.AddressLine, &o.Address.City,
			&o.Address.PostalCode, &o.Address.Country,
			&o.CartSnapshot, &o.CreatedAt, &o.UpdatedAt,
			&itemsJSON, &totalCount,
		}
		if withUser {
			dest = append(dest, &user.Fullname, &user.Email, &user.Contact)
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}

		if err := unmarshalItems(itemsJSON, &o.Items); err != nil {
			return nil, 0, err
		}
		if withUser {
			u := user
			o.User = &u
		}

		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}

	return orders, totalCount, nil
}

// UpdateItemStatus moves a single order item from one status to another.
// The current status is part of the predicate so a concurrent transition
// between the caller's read and this write cannot be overwritten.
func (r *OrderRepository) UpdateItemStatus(ctx context.Context, itemID, fromStatus, toStatus string) error {
	query := `UPDATE order_items SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`

	ct, err := r.pool.Exec(ctx, query, toStatus, time.Now().UTC(), itemID, fromStatus)
	if err != nil {
		return fmt.Errorf("update item status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.Conflict("Order item was modified, please retry")
	}
	return nil
}

// UpdateItemStatuses moves multiple order items from one status to another.
// Any item no longer in fromStatus fails the whole batch with a conflict.
func (r *OrderRepository) UpdateItemStatuses(ctx context.Context, itemIDs []string, fromStatus, toStatus string) error {
	if len(itemIDs) == 0 {
		return nil
	}

	query := `UPDATE order_items SET status = $1, updated_at = $2 WHERE id = ANY($3) AND status = $4`

	ct, err := r.pool.Exec(ctx, query, toStatus, time.Now().UTC(), itemIDs, fromStatus)
	if err != nil {
		return fmt.Errorf("update item statuses: %w", err)
	}
	if int(ct.RowsAffected()) != len(itemIDs) {
		return apperrors.Conflict("Order was modified, please retry")
	}
	return nil
}
