package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

const keyPrefix = "cart:"

// Retries for the optimistic WATCH loop before giving up.
const maxCASAttempts = 3

// CartRepository implements repository.CartRepository using Redis. Writes go
// through WATCH so concurrent mutations of the same cart serialize on the
// stored version.
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a Redis-backed cart repository with the given
// entry TTL.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cart by user ID.
func (r *CartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	key := keyPrefix + userID

	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound("cart", userID)
		}
		return nil, fmt.Errorf("redis get cart: %w", err)
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		return nil, fmt.Errorf("unmarshal cart: %w", err)
	}

	return &cart, nil
}

// SaveIfVersion persists the cart only if the stored version still matches
// expectedVersion. A zero expectedVersion requires that no cart exists yet.
// Returns a conflict error when another writer got there first.
func (r *CartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	key := keyPrefix + cart.UserID

	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("marshal cart: %w", err)
	}

	txn := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			if expectedVersion != 0 {
				return apperrors.Conflict("Cart was modified, please retry")
			}
		case err != nil:
			return fmt.Errorf("redis get cart: %w", err)
		default:
			var current domain.Cart
			if err := json.Unmarshal(stored, &current); err != nil {
				return fmt.Errorf("unmarshal stored cart: %w", err)
			}
			if current.Version != expectedVersion {
				return apperrors.Conflict("Cart was modified, please retry")
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxCASAttempts; i++ {
		err := r.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return apperrors.Conflict("Cart was modified, please retry")
}

// DeleteIfVersion removes the cart only if the stored version still matches
// expectedVersion.
func (r *CartRepository) DeleteIfVersion(ctx context.Context, userID string, expectedVersion int) error {
	key := keyPrefix + userID

	txn := func(tx *redis.Tx) error {
		stored, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			// Already gone, nothing to do.
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis get cart: %w", err)
		}

		var current domain.Cart
		if err := json.Unmarshal(stored, &current); err != nil {
			return fmt.Errorf("unmarshal stored cart: %w", err)
		}
		if current.Version != expectedVersion {
			return apperrors.Conflict("Cart was modified, please retry")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}

	for i := 0; i < maxCASAttempts; i++ {
		err := r.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return apperrors.Conflict("Cart was modified, please retry")
}

// Delete removes a cart unconditionally.
func (r *CartRepository) Delete(ctx context.Context, userID string) error {
	if err := r.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return fmt.Errorf("redis del cart: %w", err)
	}
	return nil
}
