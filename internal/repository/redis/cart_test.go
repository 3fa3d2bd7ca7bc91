package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	repo := NewCartRepository(client, 72*time.Hour)
	return repo, mr
}

func sampleCart() *domain.Cart {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &domain.Cart{
		ID:     "cart-001",
		UserID: "user-001",
		Items: []domain.CartEntry{
			{ProductID: "prod-1", Quantity: 2},
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
		ExpiresAt: now.Add(72 * time.Hour),
	}
}

func seedCart(t *testing.T, mr *miniredis.Miniredis, cart *domain.Cart) {
	t.Helper()
	data, err := json.Marshal(cart)
	require.NoError(t, err)
	require.NoError(t, mr.Set("cart:"+cart.UserID, string(data)))
}

func TestCartRepository_Get_Success(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	seedCart(t, mr, cart)

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, got.ID)
	assert.Equal(t, cart.Version, got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "prod-1", got.Items[0].ProductID)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestCartRepository_Get_NotFound(t *testing.T) {
	repo, _ := setupTestRedis(t)

	got, err := repo.Get(context.Background(), "nonexistent-user")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCartRepository_Get_InvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)

	require.NoError(t, mr.Set("cart:user-bad", "{{not-valid-json"))

	got, err := repo.Get(context.Background(), "user-bad")
	assert.Nil(t, got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal cart")
}

func TestCartRepository_SaveIfVersion_NewCart(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	cart.Version = 1

	err := repo.SaveIfVersion(context.Background(), cart, 0)
	require.NoError(t, err)

	assert.True(t, mr.Exists("cart:"+cart.UserID))

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestCartRepository_SaveIfVersion_TTL(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	require.NoError(t, repo.SaveIfVersion(context.Background(), cart, 0))

	ttl := mr.TTL("cart:" + cart.UserID)
	assert.True(t, ttl > 71*time.Hour, "expected TTL > 71h, got %v", ttl)
	assert.True(t, ttl <= 72*time.Hour, "expected TTL <= 72h, got %v", ttl)
}

func TestCartRepository_SaveIfVersion_MatchingVersion(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	seedCart(t, mr, cart)

	updated := *cart
	updated.Items = append(updated.Items, domain.CartEntry{ProductID: "prod-2", Quantity: 1})
	updated.Version = 2

	err := repo.SaveIfVersion(context.Background(), &updated, 1)
	require.NoError(t, err)

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Version)
	assert.Len(t, got.Items, 2)
}

func TestCartRepository_SaveIfVersion_VersionMismatch(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	seedCart(t, mr, cart)

	stale := *cart
	stale.Version = 100

	err := repo.SaveIfVersion(context.Background(), &stale, 99)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	got, err := repo.Get(context.Background(), cart.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Version)
}

func TestCartRepository_SaveIfVersion_NewCartButExists(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	seedCart(t, mr, cart)

	err := repo.SaveIfVersion(context.Background(), cart, 0)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCartRepository_DeleteIfVersion_Match(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	seedCart(t, mr, cart)

	err := repo.DeleteIfVersion(context.Background(), cart.UserID, 1)
	require.NoError(t, err)
	assert.False(t, mr.Exists("cart:"+cart.UserID))
}

func TestCartRepository_DeleteIfVersion_Mismatch(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	seedCart(t, mr, cart)

	err := repo.DeleteIfVersion(context.Background(), cart.UserID, 7)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.True(t, mr.Exists("cart:"+cart.UserID))
}

func TestCartRepository_DeleteIfVersion_AlreadyGone(t *testing.T) {
	repo, _ := setupTestRedis(t)

	err := repo.DeleteIfVersion(context.Background(), "nonexistent-user", 3)
	assert.NoError(t, err)
}

func TestCartRepository_Delete(t *testing.T) {
	repo, mr := setupTestRedis(t)

	cart := sampleCart()
	seedCart(t, mr, cart)

	require.NoError(t, repo.Delete(context.Background(), cart.UserID))
	assert.False(t, mr.Exists("cart:"+cart.UserID))

	// Deleting a missing key is not an error.
	assert.NoError(t, repo.Delete(context.Background(), "nonexistent"))
}
