package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ironabhi05/scatch-backend/internal/auth"
	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/event"
	"github.com/ironabhi05/scatch-backend/internal/service"
	"github.com/ironabhi05/scatch-backend/pkg/health"
	pkgkafka "github.com/ironabhi05/scatch-backend/pkg/kafka"
	"github.com/ironabhi05/scatch-backend/pkg/middleware"
)

// --- Mock Repositories ---

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *mockUserRepository) SetOTP(ctx context.Context, userID, otpHash string, expiresAt int64) error {
	args := m.Called(ctx, userID, otpHash, expiresAt)
	return args.Error(0)
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]*domain.Product), args.Error(1)
}

func (m *mockProductRepository) SearchByName(ctx context.Context, name string) (*domain.Product, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Product), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, limit, offset int) ([]domain.Product, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepository) Update(ctx context.Context, product *domain.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *mockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) GetByIDForUser(ctx context.Context, id, userID string) (*domain.Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockOrderRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Order, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) ListAll(ctx context.Context, limit, offset int) ([]domain.Order, int, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]domain.Order), args.Int(1), args.Error(2)
}

func (m *mockOrderRepository) UpdateItemStatus(ctx context.Context, itemID, fromStatus, toStatus string) error {
	args := m.Called(ctx, itemID, fromStatus, toStatus)
	return args.Error(0)
}

func (m *mockOrderRepository) UpdateItemStatuses(ctx context.Context, itemIDs []string, fromStatus, toStatus string) error {
	args := m.Called(ctx, itemIDs, fromStatus, toStatus)
	return args.Error(0)
}

type mockCartRepository struct {
	mock.Mock
}

func (m *mockCartRepository) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Cart), args.Error(1)
}

func (m *mockCartRepository) SaveIfVersion(ctx context.Context, cart *domain.Cart, expectedVersion int) error {
	args := m.Called(ctx, cart, expectedVersion)
	return args.Error(0)
}

func (m *mockCartRepository) DeleteIfVersion(ctx context.Context, userID string, expectedVersion int) error {
	args := m.Called(ctx, userID, expectedVersion)
	return args.Error(0)
}

func (m *mockCartRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Test Environment ---

// Stable identifiers reused across handler tests.
const (
	testUserID   = "7b6a3a86-3f51-4a3b-9c5d-111111111111"
	testAdminID  = "7b6a3a86-3f51-4a3b-9c5d-222222222222"
	testOrderID  = "550e8400-e29b-41d4-a716-446655440001"
	testItemID   = "550e8400-e29b-41d4-a716-446655440010"
	testProdID   = "550e8400-e29b-41d4-a716-446655440020"
	testShipping = int64(1000)
)

type testEnv struct {
	users    *mockUserRepository
	products *mockProductRepository
	orders   *mockOrderRepository
	carts    *mockCartRepository
	jwt      *auth.JWTManager
	router   http.Handler
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testEventProducer() *event.Producer {
	logger := testLogger()
	// Points at a broker that does not exist; publish failures are swallowed.
	kafkaCfg := pkgkafka.DefaultProducerConfig([]string{"localhost:19092"})
	return event.NewProducer(pkgkafka.NewProducer(kafkaCfg, logger), logger)
}

func newTestEnv() *testEnv {
	logger := testLogger()
	jwtManager := auth.NewJWTManager("test-secret-key-for-handler-tests", time.Hour)
	producer := testEventProducer()

	env := &testEnv{
		users:    new(mockUserRepository),
		products: new(mockProductRepository),
		orders:   new(mockOrderRepository),
		carts:    new(mockCartRepository),
		jwt:      jwtManager,
	}

	env.router = NewRouter(RouterConfig{
		UserService:    service.NewUserService(env.users, jwtManager, producer, 10*time.Minute, logger),
		ProductService: service.NewProductService(env.products, logger),
		CartService:    service.NewCartService(env.carts, env.products, logger, 72*time.Hour),
		OrderService:   service.NewOrderService(env.orders, env.products, env.carts, producer, testShipping, logger),
		ChatService:    service.NewChatService(env.products, logger),
		JWTManager:     jwtManager,
		HealthHandler:  health.NewHandler(),
		Logger:         logger,
		CORS:           middleware.DefaultCORSConfig(),
		CookieTTL:      time.Hour,
	})

	return env
}

func (e *testEnv) userToken(t *testing.T) string {
	t.Helper()
	token, err := e.jwt.Generate(testUserID, "john@example.com", domain.RoleUser)
	require.NoError(t, err)
	return token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.jwt.Generate(testAdminID, "admin@example.com", domain.RoleAdmin)
	require.NoError(t, err)
	return token
}

// doRequest performs a request against the router, attaching the bearer token
// and JSON-encoding the body when present.
func (e *testEnv) doRequest(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(buf)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}
