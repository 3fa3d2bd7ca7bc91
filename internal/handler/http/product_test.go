package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

func TestListProductsEndpoint_Public(t *testing.T) {
	env := newTestEnv()

	env.products.On("List", mock.Anything, 20, 0).Return([]domain.Product{
		{ID: testProdID, Name: "Leather Bag", Price: 10000, Discount: 10},
	}, 1, nil)

	rec := env.doRequest(t, http.MethodGet, "/products/", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Products fetched successfully", body["message"])

	products := body["products"].(map[string]any)
	assert.Equal(t, float64(1), products["total_count"])
}

func TestListProductsEndpoint_Pagination(t *testing.T) {
	env := newTestEnv()

	env.products.On("List", mock.Anything, 5, 10).Return([]domain.Product{}, 42, nil)

	rec := env.doRequest(t, http.MethodGet, "/products/?page=3&per_page=5", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	products := body["products"].(map[string]any)
	assert.Equal(t, float64(42), products["total_count"])
	assert.Equal(t, float64(3), products["page"])

	env.products.AssertExpectations(t)
}

func TestGetProductEndpoint(t *testing.T) {
	env := newTestEnv()

	env.products.On("GetByID", mock.Anything, testProdID).Return(&domain.Product{
		ID: testProdID, Name: "Leather Bag", Price: 10000,
	}, nil)

	rec := env.doRequest(t, http.MethodGet, "/products/"+testProdID, "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestGetProductEndpoint_NotFound(t *testing.T) {
	env := newTestEnv()

	env.products.On("GetByID", mock.Anything, testProdID).
		Return(nil, apperrors.NotFound("product", testProdID))

	rec := env.doRequest(t, http.MethodGet, "/products/"+testProdID, "", nil)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateProductEndpoint_RequiresAuth(t *testing.T) {
	env := newTestEnv()

	rec := env.doRequest(t, http.MethodPost, "/products/", "", map[string]any{
		"name":  "Leather Bag",
		"price": 10000,
	})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateProductEndpoint_RequiresAdmin(t *testing.T) {
	env := newTestEnv()

	rec := env.doRequest(t, http.MethodPost, "/products/", env.userToken(t), map[string]any{
		"name":  "Leather Bag",
		"price": 10000,
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCreateProductEndpoint_Admin(t *testing.T) {
	env := newTestEnv()

	env.products.On("Create", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	rec := env.doRequest(t, http.MethodPost, "/products/", env.adminToken(t), map[string]any{
		"name":     "Leather Bag",
		"price":    10000,
		"discount": 10,
		"bg_color": "#f5f5dc",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product created successfully", body["message"])

	env.products.AssertExpectations(t)
}

func TestUpdateProductEndpoint_Admin(t *testing.T) {
	env := newTestEnv()

	existing := &domain.Product{ID: testProdID, Name: "Leather Bag", Price: 10000}
	env.products.On("GetByID", mock.Anything, testProdID).Return(existing, nil)
	env.products.On("Update", mock.Anything, mock.AnythingOfType("*domain.Product")).Return(nil)

	rec := env.doRequest(t, http.MethodPut, "/products/"+testProdID, env.adminToken(t), map[string]any{
		"price": 12000,
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	product := body["product"].(map[string]any)
	assert.Equal(t, float64(12000), product["price"])
}

func TestDeleteProductEndpoint_Admin(t *testing.T) {
	env := newTestEnv()

	env.products.On("Delete", mock.Anything, testProdID).Return(nil)

	rec := env.doRequest(t, http.MethodDelete, "/products/"+testProdID, env.adminToken(t), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Product deleted successfully", body["message"])
}
