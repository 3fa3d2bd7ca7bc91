package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ironabhi05/scatch-backend/pkg/errors"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"abc"}`, rec.Body.String())
}

func TestWriteError_AppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/orders/place-order", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, apperrors.EmptyCart(), discardLogger())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Cart is empty", body.Message)
	assert.Equal(t, "EMPTY_CART", body.Error)
}

func TestWriteError_NotFound(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/products/123", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, apperrors.NotFound("product", "123"), discardLogger())

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWriteError_InternalIsOpaque(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/orders/my-orders", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, errors.New("pq: connection refused"), discardLogger())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Something went wrong", body.Message)
	assert.Empty(t, body.Error)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestWriteError_SentinelMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{apperrors.ErrNotFound, http.StatusNotFound},
		{apperrors.ErrInvalidInput, http.StatusBadRequest},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrForbidden, http.StatusForbidden},
		{apperrors.ErrConflict, http.StatusConflict},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		WriteError(rec, req, tt.err, discardLogger())
		assert.Equal(t, tt.status, rec.Code, "error %v", tt.err)
	}
}

func TestParseUUID_Valid(t *testing.T) {
	rec := httptest.NewRecorder()
	want := uuid.New()

	got, ok := ParseUUID(rec, want.String())

	assert.True(t, ok)
	assert.Equal(t, want, got)
}

func TestParseUUID_Invalid(t *testing.T) {
	rec := httptest.NewRecorder()

	_, ok := ParseUUID(rec, "not-a-uuid")

	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
