package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/service"
	"github.com/ironabhi05/scatch-backend/pkg/httputil"
	"github.com/ironabhi05/scatch-backend/pkg/middleware"
	"github.com/ironabhi05/scatch-backend/pkg/pagination"
	"github.com/ironabhi05/scatch-backend/pkg/validator"
)

// OrderHandler handles HTTP requests for order endpoints.
type OrderHandler struct {
	service *service.OrderService
	logger  *slog.Logger
}

// NewOrderHandler creates a new order HTTP handler.
func NewOrderHandler(svc *service.OrderService, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddressRequest is the JSON shipping address embedded in order placement.
type AddressRequest struct {
	FullName    string `json:"full_name" validate:"required"`
	Phone       string `json:"phone" validate:"required"`
	AddressLine string `json:"address_line" validate:"required"`
	City        string `json:"city" validate:"required"`
	PostalCode  string `json:"postal_code" validate:"required"`
	Country     string `json:"country" validate:"required"`
}

// PlaceOrderRequest is the JSON request body for placing an order from the cart.
type PlaceOrderRequest struct {
	Address       AddressRequest `json:"address" validate:"required"`
	PaymentMethod string         `json:"payment_method" validate:"omitempty,oneof=COD Online"`
}

// UpdateItemStatusRequest is the JSON request body for an admin item status update.
type UpdateItemStatusRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Status string `json:"status" validate:"required"`
}

// --- Response envelopes ---

type orderResponse struct {
	Message string        `json:"message"`
	Order   *domain.Order `json:"order"`
}

type ordersResponse struct {
	Message string                          `json:"message"`
	Orders  pagination.Result[domain.Order] `json:"orders"`
}

// --- Handlers ---

// PlaceOrder handles POST /orders/place-order
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req PlaceOrderRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), service.PlaceOrderInput{
		UserID: middleware.UserIDFromContext(r.Context()),
		Address: domain.Address{
			FullName:    req.Address.FullName,
			Phone:       req.Address.Phone,
			AddressLine: req.Address.AddressLine,
			City:        req.Address.City,
			PostalCode:  req.Address.PostalCode,
			Country:     req.Address.Country,
		},
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, orderResponse{
		Message: "Order placed successfully from cart",
		Order:   order,
	})
}

// MyOrders handles GET /orders/my-orders
func (h *OrderHandler) MyOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	orders, total, err := h.service.GetUserOrders(r.Context(), middleware.UserIDFromContext(r.Context()), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ordersResponse{
		Message: "Orders fetched successfully",
		Orders:  pagination.NewResult(orders, total, params),
	})
}

// CancelOrder handles POST /orders/cancel/{orderID}
func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	order, err := h.service.CancelOrder(r.Context(), orderID.String(), middleware.UserIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderResponse{
		Message: "Order cancelled successfully",
		Order:   order,
	})
}

// AllOrders handles GET /orders/admin/all
func (h *OrderHandler) AllOrders(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	orders, total, err := h.service.GetAllOrders(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ordersResponse{
		Message: "All orders fetched successfully",
		Orders:  pagination.NewResult(orders, total, params),
	})
}

// UpdateItemStatus handles POST /orders/admin/{orderID}/status
func (h *OrderHandler) UpdateItemStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := httputil.ParseUUID(w, chi.URLParam(r, "orderID"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateItemStatusRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	order, err := h.service.UpdateItemStatus(r.Context(), service.UpdateItemStatusInput{
		OrderID: orderID.String(),
		ItemID:  req.ItemID,
		Status:  req.Status,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, orderResponse{
		Message: "Order item status updated successfully",
		Order:   order,
	})
}
