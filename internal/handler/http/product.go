package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ironabhi05/scatch-backend/internal/domain"
	"github.com/ironabhi05/scatch-backend/internal/service"
	"github.com/ironabhi05/scatch-backend/pkg/httputil"
	"github.com/ironabhi05/scatch-backend/pkg/pagination"
	"github.com/ironabhi05/scatch-backend/pkg/validator"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Name       string `json:"name" validate:"required,min=2"`
	Price      int64  `json:"price" validate:"required,gte=0"`
	Discount   int    `json:"discount" validate:"gte=0,lte=100"`
	Image      string `json:"image"`
	BgColor    string `json:"bg_color"`
	PanelColor string `json:"panel_color"`
	TextColor  string `json:"text_color"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
type UpdateProductRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=2"`
	Price      *int64  `json:"price" validate:"omitempty,gte=0"`
	Discount   *int    `json:"discount" validate:"omitempty,gte=0,lte=100"`
	Image      *string `json:"image"`
	BgColor    *string `json:"bg_color"`
	PanelColor *string `json:"panel_color"`
	TextColor  *string `json:"text_color"`
}

// --- Response envelopes ---

type productResponse struct {
	Message string          `json:"message"`
	Product *domain.Product `json:"product"`
}

type productsResponse struct {
	Message  string                            `json:"message"`
	Products pagination.Result[domain.Product] `json:"products"`
}

// --- Handlers ---

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)

	products, total, err := h.service.List(r.Context(), params)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productsResponse{
		Message:  "Products fetched successfully",
		Products: pagination.NewResult(products, total, params),
	})
}

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	product, err := h.service.Get(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{
		Message: "Product fetched successfully",
		Product: product,
	})
}

// Create handles POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.Create(r.Context(), service.CreateProductInput{
		Name:       req.Name,
		Price:      req.Price,
		Discount:   req.Discount,
		Image:      req.Image,
		BgColor:    req.BgColor,
		PanelColor: req.PanelColor,
		TextColor:  req.TextColor,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, productResponse{
		Message: "Product created successfully",
		Product: product,
	})
}

// Update handles PUT /products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req UpdateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	product, err := h.service.Update(r.Context(), id.String(), service.UpdateProductInput{
		Name:       req.Name,
		Price:      req.Price,
		Discount:   req.Discount,
		Image:      req.Image,
		BgColor:    req.BgColor,
		PanelColor: req.PanelColor,
		TextColor:  req.TextColor,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, productResponse{
		Message: "Product updated successfully",
		Product: product,
	})
}

// Delete handles DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id.String()); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Product deleted successfully")
}
