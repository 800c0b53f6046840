package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aldermoor/storefront/internal/repository"
	"github.com/aldermoor/storefront/internal/service"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// ProductHandler handles HTTP requests for catalog endpoints.
type ProductHandler struct {
	products *service.ProductService
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a catalog item.
type CreateProductRequest struct {
	Name          string   `json:"name" validate:"required,min=1,max=200"`
	Description   string   `json:"description" validate:"omitempty,max=5000"`
	Thumbnail     string   `json:"thumbnail" validate:"omitempty,url"`
	Price         float64  `json:"price" validate:"gte=0"`
	AffiliateLink string   `json:"affiliate_link" validate:"omitempty,url"`
	Categories    []string `json:"categories" validate:"required,min=1,dive,min=1,max=100"`
	Tags          []string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
}

// UpdateProductRequest is the JSON request body for a partial product update.
type UpdateProductRequest struct {
	Name          *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string   `json:"description" validate:"omitempty,max=5000"`
	Thumbnail     *string   `json:"thumbnail" validate:"omitempty,url"`
	Price         *float64  `json:"price" validate:"omitempty,gte=0"`
	AffiliateLink *string   `json:"affiliate_link" validate:"omitempty,url"`
	Categories    *[]string `json:"categories" validate:"omitempty,min=1,dive,min=1,max=100"`
	Tags          *[]string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
}

func productFilterFromRequest(r *http.Request) repository.ProductFilter {
	q := r.URL.Query()

	filter := repository.ProductFilter{
		Search:   q.Get("search"),
		Category: q.Get("category"),
	}

	if v := q.Get("min_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			filter.MinPrice = &f
		}
	}
	if v := q.Get("max_price"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			filter.MaxPrice = &f
		}
	}

	return filter
}

// --- Handlers ---

// List handles GET /api/v1/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := productFilterFromRequest(r)

	products, total, err := h.products.ListProducts(r.Context(), filter, params)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: pagination.NewResult(products, total, params)})
}

// Get handles GET /api/v1/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "product id is required")
		return
	}

	product, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// Create handles POST /api/v1/products (admin)
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.products.CreateProduct(r.Context(), service.CreateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Thumbnail:     req.Thumbnail,
		Price:         req.Price,
		AffiliateLink: req.AffiliateLink,
		Categories:    req.Categories,
		Tags:          req.Tags,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: product})
}

// Update handles PUT /api/v1/products/{id} (admin)
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "product id is required")
		return
	}

	var req UpdateProductRequest
	if !decodeBody(w, r, &req) {
		return
	}

	product, err := h.products.UpdateProduct(r.Context(), id, service.UpdateProductInput{
		Name:          req.Name,
		Description:   req.Description,
		Thumbnail:     req.Thumbnail,
		Price:         req.Price,
		AffiliateLink: req.AffiliateLink,
		Categories:    req.Categories,
		Tags:          req.Tags,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: product})
}

// Delete handles DELETE /api/v1/products/{id} (admin)
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "product id is required")
		return
	}

	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"id": id, "status": "deleted"},
	})
}
