package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aldermoor/storefront/internal/service"
	"github.com/aldermoor/storefront/pkg/middleware"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	wishlists *service.WishlistService
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(wishlists *service.WishlistService) *WishlistHandler {
	return &WishlistHandler{wishlists: wishlists}
}

// WishlistExistsResponse reports whether a product is on the wishlist.
type WishlistExistsResponse struct {
	Exists bool `json:"exists"`
}

// Add handles POST /api/v1/users/wishlist/{productId}
func (h *WishlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeBadRequest(w, "product id is required")
		return
	}

	if err := h.wishlists.Add(r.Context(), userID, productID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{
		Data: map[string]string{"product_id": productID, "status": "added"},
	})
}

// Remove handles DELETE /api/v1/users/wishlist/{productId}
func (h *WishlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeBadRequest(w, "product id is required")
		return
	}

	if err := h.wishlists.Remove(r.Context(), userID, productID); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"product_id": productID, "status": "removed"},
	})
}

// List handles GET /api/v1/users/wishlist
func (h *WishlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	params := pagination.FromRequest(r)

	items, total, err := h.wishlists.List(r.Context(), userID, params)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: pagination.NewResult(items, total, params)})
}

// Exists handles GET /api/v1/users/wishlist/{productId}
func (h *WishlistHandler) Exists(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	productID := chi.URLParam(r, "productId")
	if productID == "" {
		writeBadRequest(w, "product id is required")
		return
	}

	exists, err := h.wishlists.Exists(r.Context(), userID, productID)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: WishlistExistsResponse{Exists: exists}})
}
