package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aldermoor/storefront/internal/repository"
	"github.com/aldermoor/storefront/internal/service"
	"github.com/aldermoor/storefront/pkg/middleware"
	"github.com/aldermoor/storefront/pkg/pagination"
)

// PostHandler handles HTTP requests for blog post endpoints.
type PostHandler struct {
	posts *service.PostService
}

// NewPostHandler creates a new post HTTP handler.
func NewPostHandler(posts *service.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// --- Request DTOs ---

// CreatePostRequest is the JSON request body for creating a post.
type CreatePostRequest struct {
	Title   string   `json:"title" validate:"required,min=1,max=300"`
	Content string   `json:"content" validate:"required,min=1"`
	Summary string   `json:"summary" validate:"omitempty,max=1000"`
	Tags    []string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
	Status  string   `json:"status" validate:"omitempty,oneof=draft published"`
}

// UpdatePostRequest is the JSON request body for a partial post update.
type UpdatePostRequest struct {
	Title   *string   `json:"title" validate:"omitempty,min=1,max=300"`
	Content *string   `json:"content" validate:"omitempty,min=1"`
	Summary *string   `json:"summary" validate:"omitempty,max=1000"`
	Tags    *[]string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
	Status  *string   `json:"status" validate:"omitempty,oneof=draft published"`
}

func postFilterFromRequest(r *http.Request) repository.PostFilter {
	q := r.URL.Query()

	// The tag can arrive as a route segment (/posts/tag/{tag}) or a query
	// parameter; the route form wins.
	tag := chi.URLParam(r, "tag")
	if tag == "" {
		tag = q.Get("tag")
	}

	return repository.PostFilter{
		Status:   q.Get("status"),
		AuthorID: q.Get("author_id"),
		Tag:      tag,
		Search:   q.Get("search"),
	}
}

// --- Handlers ---

// List handles GET /api/v1/posts and GET /api/v1/posts/tag/{tag}. Anonymous
// viewers only see published posts; the service scopes draft listings to the
// viewer.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	params := pagination.FromRequest(r)
	filter := postFilterFromRequest(r)

	viewerID := middleware.UserIDFromContext(r.Context())
	viewerRole := middleware.RoleFromContext(r.Context())

	posts, total, err := h.posts.ListPosts(r.Context(), filter, params, viewerID, viewerRole)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: pagination.NewResult(posts, total, params)})
}

// Get handles GET /api/v1/posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "post id is required")
		return
	}

	viewerID := middleware.UserIDFromContext(r.Context())
	viewerRole := middleware.RoleFromContext(r.Context())

	post, err := h.posts.GetPost(r.Context(), id, viewerID, viewerRole)
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: post})
}

// Create handles POST /api/v1/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	authorID := middleware.UserIDFromContext(r.Context())

	var req CreatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.posts.CreatePost(r.Context(), authorID, service.CreatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Summary: req.Summary,
		Tags:    req.Tags,
		Status:  req.Status,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, response{Data: post})
}

// Update handles PUT /api/v1/posts/{id}
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "post id is required")
		return
	}

	editorID := middleware.UserIDFromContext(r.Context())
	editorRole := middleware.RoleFromContext(r.Context())

	var req UpdatePostRequest
	if !decodeBody(w, r, &req) {
		return
	}

	post, err := h.posts.UpdatePost(r.Context(), id, editorID, editorRole, service.UpdatePostInput{
		Title:   req.Title,
		Content: req.Content,
		Summary: req.Summary,
		Tags:    req.Tags,
		Status:  req.Status,
	})
	if err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{Data: post})
}

// Delete handles DELETE /api/v1/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeBadRequest(w, "post id is required")
		return
	}

	editorID := middleware.UserIDFromContext(r.Context())
	editorRole := middleware.RoleFromContext(r.Context())

	if err := h.posts.DeletePost(r.Context(), id, editorID, editorRole); err != nil {
		writeAppError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, response{
		Data: map[string]string{"id": id, "status": "deleted"},
	})
}
