package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mosswell/inkwell/internal/models"
	"github.com/mosswell/inkwell/internal/services"
	pkghttp "github.com/mosswell/inkwell/pkg/http"
)

// PostServiceInterface defines the interface for post business logic
type PostServiceInterface interface {
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error)
	GetPublishedBySlug(ctx context.Context, slug string) (*models.Post, error)
	Create(ctx context.Context, input services.PostInput) (*models.Post, error)
	Update(ctx context.Context, id string, input services.PostInput) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// PostHandler handles post read and admin CRUD HTTP requests
type PostHandler struct {
	service PostServiceInterface
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(service PostServiceInterface) *PostHandler {
	return &PostHandler{service: service}
}

// PostRequest represents the request body for creating or updating a post
type PostRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Slug    string `json:"slug" validate:"omitempty,max=200"`
	Content string `json:"content" validate:"required"`
	Excerpt string `json:"excerpt" validate:"omitempty,max=500"`
	Status  string `json:"status" validate:"omitempty,oneof=draft published"`
}

// List returns published posts, newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r, 20, 100)

	posts, err := h.service.ListPublished(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"posts":  posts,
		"limit":  limit,
		"offset": offset,
	})
}

// Get returns a single published post by slug, content rendered to HTML.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.service.GetPublishedBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"post": post,
	})
}

// Create inserts a new post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.Create(r.Context(), services.PostInput{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
		Excerpt: req.Excerpt,
		Status:  req.Status,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			pkghttp.WriteConflict(w, "A post with this slug already exists")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"post": post,
	})
}

// Update replaces a post's fields.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	post, err := h.service.Update(r.Context(), id, services.PostInput{
		Title:   req.Title,
		Slug:    req.Slug,
		Content: req.Content,
		Excerpt: req.Excerpt,
		Status:  req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Post not found")
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A post with this slug already exists")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"post": post,
	})
}

// Delete removes a post and, via the schema, its comments.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Post not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
