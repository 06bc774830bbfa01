package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mosswell/inkwell/internal/models"
	"github.com/mosswell/inkwell/internal/ratelimit"
	"github.com/mosswell/inkwell/internal/services"
	pkghttp "github.com/mosswell/inkwell/pkg/http"
)

// CommentServiceInterface defines the interface for comment business logic
type CommentServiceInterface interface {
	Submit(ctx context.Context, input services.SubmitCommentInput) (*models.Comment, ratelimit.Result, error)
	ListForPost(ctx context.Context, postID string) ([]*models.Comment, error)
	ListAll(ctx context.Context, status string, limit, offset int) ([]*models.Comment, int, error)
	Moderate(ctx context.Context, id, status string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentHandler handles comment submission and moderation HTTP requests
type CommentHandler struct {
	service CommentServiceInterface
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(service CommentServiceInterface) *CommentHandler {
	return &CommentHandler{service: service}
}

// SubmitCommentRequest represents the request body for a comment submission.
// A malformed author_url is a 400 here; a well-formed but unsafe one (bad
// scheme) is dropped later by the sanitizer.
type SubmitCommentRequest struct {
	PostID      string  `json:"post_id" validate:"required,uuid4"`
	ParentID    *string `json:"parent_id" validate:"omitempty,uuid4"`
	AuthorName  string  `json:"author_name" validate:"required,min=1,max=50"`
	AuthorEmail string  `json:"author_email" validate:"omitempty,email,max=254"`
	AuthorURL   string  `json:"author_url" validate:"omitempty,url,max=500"`
	Content     string  `json:"content" validate:"required,min=1,max=2000"`
}

// ModerateCommentRequest represents the request body for a status change
type ModerateCommentRequest struct {
	Status string `json:"status" validate:"required,oneof=pending approved spam trash"`
}

// Submit accepts a public comment submission. Every response carries the
// caller's current rate-limit budget in X-RateLimit headers.
func (h *CommentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	comment, res, err := h.service.Submit(r.Context(), services.SubmitCommentInput{
		PostID:      req.PostID,
		ParentID:    req.ParentID,
		AuthorName:  req.AuthorName,
		AuthorEmail: req.AuthorEmail,
		AuthorURL:   req.AuthorURL,
		Content:     req.Content,
		IPAddress:   pkghttp.ClientIP(r),
		UserAgent:   r.Header.Get("User-Agent"),
	})

	setRateLimitHeaders(w, res)

	if err != nil {
		switch {
		case errors.Is(err, models.ErrRateLimitExceeded):
			pkghttp.WriteTooManyRequests(w, "rate_limit_exceeded",
				"Too many comments. Please wait before commenting again.")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Post not found")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Comment submitted and awaiting moderation",
		"comment": comment,
	})
}

// ListForPost returns the approved comment tree for a post.
func (h *CommentHandler) ListForPost(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("post_id")
	if postID == "" {
		pkghttp.WriteBadRequest(w, "post_id query parameter is required")
		return
	}

	comments, err := h.service.ListForPost(r.Context(), postID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
	})
}

// AdminList returns a flat, filterable moderation queue.
func (h *CommentHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !models.IsValidCommentStatus(status) {
		pkghttp.WriteBadRequest(w, "Invalid status filter")
		return
	}

	limit, offset := parsePagination(r, 50, 200)

	comments, total, err := h.service.ListAll(r.Context(), status, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comments": comments,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// Moderate transitions a comment's status.
func (h *CommentHandler) Moderate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ModerateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	comment, err := h.service.Moderate(r.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Comment not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid status")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"comment": comment,
	})
}

// Delete removes a comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Comment not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	if !res.ResetTime.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))
	}
}

// parsePagination reads limit/offset query parameters with a default and cap.
func parsePagination(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
