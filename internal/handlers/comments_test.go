package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/mosswell/inkwell/internal/models"
	"github.com/mosswell/inkwell/internal/ratelimit"
	"github.com/mosswell/inkwell/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPostID = "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d"

func newCommentHandler(repo *services.MockCommentRepository, maxPerMinute int) *CommentHandler {
	limiter := ratelimit.NewLimiter(time.Minute, maxPerMinute)
	svc := services.NewCommentService(repo, limiter, slog.Default())
	return NewCommentHandler(svc)
}

func submitBody(t *testing.T, content string) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"post_id":     testPostID,
		"author_name": "Alice",
		"content":     content,
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestCommentHandler_Submit_Success(t *testing.T) {
	var persisted *models.Comment
	mockRepo := &services.MockCommentRepository{
		CreateFunc: func(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
			persisted = comment
			comment.ID = "comment_123"
			comment.CreatedAt = time.Now()
			return comment, nil
		},
	}

	handler := newCommentHandler(mockRepo, 5)

	req := httptest.NewRequest(http.MethodPost, "/comments", submitBody(t, "Hello <b>world</b>"))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "4", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))

	require.NotNil(t, persisted)
	assert.Equal(t, "Hello &lt;b&gt;world&lt;&#x2F;b&gt;", persisted.Content)
	assert.Equal(t, models.CommentStatusPending, persisted.Status)
	assert.NotEmpty(t, persisted.IPAddress)

	var resp struct {
		Message string          `json:"message"`
		Comment *models.Comment `json:"comment"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, "comment_123", resp.Comment.ID)
}

func TestCommentHandler_Submit_RateLimited(t *testing.T) {
	mockRepo := &services.MockCommentRepository{}
	handler := newCommentHandler(mockRepo, 5)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/comments", submitBody(t, fmt.Sprintf("comment %d", i)))
		rec := httptest.NewRecorder()
		handler.Submit(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/comments", submitBody(t, "one too many"))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
	assert.Contains(t, rec.Body.String(), "rate_limit_exceeded")
}

func TestCommentHandler_Submit_MissingContent(t *testing.T) {
	handler := newCommentHandler(&services.MockCommentRepository{}, 5)

	body, _ := json.Marshal(map[string]string{
		"post_id":     testPostID,
		"author_name": "Alice",
	})
	req := httptest.NewRequest(http.MethodPost, "/comments", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentHandler_Submit_RejectsInvalidFields(t *testing.T) {
	created := false
	mockRepo := &services.MockCommentRepository{
		CreateFunc: func(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
			created = true
			return comment, nil
		},
	}
	handler := newCommentHandler(mockRepo, 100)

	cases := []struct {
		name string
		body map[string]string
	}{
		{"author name over 50 chars", map[string]string{
			"post_id": testPostID, "author_name": strings.Repeat("a", 51), "content": "hi",
		}},
		{"content over 2000 chars", map[string]string{
			"post_id": testPostID, "author_name": "Alice", "content": strings.Repeat("a", 2001),
		}},
		{"post id not a uuid", map[string]string{
			"post_id": "post_123", "author_name": "Alice", "content": "hi",
		}},
		{"parent id not a uuid", map[string]string{
			"post_id": testPostID, "parent_id": "not-a-uuid", "author_name": "Alice", "content": "hi",
		}},
		{"malformed author url", map[string]string{
			"post_id": testPostID, "author_name": "Alice", "author_url": "not a url", "content": "hi",
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/comments", bytes.NewBuffer(body))
			rec := httptest.NewRecorder()
			handler.Submit(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, created, "nothing should be persisted")
		})
	}
}

func TestCommentHandler_Submit_AcceptsFieldsAtLimit(t *testing.T) {
	mockRepo := &services.MockCommentRepository{}
	handler := newCommentHandler(mockRepo, 100)

	body, err := json.Marshal(map[string]string{
		"post_id":     testPostID,
		"parent_id":   "5e0cf0a4-8c5f-4c6e-9d6a-7f2b3a1c9e8d",
		"author_name": strings.Repeat("a", 50),
		"content":     strings.Repeat("b", 2000),
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/comments", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	handler.Submit(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCommentHandler_Submit_UnknownPost(t *testing.T) {
	mockRepo := &services.MockCommentRepository{
		CreateFunc: func(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
			return nil, models.ErrBadRequest
		},
	}
	handler := newCommentHandler(mockRepo, 5)

	req := httptest.NewRequest(http.MethodPost, "/comments", submitBody(t, "hi"))
	rec := httptest.NewRecorder()

	handler.Submit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentHandler_ListForPost_RequiresPostID(t *testing.T) {
	handler := newCommentHandler(&services.MockCommentRepository{}, 5)

	req := httptest.NewRequest(http.MethodGet, "/comments", nil)
	rec := httptest.NewRecorder()

	handler.ListForPost(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentHandler_Moderate_Success(t *testing.T) {
	mockRepo := &services.MockCommentRepository{
		UpdateStatusFunc: func(ctx context.Context, id, status string) (*models.Comment, error) {
			return &models.Comment{ID: id, Status: status}, nil
		},
	}
	handler := newCommentHandler(mockRepo, 5)

	router := chi.NewRouter()
	router.Patch("/admin/comments/{id}", handler.Moderate)

	body, _ := json.Marshal(map[string]string{"status": "approved"})
	req := httptest.NewRequest(http.MethodPatch, "/admin/comments/comment_123", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"approved"`)
}

func TestCommentHandler_Moderate_InvalidStatus(t *testing.T) {
	handler := newCommentHandler(&services.MockCommentRepository{}, 5)

	router := chi.NewRouter()
	router.Patch("/admin/comments/{id}", handler.Moderate)

	body, _ := json.Marshal(map[string]string{"status": "published"})
	req := httptest.NewRequest(http.MethodPatch, "/admin/comments/comment_123", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommentHandler_Delete_NotFound(t *testing.T) {
	mockRepo := &services.MockCommentRepository{
		DeleteFunc: func(ctx context.Context, id string) error {
			return models.ErrNotFound
		},
	}
	handler := newCommentHandler(mockRepo, 5)

	router := chi.NewRouter()
	router.Delete("/admin/comments/{id}", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/admin/comments/missing", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
