package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gosimple/slug"
	"github.com/mosswell/inkwell/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// PostRepository defines the persistence operations for posts.
type PostRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	Update(ctx context.Context, id string, post *models.Post) (*models.Post, error)
	Delete(ctx context.Context, id string) error
}

// PostService handles article reads and admin CRUD. Post content is trusted
// admin-authored markdown rendered to HTML at read time; it deliberately
// does not pass through the comment sanitizer.
type PostService struct {
	repo     PostRepository
	markdown goldmark.Markdown
	logger   *slog.Logger
}

// NewPostService creates a new PostService
func NewPostService(repo PostRepository, logger *slog.Logger) *PostService {
	return &PostService{
		repo:     repo,
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:   logger,
	}
}

// PostInput carries admin-supplied article fields.
type PostInput struct {
	Title   string
	Slug    string // derived from the title when empty
	Content string
	Excerpt string
	Status  string
}

// ListPublished returns published posts, newest first.
func (s *PostService) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list posts", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return posts, nil
}

// GetPublishedBySlug returns a published post with its content rendered to
// HTML. Drafts are indistinguishable from missing posts on the public path.
func (s *PostService) GetPublishedBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	post, err := s.repo.GetBySlug(ctx, postSlug)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get post", slog.String("slug", postSlug), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if post.Status != models.PostStatusPublished {
		return nil, models.ErrNotFound
	}

	html, err := s.render(post.Content)
	if err != nil {
		s.logger.Error("failed to render post content", slog.String("post_id", post.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	post.ContentHTML = html

	return post, nil
}

// Create inserts a new post, deriving the slug from the title when none is
// given and stamping published_at on publish.
func (s *PostService) Create(ctx context.Context, input PostInput) (*models.Post, error) {
	post := &models.Post{
		Title:   input.Title,
		Slug:    input.Slug,
		Content: input.Content,
		Excerpt: input.Excerpt,
		Status:  input.Status,
	}
	if post.Slug == "" {
		post.Slug = slug.Make(post.Title)
	}
	if post.Status == "" {
		post.Status = models.PostStatusDraft
	}
	if post.Status == models.PostStatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	created, err := s.repo.Create(ctx, post)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict // duplicate slug
		}
		s.logger.Error("failed to create post", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("post created", slog.String("post_id", created.ID), slog.String("slug", created.Slug))
	return created, nil
}

// Update replaces a post's fields. Publishing a draft stamps published_at;
// the timestamp survives later edits.
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*models.Post, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get post for update", slog.String("post_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	post := &models.Post{
		Title:       input.Title,
		Slug:        input.Slug,
		Content:     input.Content,
		Excerpt:     input.Excerpt,
		Status:      input.Status,
		PublishedAt: existing.PublishedAt,
	}
	if post.Slug == "" {
		post.Slug = slug.Make(post.Title)
	}
	if post.Status == "" {
		post.Status = existing.Status
	}
	if post.Status == models.PostStatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	updated, err := s.repo.Update(ctx, id, post)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to update post", slog.String("post_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("post updated", slog.String("post_id", id))
	return updated, nil
}

// Delete removes a post; its comments cascade in the schema.
func (s *PostService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete post", slog.String("post_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	s.logger.Info("post deleted", slog.String("post_id", id))
	return nil
}

func (s *PostService) render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
