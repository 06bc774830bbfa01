package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mosswell/inkwell/internal/models"
	"github.com/mosswell/inkwell/internal/ratelimit"
	"github.com/mosswell/inkwell/pkg/sanitize"
)

// CommentRepository defines the persistence operations for comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListApprovedByPost(ctx context.Context, postID string) ([]*models.Comment, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Comment, int, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Comment, error)
	Delete(ctx context.Context, id string) error
}

// CommentService runs the comment submission pipeline and assembles the
// public comment tree.
type CommentService struct {
	repo    CommentRepository
	limiter *ratelimit.Limiter
	logger  *slog.Logger
}

// NewCommentService creates a new CommentService
func NewCommentService(repo CommentRepository, limiter *ratelimit.Limiter, logger *slog.Logger) *CommentService {
	return &CommentService{
		repo:    repo,
		limiter: limiter,
		logger:  logger,
	}
}

// SubmitCommentInput carries a schema-validated (but not yet sanitized)
// submission.
type SubmitCommentInput struct {
	PostID      string
	ParentID    *string
	AuthorName  string
	AuthorEmail string
	AuthorURL   string
	Content     string
	IPAddress   string
	UserAgent   string
}

// Submit runs the write pipeline: rate limit by submitter IP, sanitize every
// untrusted field, persist with status forced to pending. Each step is a
// hard gate; nothing is written on failure. The rate-limit result is
// returned either way so the handler can emit X-RateLimit headers.
func (s *CommentService) Submit(ctx context.Context, input SubmitCommentInput) (*models.Comment, ratelimit.Result, error) {
	res := s.limiter.Check(input.IPAddress)
	if !res.Allowed {
		s.logger.Info("comment rejected: rate limited",
			slog.String("ip_address", input.IPAddress))
		return nil, res, models.ErrRateLimitExceeded
	}

	// The persisted record never contains the raw untrusted strings.
	comment := &models.Comment{
		PostID:     input.PostID,
		ParentID:   input.ParentID,
		AuthorName: sanitize.SanitizeComment(input.AuthorName),
		Content:    sanitize.SanitizeComment(input.Content),
		Status:     models.CommentStatusPending, // client-supplied status is ignored
		IPAddress:  input.IPAddress,
		UserAgent:  input.UserAgent,
	}
	if input.AuthorEmail != "" {
		email := sanitize.SanitizeComment(input.AuthorEmail)
		comment.AuthorEmail = &email
	}
	if input.AuthorURL != "" {
		if url := sanitize.SanitizeURL(input.AuthorURL); url != "" {
			comment.AuthorURL = &url
		}
	}

	created, err := s.repo.Create(ctx, comment)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			// FK violation: the post (or parent comment) does not exist.
			return nil, res, models.ErrBadRequest
		}
		s.logger.Error("failed to create comment", slog.Any("error", err))
		return nil, res, models.ErrInternalServer
	}

	s.logger.Info("comment submitted for moderation",
		slog.String("comment_id", created.ID),
		slog.String("post_id", created.PostID))

	return created, res, nil
}

// ListForPost returns the approved comments of a post as a forest, newest
// roots first, replies attached to their parents.
func (s *CommentService) ListForPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	comments, err := s.repo.ListApprovedByPost(ctx, postID)
	if err != nil {
		s.logger.Error("failed to list comments", slog.String("post_id", postID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return buildCommentTree(comments), nil
}

// ListAll returns a flat moderation view across posts with a total count.
func (s *CommentService) ListAll(ctx context.Context, status string, limit, offset int) ([]*models.Comment, int, error) {
	comments, total, err := s.repo.List(ctx, status, limit, offset)
	if err != nil {
		s.logger.Error("failed to list comments for moderation", slog.Any("error", err))
		return nil, 0, models.ErrInternalServer
	}
	return comments, total, nil
}

// Moderate transitions a comment to the given status. Any status may move
// to any other; there is no transition graph beyond validity of the target.
func (s *CommentService) Moderate(ctx context.Context, id, status string) (*models.Comment, error) {
	if !models.IsValidCommentStatus(status) {
		return nil, models.ErrBadRequest
	}

	comment, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to update comment status", slog.String("comment_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("comment moderated",
		slog.String("comment_id", id),
		slog.String("status", status))
	return comment, nil
}

// Delete removes a comment outright.
func (s *CommentService) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete comment", slog.String("comment_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// buildCommentTree reconstructs a forest from parent pointers in two passes:
// first an id→node map, then each node attaches to its parent's replies or
// to the root list. A reply whose parent is absent from the fetched set
// (deleted, or not approved) is dropped rather than promoted to root.
func buildCommentTree(comments []*models.Comment) []*models.Comment {
	nodes := make(map[string]*models.Comment, len(comments))
	for _, comment := range comments {
		comment.Replies = nil
		nodes[comment.ID] = comment
	}

	roots := make([]*models.Comment, 0, len(comments))
	for _, comment := range comments {
		if comment.ParentID == nil {
			roots = append(roots, comment)
			continue
		}
		if parent, ok := nodes[*comment.ParentID]; ok {
			parent.Replies = append(parent.Replies, comment)
		}
	}
	return roots
}
