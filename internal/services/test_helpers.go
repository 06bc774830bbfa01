package services

import (
	"context"
	"time"

	"github.com/mosswell/inkwell/internal/models"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByEmailFunc     func(ctx context.Context, email string) (*models.User, error)
	GetByIDFunc        func(ctx context.Context, id string) (*models.User, error)
	UpdatePasswordFunc func(ctx context.Context, id, passwordHash string) error
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

// MockCommentRepository implements CommentRepository for testing
type MockCommentRepository struct {
	CreateFunc             func(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	ListApprovedByPostFunc func(ctx context.Context, postID string) ([]*models.Comment, error)
	ListFunc               func(ctx context.Context, status string, limit, offset int) ([]*models.Comment, int, error)
	UpdateStatusFunc       func(ctx context.Context, id, status string) (*models.Comment, error)
	DeleteFunc             func(ctx context.Context, id string) error
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, comment)
	}
	comment.ID = "comment_123"
	comment.CreatedAt = time.Now()
	return comment, nil
}

func (m *MockCommentRepository) ListApprovedByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	if m.ListApprovedByPostFunc != nil {
		return m.ListApprovedByPostFunc(ctx, postID)
	}
	return []*models.Comment{}, nil
}

func (m *MockCommentRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Comment, int, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, status, limit, offset)
	}
	return []*models.Comment{}, 0, nil
}

func (m *MockCommentRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Comment, error) {
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status)
	}
	return nil, models.ErrNotFound
}

func (m *MockCommentRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockPostRepository implements PostRepository for testing
type MockPostRepository struct {
	GetBySlugFunc     func(ctx context.Context, slug string) (*models.Post, error)
	GetByIDFunc       func(ctx context.Context, id string) (*models.Post, error)
	ListPublishedFunc func(ctx context.Context, limit, offset int) ([]*models.Post, error)
	CreateFunc        func(ctx context.Context, post *models.Post) (*models.Post, error)
	UpdateFunc        func(ctx context.Context, id string, post *models.Post) (*models.Post, error)
	DeleteFunc        func(ctx context.Context, id string) error
}

func (m *MockPostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	if m.GetBySlugFunc != nil {
		return m.GetBySlugFunc(ctx, slug)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockPostRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx, limit, offset)
	}
	return []*models.Post{}, nil
}

func (m *MockPostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, post)
	}
	post.ID = "post_123"
	return post, nil
}

func (m *MockPostRepository) Update(ctx context.Context, id string, post *models.Post) (*models.Post, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, post)
	}
	return nil, models.ErrInternalServer
}

func (m *MockPostRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// NewTestUser creates a user with sensible defaults for testing
func NewTestUser(id, email, name string) *models.User {
	now := time.Now()
	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      models.RoleAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
