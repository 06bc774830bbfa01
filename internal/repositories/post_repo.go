package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mosswell/inkwell/internal/database"
	"github.com/mosswell/inkwell/internal/models"
)

type PostRepository struct {
	pool *pgxpool.Pool
}

func NewPostRepository(db *database.DB) *PostRepository {
	return &PostRepository{pool: db.Pool}
}

const postColumns = `id, slug, title, content, excerpt, status, published_at, created_at, updated_at`

func scanPostRow(scanner rowScanner) (*models.Post, error) {
	var p models.Post
	err := scanner.Scan(
		&p.ID, &p.Slug, &p.Title, &p.Content, &p.Excerpt, &p.Status,
		&p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &p, nil
}

func scanPostRows(rows pgx.Rows) ([]*models.Post, error) {
	defer rows.Close()

	posts := make([]*models.Post, 0)
	for rows.Next() {
		post, err := scanPostRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return posts, nil
}

func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE slug = $1`
	return scanPostRow(r.pool.QueryRow(ctx, query, slug))
}

func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	return scanPostRow(r.pool.QueryRow(ctx, query, id))
}

// ListPublished returns published posts, newest first.
func (r *PostRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM posts
		WHERE status = $1
		ORDER BY published_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, models.PostStatusPublished, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	return scanPostRows(rows)
}

func (r *PostRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	post.ID = uuid.New().String()

	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	query := `
		INSERT INTO posts (id, slug, title, content, excerpt, status, published_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + postColumns

	return scanPostRow(r.pool.QueryRow(ctx, query,
		post.ID, post.Slug, post.Title, post.Content, post.Excerpt,
		post.Status, post.PublishedAt, post.CreatedAt, post.UpdatedAt,
	))
}

func (r *PostRepository) Update(ctx context.Context, id string, post *models.Post) (*models.Post, error) {
	post.UpdatedAt = time.Now()

	query := `
		UPDATE posts
		SET slug = $1, title = $2, content = $3, excerpt = $4, status = $5,
			published_at = $6, updated_at = $7
		WHERE id = $8
		RETURNING ` + postColumns

	return scanPostRow(r.pool.QueryRow(ctx, query,
		post.Slug, post.Title, post.Content, post.Excerpt, post.Status,
		post.PublishedAt, post.UpdatedAt, id,
	))
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
