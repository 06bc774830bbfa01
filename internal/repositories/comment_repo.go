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

type CommentRepository struct {
	pool *pgxpool.Pool
}

func NewCommentRepository(db *database.DB) *CommentRepository {
	return &CommentRepository{pool: db.Pool}
}

const commentColumns = `id, post_id, parent_id, author_name, author_email, author_url,
		content, status, ip_address, user_agent, created_at, updated_at`

func scanCommentRow(scanner rowScanner) (*models.Comment, error) {
	var c models.Comment
	var ipAddress, userAgent *string

	err := scanner.Scan(
		&c.ID, &c.PostID, &c.ParentID, &c.AuthorName, &c.AuthorEmail, &c.AuthorURL,
		&c.Content, &c.Status, &ipAddress, &userAgent, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if ipAddress != nil {
		c.IPAddress = *ipAddress
	}
	if userAgent != nil {
		c.UserAgent = *userAgent
	}
	return &c, nil
}

func scanCommentRows(rows pgx.Rows) ([]*models.Comment, error) {
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		comment, err := scanCommentRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return comments, nil
}

// Create inserts a comment. A single atomic statement; the caller has
// already sanitized every author field and forced the status.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	comment.ID = uuid.New().String()

	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	query := `
		INSERT INTO comments (id, post_id, parent_id, author_name, author_email, author_url,
			content, status, ip_address, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + commentColumns

	return scanCommentRow(r.pool.QueryRow(ctx, query,
		comment.ID, comment.PostID, comment.ParentID, comment.AuthorName,
		comment.AuthorEmail, comment.AuthorURL, comment.Content, comment.Status,
		comment.IPAddress, comment.UserAgent, comment.CreatedAt, comment.UpdatedAt,
	))
}

// ListApprovedByPost returns all approved comments for a post, newest first.
func (r *CommentRepository) ListApprovedByPost(ctx context.Context, postID string) ([]*models.Comment, error) {
	query := `
		SELECT ` + commentColumns + `
		FROM comments
		WHERE post_id = $1 AND status = $2
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, postID, models.CommentStatusApproved)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	return scanCommentRows(rows)
}

// List returns comments across all posts for moderation, newest first, with
// an optional status filter and the total matching count.
func (r *CommentRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Comment, int, error) {
	var (
		rows  pgx.Rows
		err   error
		total int
	)

	if status != "" {
		query := `
			SELECT ` + commentColumns + `
			FROM comments WHERE status = $1
			ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`
		rows, err = r.pool.Query(ctx, query, status, limit, offset)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query comments: %w", err)
		}
		countErr := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments WHERE status = $1`, status).Scan(&total)
		if countErr != nil {
			rows.Close()
			return nil, 0, database.MapPostgresError(countErr)
		}
	} else {
		query := `
			SELECT ` + commentColumns + `
			FROM comments
			ORDER BY created_at DESC LIMIT $1 OFFSET $2
		`
		rows, err = r.pool.Query(ctx, query, limit, offset)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to query comments: %w", err)
		}
		countErr := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM comments`).Scan(&total)
		if countErr != nil {
			rows.Close()
			return nil, 0, database.MapPostgresError(countErr)
		}
	}

	comments, err := scanCommentRows(rows)
	if err != nil {
		return nil, 0, err
	}
	return comments, total, nil
}

// UpdateStatus moves a comment to the given moderation status. Any status
// may move to any other.
func (r *CommentRepository) UpdateStatus(ctx context.Context, id, status string) (*models.Comment, error) {
	query := `
		UPDATE comments SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + commentColumns

	return scanCommentRow(r.pool.QueryRow(ctx, query, status, time.Now(), id))
}

func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
