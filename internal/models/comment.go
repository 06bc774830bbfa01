package models

import "time"

// Moderation statuses a comment can be in. Only approved comments are ever
// shown on the public site.
const (
	CommentStatusPending  = "pending"
	CommentStatusApproved = "approved"
	CommentStatusSpam     = "spam"
	CommentStatusTrash    = "trash"
)

// Comment is a visitor-submitted comment on a post. All author fields and
// the content are sanitized before the record is created; the raw submitted
// strings are never stored.
type Comment struct {
	ID          string     `json:"id"`
	PostID      string     `json:"post_id"`
	ParentID    *string    `json:"parent_id"` // nil for top-level comments
	AuthorName  string     `json:"author_name"`
	AuthorEmail *string    `json:"author_email"`
	AuthorURL   *string    `json:"author_url"`
	Content     string     `json:"content"`
	Status      string     `json:"status"`
	IPAddress   string     `json:"-"`
	UserAgent   string     `json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Replies     []*Comment `json:"replies,omitempty"`
}

// IsValidCommentStatus reports whether s is a known moderation status.
func IsValidCommentStatus(s string) bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusSpam, CommentStatusTrash:
		return true
	}
	return false
}
