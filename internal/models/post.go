package models

import "time"

// Post publication statuses.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post is an article. Content is trusted admin-authored markdown; it is
// rendered to HTML on the read path, unlike comment content which is
// escaped plain text.
type Post struct {
	ID          string     `json:"id"`
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Content     string     `json:"content"` // markdown source
	ContentHTML string     `json:"content_html,omitempty"`
	Excerpt     string     `json:"excerpt"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Setting is a single key/value site configuration entry.
type Setting struct {
	Key         string    `json:"key"`
	Value       string    `json:"value"`
	Description *string   `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
}
