package entity

import (
	"time"

	"github.com/google/uuid"
)

// Post is a content item owned by exactly one account. The author is always
// taken from the authenticated caller at creation time and never changes.
type Post struct {
	ID          int64     `json:"id" db:"id"`
	AuthorID    uuid.UUID `json:"author_id" db:"author_id"`
	Title       string    `json:"title" db:"title"`
	Content     string    `json:"content" db:"content"`
	IsPublished bool      `json:"is_published" db:"is_published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// PublishedPost is the projection served to the bot's posts digest: the post
// plus its author's username.
type PublishedPost struct {
	Post
	AuthorUsername string `json:"author_username" db:"author_username"`
}

// CreatePostInput carries the client-supplied post fields. AuthorID is
// intentionally absent.
type CreatePostInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	IsPublished bool   `json:"is_published"`
}

// UpdatePostInput carries the mutable post fields for a partial update.
type UpdatePostInput struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	IsPublished *bool   `json:"is_published,omitempty"`
}
