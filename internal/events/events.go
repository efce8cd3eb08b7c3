package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	PostCreated = "post.created"
	PostDeleted = "post.deleted"
)

// PostCreatedEvent is published after a post row is committed.
type PostCreatedEvent struct {
	PostID      int64     `json:"post_id"`
	AuthorID    uuid.UUID `json:"author_id"`
	Title       string    `json:"title"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

// PostDeletedEvent is published after a post row is removed.
type PostDeletedEvent struct {
	PostID   int64     `json:"post_id"`
	AuthorID uuid.UUID `json:"author_id"`
}
