package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/blogramhq/blogram/internal/events"
	"github.com/blogramhq/blogram/internal/post/entity"
	"github.com/blogramhq/blogram/internal/post/repo"
	"github.com/blogramhq/blogram/pkg/utilities"
)

var ErrNotFound = errors.New("post not found")

// Service implements author-scoped post CRUD plus the published feed the bot
// reads. All operations take the acting account from the caller, never from
// client input.
type Service struct {
	posts     repo.PostRepo
	publisher *events.Publisher
}

func NewService(posts repo.PostRepo, publisher *events.Publisher) *Service {
	return &Service{posts: posts, publisher: publisher}
}

// Create stores a new post authored by the given account.
func (s *Service) Create(ctx context.Context, authorID uuid.UUID, in *entity.CreatePostInput) (*entity.Post, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, errors.New("title required")
	}
	id, err := utilities.NewPostID()
	if err != nil {
		return nil, fmt.Errorf("generate post id: %w", err)
	}
	p := &entity.Post{
		ID:          id,
		AuthorID:    authorID,
		Title:       in.Title,
		Content:     in.Content,
		IsPublished: in.IsPublished,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, err
	}
	s.publisher.PublishPostCreated(events.PostCreatedEvent{
		PostID:      p.ID,
		AuthorID:    p.AuthorID,
		Title:       p.Title,
		IsPublished: p.IsPublished,
		CreatedAt:   p.CreatedAt,
	})
	return p, nil
}

// Get returns one of the author's own posts.
func (s *Service) Get(ctx context.Context, id int64, authorID uuid.UUID) (*entity.Post, error) {
	p, err := s.posts.GetByID(ctx, id, authorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// List returns the author's own posts, newest first.
func (s *Service) List(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*entity.Post, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.posts.ListByAuthor(ctx, authorID, limit, offset)
}

// Update applies a partial update to one of the author's own posts.
func (s *Service) Update(ctx context.Context, id int64, authorID uuid.UUID, in *entity.UpdatePostInput) (*entity.Post, error) {
	p, err := s.posts.Update(ctx, id, authorID, in)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

// Delete removes one of the author's own posts.
func (s *Service) Delete(ctx context.Context, id int64, authorID uuid.UUID) error {
	deleted, err := s.posts.Delete(ctx, id, authorID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.publisher.PublishPostDeleted(events.PostDeletedEvent{PostID: id, AuthorID: authorID})
	return nil
}

// ListPublished returns up to limit newest published posts for the bot digest.
func (s *Service) ListPublished(ctx context.Context, limit int) ([]*entity.PublishedPost, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.posts.ListPublished(ctx, limit)
}

// CountByAuthor returns the number of posts owned by an account.
func (s *Service) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	return s.posts.CountByAuthor(ctx, authorID)
}
