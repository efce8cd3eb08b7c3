package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/blogramhq/blogram/internal/post/entity"
)

// PostRepo provides data access for the posts table. Mutating operations are
// author-scoped: a row is only touched when it belongs to the given author.
type PostRepo interface {
	EnsureTable(ctx context.Context) error
	Create(ctx context.Context, p *entity.Post) error
	GetByID(ctx context.Context, id int64, authorID uuid.UUID) (*entity.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*entity.Post, error)
	Update(ctx context.Context, id int64, authorID uuid.UUID, in *entity.UpdatePostInput) (*entity.Post, error)
	Delete(ctx context.Context, id int64, authorID uuid.UUID) (bool, error)
	// ListPublished returns the newest published posts with author usernames,
	// newest first.
	ListPublished(ctx context.Context, limit int) ([]*entity.PublishedPost, error)
	Count(ctx context.Context) (int64, error)
	CountPublished(ctx context.Context) (int64, error)
	CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error)
}

type postRepo struct {
	db *sqlx.DB
}

func NewPostRepo(db *sqlx.DB) PostRepo { return &postRepo{db: db} }

func (r *postRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS posts (
  id BIGINT PRIMARY KEY,
  author_id UUID NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  content TEXT NOT NULL DEFAULT '',
  is_published BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_posts_author_id ON posts(author_id);
CREATE INDEX IF NOT EXISTS idx_posts_published_created ON posts(is_published, created_at DESC);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const postColumns = `id, author_id, title, content, is_published, created_at, updated_at`

func (r *postRepo) Create(ctx context.Context, p *entity.Post) error {
	const q = `INSERT INTO posts (id, author_id, title, content, is_published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, q,
		p.ID, p.AuthorID, p.Title, p.Content, p.IsPublished,
	).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

func (r *postRepo) GetByID(ctx context.Context, id int64, authorID uuid.UUID) (*entity.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE id = $1 AND author_id = $2`
	var p entity.Post
	if err := r.db.GetContext(ctx, &p, q, id, authorID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*entity.Post, error) {
	q := `SELECT ` + postColumns + ` FROM posts WHERE author_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	posts := []*entity.Post{}
	if err := r.db.SelectContext(ctx, &posts, q, authorID, limit, offset); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepo) Update(ctx context.Context, id int64, authorID uuid.UUID, in *entity.UpdatePostInput) (*entity.Post, error) {
	query := `UPDATE posts SET updated_at = NOW()`
	args := []interface{}{}
	argCount := 1

	if in.Title != nil {
		query += fmt.Sprintf(", title = $%d", argCount)
		args = append(args, *in.Title)
		argCount++
	}
	if in.Content != nil {
		query += fmt.Sprintf(", content = $%d", argCount)
		args = append(args, *in.Content)
		argCount++
	}
	if in.IsPublished != nil {
		query += fmt.Sprintf(", is_published = $%d", argCount)
		args = append(args, *in.IsPublished)
		argCount++
	}

	query += fmt.Sprintf(" WHERE id = $%d AND author_id = $%d RETURNING %s", argCount, argCount+1, postColumns)
	args = append(args, id, authorID)

	var p entity.Post
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepo) Delete(ctx context.Context, id int64, authorID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1 AND author_id = $2`, id, authorID)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *postRepo) ListPublished(ctx context.Context, limit int) ([]*entity.PublishedPost, error) {
	const q = `SELECT p.id, p.author_id, p.title, p.content, p.is_published, p.created_at, p.updated_at,
			a.username AS author_username
		FROM posts p
		JOIN accounts a ON a.id = p.author_id
		WHERE p.is_published = true
		ORDER BY p.created_at DESC
		LIMIT $1`
	posts := []*entity.PublishedPost{}
	if err := r.db.SelectContext(ctx, &posts, q, limit); err != nil {
		return nil, fmt.Errorf("list published posts: %w", err)
	}
	return posts, nil
}

func (r *postRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts`); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *postRepo) CountPublished(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE is_published = true`); err != nil {
		return 0, fmt.Errorf("count published posts: %w", err)
	}
	return n, nil
}

func (r *postRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM posts WHERE author_id = $1`, authorID); err != nil {
		return 0, fmt.Errorf("count author posts: %w", err)
	}
	return n, nil
}
