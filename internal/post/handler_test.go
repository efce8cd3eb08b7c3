package post

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blogramhq/blogram/internal/post/entity"
	"github.com/blogramhq/blogram/pkg/token"
)

type memPostRepo struct {
	mu   sync.Mutex
	rows map[int64]*entity.Post
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{rows: make(map[int64]*entity.Post)}
}

func (m *memPostRepo) EnsureTable(ctx context.Context) error { return nil }

func (m *memPostRepo) Create(ctx context.Context, p *entity.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memPostRepo) GetByID(ctx context.Context, id int64, authorID uuid.UUID) (*entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.AuthorID != authorID {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *memPostRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit, offset int) ([]*entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Post{}
	for _, p := range m.rows {
		if p.AuthorID == authorID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memPostRepo) Update(ctx context.Context, id int64, authorID uuid.UUID, in *entity.UpdatePostInput) (*entity.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.AuthorID != authorID {
		return nil, sql.ErrNoRows
	}
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Content != nil {
		p.Content = *in.Content
	}
	if in.IsPublished != nil {
		p.IsPublished = *in.IsPublished
	}
	cp := *p
	return &cp, nil
}

func (m *memPostRepo) Delete(ctx context.Context, id int64, authorID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.AuthorID != authorID {
		return false, nil
	}
	delete(m.rows, id)
	return true, nil
}

func (m *memPostRepo) ListPublished(ctx context.Context, limit int) ([]*entity.PublishedPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.PublishedPost{}
	for _, p := range m.rows {
		if p.IsPublished {
			out = append(out, &entity.PublishedPost{Post: *p})
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memPostRepo) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.rows)), nil
}

func (m *memPostRepo) CountPublished(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.rows {
		if p.IsPublished {
			n++
		}
	}
	return n, nil
}

func (m *memPostRepo) CountByAuthor(ctx context.Context, authorID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.rows {
		if p.AuthorID == authorID {
			n++
		}
	}
	return n, nil
}

func newTestHandler() (*Handler, *memPostRepo) {
	repo := newMemPostRepo()
	svc := NewService(repo, nil)
	return NewHandler(svc, zap.NewNop().Sugar()), repo
}

func authedRequest(method, target string, body []byte, accountID uuid.UUID) *http.Request {
	var r *http.Request
	if body != nil {
		r = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	return r.WithContext(token.ContextWithAccountID(r.Context(), accountID))
}

func TestCreatePost(t *testing.T) {
	h, repo := newTestHandler()
	author := uuid.New()

	body, _ := json.Marshal(entity.CreatePostInput{Title: "hello", Content: "world", IsPublished: true})
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/posts", body, author))

	require.Equal(t, http.StatusCreated, w.Code)
	var got entity.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.NotZero(t, got.ID)
	assert.Equal(t, author, got.AuthorID, "author comes from the token, not the body")
	assert.Equal(t, "hello", got.Title)
	assert.Len(t, repo.rows, 1)
}

func TestCreatePost_TitleRequired(t *testing.T) {
	h, repo := newTestHandler()

	body, _ := json.Marshal(entity.CreatePostInput{Title: "  ", Content: "world"})
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(http.MethodPost, "/api/posts", body, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, repo.rows)
}

func TestCreatePost_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler()

	w := httptest.NewRecorder()
	h.Create(w, httptest.NewRequest(http.MethodPost, "/api/posts", bytes.NewReader([]byte("{}"))))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetPost_ScopedToAuthor(t *testing.T) {
	h, repo := newTestHandler()
	author := uuid.New()
	stranger := uuid.New()
	repo.rows[7] = &entity.Post{ID: 7, AuthorID: author, Title: "mine"}

	r := authedRequest(http.MethodGet, "/api/posts/7", nil, author)
	r.SetPathValue("id", "7")
	w := httptest.NewRecorder()
	h.Get(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	// another account cannot see it
	r = authedRequest(http.MethodGet, "/api/posts/7", nil, stranger)
	r.SetPathValue("id", "7")
	w = httptest.NewRecorder()
	h.Get(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPost_BadID(t *testing.T) {
	h, _ := newTestHandler()

	r := authedRequest(http.MethodGet, "/api/posts/abc", nil, uuid.New())
	r.SetPathValue("id", "abc")
	w := httptest.NewRecorder()
	h.Get(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdatePost(t *testing.T) {
	h, repo := newTestHandler()
	author := uuid.New()
	repo.rows[7] = &entity.Post{ID: 7, AuthorID: author, Title: "old"}

	newTitle := "new"
	body, _ := json.Marshal(entity.UpdatePostInput{Title: &newTitle})
	r := authedRequest(http.MethodPut, "/api/posts/7", body, author)
	r.SetPathValue("id", "7")
	w := httptest.NewRecorder()
	h.Update(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "new", repo.rows[7].Title)
}

func TestDeletePost(t *testing.T) {
	h, repo := newTestHandler()
	author := uuid.New()
	repo.rows[7] = &entity.Post{ID: 7, AuthorID: author, Title: "bye"}

	r := authedRequest(http.MethodDelete, "/api/posts/7", nil, author)
	r.SetPathValue("id", "7")
	w := httptest.NewRecorder()
	h.Delete(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, repo.rows)

	// deleting again reports not found
	r = authedRequest(http.MethodDelete, "/api/posts/7", nil, author)
	r.SetPathValue("id", "7")
	w = httptest.NewRecorder()
	h.Delete(w, r)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListPosts(t *testing.T) {
	h, repo := newTestHandler()
	author := uuid.New()
	repo.rows[1] = &entity.Post{ID: 1, AuthorID: author, Title: "a"}
	repo.rows[2] = &entity.Post{ID: 2, AuthorID: uuid.New(), Title: "not mine"}

	w := httptest.NewRecorder()
	h.List(w, authedRequest(http.MethodGet, "/api/posts", nil, author))

	require.Equal(t, http.StatusOK, w.Code)
	var got []entity.Post
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Title)
}
