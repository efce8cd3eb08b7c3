package post

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blogramhq/blogram/internal/post/entity"
	"github.com/blogramhq/blogram/pkg/token"
)

// Handler exposes author-scoped post CRUD endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	accountID, ok := token.AccountIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	posts, err := h.svc.List(r.Context(), accountID, limit, offset)
	if err != nil {
		h.logger.Warnw("list posts failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "posts unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, posts)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	accountID, ok := token.AccountIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	var in entity.CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	p, err := h.svc.Create(r.Context(), accountID, &in)
	if err != nil {
		h.logger.Warnw("create post failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	h.writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	accountID, id, ok := h.authAndID(w, r)
	if !ok {
		return
	}
	p, err := h.svc.Get(r.Context(), id, accountID)
	if err != nil {
		h.respondError(w, accountID, "get post", err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	accountID, id, ok := h.authAndID(w, r)
	if !ok {
		return
	}
	var in entity.UpdatePostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	p, err := h.svc.Update(r.Context(), id, accountID, &in)
	if err != nil {
		h.respondError(w, accountID, "update post", err)
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	accountID, id, ok := h.authAndID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id, accountID); err != nil {
		h.respondError(w, accountID, "delete post", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authAndID pulls the authenticated account and the {id} path value.
func (h *Handler) authAndID(w http.ResponseWriter, r *http.Request) (accountID uuid.UUID, id int64, ok bool) {
	aid, authed := token.AccountIDFromContext(r.Context())
	if !authed {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return aid, 0, false
	}
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid post id"})
		return aid, 0, false
	}
	return aid, id, true
}

func (h *Handler) respondError(w http.ResponseWriter, accountID uuid.UUID, op string, err error) {
	if errors.Is(err, ErrNotFound) {
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "post not found"})
		return
	}
	h.logger.Warnw(op+" failed", "account_id", accountID, "err", err)
	h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": op + " failed"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
