package account

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/blogramhq/blogram/internal/account/entity"
	"github.com/blogramhq/blogram/internal/post"
	postentity "github.com/blogramhq/blogram/internal/post/entity"
	"github.com/blogramhq/blogram/pkg/token"
)

// Handler exposes HTTP endpoints for registration, login, profile access and
// the authenticated overview.
type Handler struct {
	svc    *Service
	posts  *post.Service
	tokens *token.Manager
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, posts *post.Service, tokens *token.Manager, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, posts: posts, tokens: tokens, logger: logger}
}

// RegisterRequest request body for the register endpoint.
type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid register payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.Register(r.Context(), req.Username, req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			h.writeJSON(w, http.StatusConflict, map[string]string{"error": "username or email already registered"})
			return
		}
		h.logger.Warnw("register failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "registration failed"})
		return
	}
	h.writeJSON(w, http.StatusCreated, a)
}

// LoginRequest login payload.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	a, err := h.svc.Authenticate(r.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		if errors.Is(err, ErrBadCredentials) {
			h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	tok, err := h.tokens.Generate(a.ID)
	if err != nil {
		h.logger.Errorw("token generation failed", "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "login failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, LoginResponse{Token: tok, Username: a.Username})
}

// GetProfile returns the caller's profile, creating it on first access.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := token.AccountIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	p, err := h.svc.GetProfile(r.Context(), accountID)
	if err != nil {
		h.logger.Warnw("get profile failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "profile unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// UpdateProfile applies a partial update to the caller's profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	accountID, ok := token.AccountIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	var in entity.UpdateProfileInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	p, err := h.svc.UpdateProfile(r.Context(), accountID, &in)
	if err != nil {
		h.logger.Warnw("update profile failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "profile update failed"})
		return
	}
	h.writeJSON(w, http.StatusOK, p)
}

// SecureResponse is the authenticated overview payload.
type SecureResponse struct {
	Message     string             `json:"message"`
	Account     *entity.Account    `json:"account"`
	Profile     *entity.Profile    `json:"profile"`
	PostsCount  int64              `json:"posts_count"`
	RecentPosts []*postentity.Post `json:"recent_posts"`
	Timestamp   time.Time          `json:"timestamp"`
}

// Secure returns the caller's account, profile and recent posts in one
// payload.
func (h *Handler) Secure(w http.ResponseWriter, r *http.Request) {
	accountID, ok := token.AccountIDFromContext(r.Context())
	if !ok {
		h.writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}
	ctx := r.Context()

	a, err := h.svc.Get(ctx, accountID)
	if err != nil {
		h.logger.Warnw("secure overview failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "overview unavailable"})
		return
	}
	p, err := h.svc.GetProfile(ctx, accountID)
	if err != nil {
		h.logger.Warnw("secure overview failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "overview unavailable"})
		return
	}
	count, err := h.posts.CountByAuthor(ctx, accountID)
	if err != nil {
		h.logger.Warnw("secure overview failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "overview unavailable"})
		return
	}
	recent, err := h.posts.List(ctx, accountID, 5, 0)
	if err != nil {
		h.logger.Warnw("secure overview failed", "account_id", accountID, "err", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "overview unavailable"})
		return
	}

	h.writeJSON(w, http.StatusOK, SecureResponse{
		Message:     "Hello " + a.Username + "! This is your secure data.",
		Account:     a,
		Profile:     p,
		PostsCount:  count,
		RecentPosts: recent,
		Timestamp:   time.Now().UTC(),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
