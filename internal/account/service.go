package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/blogramhq/blogram/internal/account/entity"
	"github.com/blogramhq/blogram/internal/account/repo"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var (
	ErrNotFound       = errors.New("account not found")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrUsernameTaken  = errors.New("username or email already registered")
)

// Service orchestrates registration, authentication and profile flows.
type Service struct {
	accounts repo.AccountRepo
	profiles repo.ProfileRepo
	hasher   PasswordHasher
}

func NewService(accounts repo.AccountRepo, profiles repo.ProfileRepo, hasher PasswordHasher) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &Service{accounts: accounts, profiles: profiles, hasher: hasher}
}

// Register creates an account with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password, firstName, lastName string) (*entity.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, errors.New("username and password required")
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	a := &entity.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return a, nil
}

// Authenticate verifies a username-or-email identifier and password.
// On success it updates last_login_at and returns the account.
func (s *Service) Authenticate(ctx context.Context, identifier, password string) (*entity.Account, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, ErrBadCredentials
	}

	var a *entity.Account
	var err error
	if strings.Contains(identifier, "@") {
		a, err = s.accounts.GetByEmail(ctx, identifier)
	} else {
		a, err = s.accounts.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		} // avoid user enumeration
		return nil, err
	}

	if a.PasswordHash == "" || !s.hasher.Verify(a.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	if err := s.accounts.TouchLastLogin(ctx, a.ID); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns an account by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	a, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetProfile returns the account's profile, creating an empty one on first
// access.
func (s *Service) GetProfile(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error) {
	return s.profiles.GetOrCreate(ctx, accountID)
}

// UpdateProfile applies caller-editable profile fields. The profile is
// created first if it does not exist so a fresh account can PUT immediately.
func (s *Service) UpdateProfile(ctx context.Context, accountID uuid.UUID, in *entity.UpdateProfileInput) (*entity.Profile, error) {
	if _, err := s.profiles.GetOrCreate(ctx, accountID); err != nil {
		return nil, err
	}
	return s.profiles.Update(ctx, accountID, in)
}
