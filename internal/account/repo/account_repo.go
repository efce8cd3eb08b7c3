package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/blogramhq/blogram/internal/account/entity"
)

// AccountRepo provides data access for the accounts table.
type AccountRepo interface {
	EnsureTable(ctx context.Context) error
	Create(ctx context.Context, a *entity.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
	GetByEmail(ctx context.Context, email string) (*entity.Account, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type accountRepo struct {
	db *sqlx.DB
}

func NewAccountRepo(db *sqlx.DB) AccountRepo { return &accountRepo{db: db} }

// EnsureTable creates the accounts table if not exists (idempotent).
// This is a convenience for early development; prefer migrations in production.
func (r *accountRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE EXTENSION IF NOT EXISTS citext;
CREATE TABLE IF NOT EXISTS accounts (
  id UUID PRIMARY KEY,
  username TEXT UNIQUE NOT NULL,
  email CITEXT UNIQUE,
  password_hash TEXT NOT NULL,
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  last_login_at TIMESTAMPTZ,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_accounts_username ON accounts(username);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const accountColumns = `id, username, email, password_hash, first_name, last_name, last_login_at, created_at, updated_at`

func (r *accountRepo) Create(ctx context.Context, a *entity.Account) error {
	const q = `INSERT INTO accounts (id, username, email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`
	if err := r.db.QueryRowxContext(ctx, q,
		a.ID, a.Username, a.Email, a.PasswordHash, a.FirstName, a.LastName,
	).Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	var a entity.Account
	if err := r.db.GetContext(ctx, &a, q, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) GetByUsername(ctx context.Context, username string) (*entity.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`
	var a entity.Account
	if err := r.db.GetContext(ctx, &a, q, username); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (*entity.Account, error) {
	q := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	var a entity.Account
	if err := r.db.GetContext(ctx, &a, q, email); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *accountRepo) TouchLastLogin(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE accounts SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *accountRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM accounts`); err != nil {
		return 0, fmt.Errorf("count accounts: %w", err)
	}
	return n, nil
}
