package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/blogramhq/blogram/internal/account/entity"
)

// ProfileRepo provides data access for the profiles table. Profiles are keyed
// by account ID (at most one per account) and created on first access.
type ProfileRepo interface {
	EnsureTable(ctx context.Context) error
	// GetOrCreate returns the profile for an account, inserting an empty one
	// if none exists yet. Safe under concurrent first-time access: the insert
	// is ON CONFLICT DO NOTHING against the primary key.
	GetOrCreate(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error)
	// Update applies the caller-editable fields and returns the stored row.
	Update(ctx context.Context, accountID uuid.UUID, in *entity.UpdateProfileInput) (*entity.Profile, error)
	// BindTelegramUser atomically creates-or-updates the profile row and sets
	// its telegram user ID in a single upsert statement. Concurrent calls for
	// the same account serialize on the row; the last write wins.
	BindTelegramUser(ctx context.Context, accountID uuid.UUID, telegramUserID string) error
	CountLinked(ctx context.Context) (int64, error)
}

type profileRepo struct {
	db *sqlx.DB
}

func NewProfileRepo(db *sqlx.DB) ProfileRepo { return &profileRepo{db: db} }

func (r *profileRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS profiles (
  account_id UUID PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
  bio TEXT NOT NULL DEFAULT '',
  location TEXT NOT NULL DEFAULT '',
  birth_date DATE,
  telegram_user_id TEXT NOT NULL DEFAULT '',
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const profileColumns = `account_id, bio, location, birth_date, telegram_user_id, created_at, updated_at`

func (r *profileRepo) GetOrCreate(ctx context.Context, accountID uuid.UUID) (*entity.Profile, error) {
	const ins = `INSERT INTO profiles (account_id) VALUES ($1) ON CONFLICT (account_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, ins, accountID); err != nil {
		return nil, fmt.Errorf("ensure profile: %w", err)
	}
	q := `SELECT ` + profileColumns + ` FROM profiles WHERE account_id = $1`
	var p entity.Profile
	if err := r.db.GetContext(ctx, &p, q, accountID); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) Update(ctx context.Context, accountID uuid.UUID, in *entity.UpdateProfileInput) (*entity.Profile, error) {
	// build a partial update, muzeeng-style
	query := `UPDATE profiles SET updated_at = NOW()`
	args := []interface{}{}
	argCount := 1

	if in.Bio != nil {
		query += fmt.Sprintf(", bio = $%d", argCount)
		args = append(args, *in.Bio)
		argCount++
	}
	if in.Location != nil {
		query += fmt.Sprintf(", location = $%d", argCount)
		args = append(args, *in.Location)
		argCount++
	}
	if in.BirthDate != nil {
		query += fmt.Sprintf(", birth_date = $%d", argCount)
		args = append(args, in.BirthDate.Format(time.DateOnly))
		argCount++
	}

	query += fmt.Sprintf(" WHERE account_id = $%d RETURNING %s", argCount, profileColumns)
	args = append(args, accountID)

	var p entity.Profile
	if err := r.db.GetContext(ctx, &p, query, args...); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &p, nil
}

func (r *profileRepo) BindTelegramUser(ctx context.Context, accountID uuid.UUID, telegramUserID string) error {
	const q = `INSERT INTO profiles (account_id, telegram_user_id) VALUES ($1, $2)
		ON CONFLICT (account_id) DO UPDATE
		SET telegram_user_id = EXCLUDED.telegram_user_id, updated_at = NOW()`
	if _, err := r.db.ExecContext(ctx, q, accountID, telegramUserID); err != nil {
		return fmt.Errorf("bind telegram user: %w", err)
	}
	return nil
}

func (r *profileRepo) CountLinked(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profiles WHERE telegram_user_id <> ''`); err != nil {
		return 0, fmt.Errorf("count linked profiles: %w", err)
	}
	return n, nil
}
