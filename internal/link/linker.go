// Package link binds Telegram channel identities to platform accounts.
//
// The linker is the sole writer of the telegram_user_id field. Both entry
// points go through Link, which resolves a claimed username and performs the
// bind as a single atomic upsert, so concurrent calls for the same account
// can never create a second profile row and the latest call wins.
package link

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/blogramhq/blogram/internal/account/entity"
)

// AccountLookup is the slice of the identity store the linker reads.
type AccountLookup interface {
	GetByUsername(ctx context.Context, username string) (*entity.Account, error)
}

// ProfileBinder is the slice of the profile store the linker writes. The
// implementation must make the create-or-update atomic (the Postgres repo
// uses INSERT ... ON CONFLICT (account_id) DO UPDATE).
type ProfileBinder interface {
	BindTelegramUser(ctx context.Context, accountID uuid.UUID, telegramUserID string) error
}

// LinkResult is the typed outcome of a link attempt. An unknown username is
// a result, not an error: the caller turns it into an instructive reply.
type LinkResult struct {
	// Linked is true when the channel identity was bound to the account.
	Linked bool
	// Username echoes the claimed username for reply formatting.
	Username string
}

// Linker resolves a claimed username and binds a channel identity to it.
type Linker struct {
	accounts AccountLookup
	profiles ProfileBinder
}

func NewLinker(accounts AccountLookup, profiles ProfileBinder) *Linker {
	return &Linker{accounts: accounts, profiles: profiles}
}

// Link associates a Telegram user ID with the account named by
// claimedUsername.
//
// When no such account exists the result reports Linked=false and storage is
// left untouched. When the account exists, its profile row is created or
// updated in one statement; re-linking an already linked profile simply
// overwrites the previous channel identity (last write wins). Errors are
// returned only for storage failures.
func (l *Linker) Link(ctx context.Context, telegramUserID, claimedUsername string) (LinkResult, error) {
	username := strings.TrimSpace(claimedUsername)
	if username == "" {
		return LinkResult{}, errors.New("username required")
	}

	a, err := l.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LinkResult{Linked: false, Username: username}, nil
		}
		return LinkResult{}, fmt.Errorf("lookup account %q: %w", username, err)
	}

	if err := l.profiles.BindTelegramUser(ctx, a.ID, telegramUserID); err != nil {
		return LinkResult{}, fmt.Errorf("link account %q: %w", username, err)
	}
	return LinkResult{Linked: true, Username: username}, nil
}
