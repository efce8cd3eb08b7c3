package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account represents a registered platform user. The identifier is immutable;
// display attributes may change after registration.
type Account struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FirstName    string     `json:"first_name" db:"first_name"`
	LastName     string     `json:"last_name" db:"last_name"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// Profile is the one-to-one extension of an Account. It is created lazily on
// first access by either front-end. TelegramUserID empty means unlinked;
// uniqueness across accounts is deliberately not enforced.
type Profile struct {
	AccountID      uuid.UUID  `json:"-" db:"account_id"`
	Bio            string     `json:"bio" db:"bio"`
	Location       string     `json:"location" db:"location"`
	BirthDate      *time.Time `json:"birth_date,omitempty" db:"birth_date"`
	TelegramUserID string     `json:"telegram_user_id" db:"telegram_user_id"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// Linked reports whether a channel identity is bound to this profile.
func (p *Profile) Linked() bool { return p.TelegramUserID != "" }

// UpdateProfileInput carries the caller-editable profile fields. The telegram
// link is owned by the account linker and is not settable over HTTP.
type UpdateProfileInput struct {
	Bio       *string    `json:"bio,omitempty"`
	Location  *string    `json:"location,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
}
