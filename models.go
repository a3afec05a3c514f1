package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleGuest is a guest role (ie. browse public tracks)
	RoleGuest UserRole = "guest"
	// RoleUser is a regular listener account
	RoleUser UserRole = "user"
	// RoleArtist can publish and manage tracks
	RoleArtist UserRole = "artist"
	// RoleAdmin can manage every account and resource
	RoleAdmin UserRole = "admin"
)

// User is the user model. The reset token digest and its expiry live on
// the row itself: issuing a new token overwrites the previous one, so
// at most one reset token is live per account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID                  uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role                UserRole       `bun:"user_role,notnull" json:"user_role,omitempty"`
	FirstName           string         `bun:"first_name" json:"first_name,omitempty"`
	LastName            string         `bun:"last_name" json:"last_name,omitempty"`
	Username            string         `bun:"username,notnull,unique" json:"username,omitempty"`
	Email               string         `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone               string         `bun:"phone_number" json:"phone_number,omitempty"`
	PasswordHash        string         `bun:"password_hash" json:"password_hash,omitempty"`
	PasswordChangedAt   *time.Time     `bun:"password_changed_at,nullzero" json:"password_changed_at,omitempty"`
	ResetTokenHash      *string        `bun:"reset_token_hash,nullzero" json:"reset_token_hash,omitempty"`
	ResetTokenExpiresAt *time.Time     `bun:"reset_token_expires_at,nullzero" json:"reset_token_expires_at,omitempty"`
	LoginAttempts       int            `bun:"login_attempts" json:"login_attempts,omitempty"`
	LoginAttemptAt      *time.Time     `bun:"login_attempt_at" json:"login_attempt_at,omitempty"`
	LoggedInAt          *time.Time     `bun:"loggedin_at" json:"loggedin_at,omitempty"`
	Metadata            map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt           *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt           *time.Time     `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// ChangedPasswordAfter reports whether the account's password changed
// after the given instant. Tokens issued before that moment are stale.
// The instant comes from a JWT iat claim, which only carries whole
// seconds, so the stored timestamp is truncated to match. A change and
// an issuance inside the same second read as not-after.
func (u *User) ChangedPasswordAfter(t time.Time) bool {
	if u == nil || u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.Truncate(time.Second).After(t)
}

// HasActiveResetToken reports whether a reset token digest is stored
// and not yet past its expiry at the given instant.
func (u *User) HasActiveResetToken(now time.Time) bool {
	if u == nil || u.ResetTokenHash == nil || u.ResetTokenExpiresAt == nil {
		return false
	}
	return u.ResetTokenExpiresAt.After(now)
}
