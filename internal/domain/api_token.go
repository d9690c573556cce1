package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// APIToken is an opaque bearer token issued on login
type APIToken struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      int32      `json:"userId" db:"user_id"`
	TokenHash   string     `json:"-" db:"token_hash"` // Never expose hash
	TokenPrefix string     `json:"tokenPrefix" db:"token_prefix"`
	LastUsedAt  *time.Time `json:"lastUsedAt,omitempty" db:"last_used_at"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty" db:"revoked_at"`
}

// IssuedToken includes the full token for one-time display
type IssuedToken struct {
	Token  *APIToken
	Secret string
	User   *User
}

// APITokenRepository defines the interface for API token persistence
type APITokenRepository interface {
	Create(ctx context.Context, token *APIToken) error
	GetByHash(ctx context.Context, hash string) (*APIToken, error)
	CountActiveByUser(ctx context.Context, userID int32) (int, error)
	Revoke(ctx context.Context, userID int32, id uuid.UUID) error
	UpdateLastUsed(ctx context.Context, id uuid.UUID) error
}
