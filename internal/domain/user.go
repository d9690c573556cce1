package domain

import (
	"context"
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold
type Role string

const (
	RoleCollaborator Role = "collaborator"
	RoleManager      Role = "manager"
	RoleFinance      Role = "finance"
)

// ParseRole converts user input into a Role, case-insensitively
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleCollaborator, RoleManager, RoleFinance:
		return true
	}
	return false
}

// User represents a registered user. Users are immutable after creation.
type User struct {
	ID           int32     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Never expose hash
	Role         Role      `json:"role" db:"role"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// UserRepository defines the interface for user persistence operations
type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id int32) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
