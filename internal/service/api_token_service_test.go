package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/testutil"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// newTokenService returns a token service over one registered user,
// alice@example.com with password "secret1"
func newTokenService(t *testing.T) (*APITokenService, *testutil.MockAPITokenRepository, *domain.User) {
	t.Helper()
	users := testutil.NewMockUserRepository()
	hash, err := hashPassword("secret1", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashPassword() error = %v", err)
	}
	user := &domain.User{ID: 1, Name: "Alice", Email: "alice@example.com", PasswordHash: hash, Role: domain.RoleCollaborator}
	users.AddUser(user)

	repo := testutil.NewMockAPITokenRepository()
	return NewAPITokenService(repo, NewDirectoryService(users)), repo, user
}

func TestNewSecret(t *testing.T) {
	first, err := newSecret()
	if err != nil {
		t.Fatalf("newSecret() error = %v", err)
	}
	second, err := newSecret()
	if err != nil {
		t.Fatalf("newSecret() error = %v", err)
	}

	// prefix plus 32 bytes of unpadded base64url
	if len(first) != len(TokenPrefix)+43 {
		t.Errorf("len = %d, want %d", len(first), len(TokenPrefix)+43)
	}
	if !IsAPIToken(first) {
		t.Errorf("%q is not recognised as an API token", first)
	}
	if first == second {
		t.Error("two secrets collided")
	}
}

func TestDigest(t *testing.T) {
	sum := digest("brq_testtoken123")
	if len(sum) != 64 {
		t.Errorf("len = %d, want 64 hex chars", len(sum))
	}
	if sum != digest("brq_testtoken123") {
		t.Error("digest is not deterministic")
	}
	if sum == digest("brq_differenttoken") {
		t.Error("different tokens share a digest")
	}
}

func TestIsAPIToken(t *testing.T) {
	tests := []struct {
		token    string
		expected bool
	}{
		{"brq_abc", true},
		{"brq_", false},
		{"eyJhbGciOiJSUzI1NiJ9.payload.sig", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			if got := IsAPIToken(tt.token); got != tt.expected {
				t.Errorf("IsAPIToken(%q) = %v, expected %v", tt.token, got, tt.expected)
			}
		})
	}
}

func TestAPITokenService_Login(t *testing.T) {
	service, repo, user := newTokenService(t)

	issued, err := service.Login(context.Background(), "  Alice@Example.com ", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if !strings.HasPrefix(issued.Secret, TokenPrefix) {
		t.Errorf("Token should start with %q, got %s", TokenPrefix, issued.Secret[:6])
	}
	if !strings.HasPrefix(issued.Token.TokenPrefix, TokenPrefix) || !strings.HasSuffix(issued.Token.TokenPrefix, "...") {
		t.Errorf("Unexpected display prefix %s", issued.Token.TokenPrefix)
	}
	if issued.Token.TokenHash != digest(issued.Secret) {
		t.Error("Stored hash should match the issued secret")
	}
	if issued.Token.UserID != user.ID || issued.User.ID != user.ID {
		t.Errorf("Token should belong to user %d", user.ID)
	}
	if len(repo.Tokens) != 1 {
		t.Errorf("Expected 1 stored token, got %d", len(repo.Tokens))
	}
}

func TestAPITokenService_LoginInvalidCredentials(t *testing.T) {
	service, repo, _ := newTokenService(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "alice@example.com", "wrong!"},
		{"unknown email", "nobody@example.com", "secret1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.Login(context.Background(), tt.email, tt.password)
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials, got %v", err)
			}
		})
	}

	if len(repo.Tokens) != 0 {
		t.Error("No token should be issued for failed logins")
	}
}

func TestAPITokenService_LoginTokenLimit(t *testing.T) {
	service, _, _ := newTokenService(t)
	ctx := context.Background()

	for i := 0; i < maxTokensPerUser; i++ {
		if _, err := service.Login(ctx, "alice@example.com", "secret1"); err != nil {
			t.Fatalf("Login() #%d error = %v", i, err)
		}
	}

	if _, err := service.Login(ctx, "alice@example.com", "secret1"); !errors.Is(err, domain.ErrTokenLimitReached) {
		t.Errorf("Expected ErrTokenLimitReached, got %v", err)
	}
}

func TestAPITokenService_ValidateToken(t *testing.T) {
	service, _, user := newTokenService(t)
	ctx := context.Background()

	issued, err := service.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	token, err := service.ValidateToken(ctx, issued.Secret)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if token.UserID != user.ID {
		t.Errorf("Expected user %d, got %d", user.ID, token.UserID)
	}
}

func TestAPITokenService_ValidateToken_Invalid(t *testing.T) {
	service, _, _ := newTokenService(t)
	ctx := context.Background()

	if _, err := service.ValidateToken(ctx, "invalid_token"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound for wrong prefix, got %v", err)
	}
	if _, err := service.ValidateToken(ctx, "brq_nonexistent"); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound for unknown token, got %v", err)
	}
}

func TestAPITokenService_Revoke(t *testing.T) {
	service, _, user := newTokenService(t)
	ctx := context.Background()

	issued, err := service.Login(ctx, "alice@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	// Another user's ID cannot revoke the token
	if err := service.Revoke(ctx, user.ID+1, issued.Token.ID); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound for foreign revoke, got %v", err)
	}

	if err := service.Revoke(ctx, user.ID, issued.Token.ID); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}

	if _, err := service.ValidateToken(ctx, issued.Secret); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Revoked token should not validate, got %v", err)
	}

	if err := service.Revoke(ctx, user.ID, uuid.New()); !errors.Is(err, domain.ErrTokenNotFound) {
		t.Errorf("Expected ErrTokenNotFound for unknown token, got %v", err)
	}
}
