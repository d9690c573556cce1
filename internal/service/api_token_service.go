package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// TokenPrefix marks every token issued on login
	TokenPrefix = "brq_"

	secretBytes      = 32
	displayChars     = 8
	maxTokensPerUser = 10
	touchTimeout     = 5 * time.Second
)

// APITokenService issues and validates the bearer tokens handed out on login.
// Only a SHA-256 digest of each token is stored.
type APITokenService struct {
	repo      domain.APITokenRepository
	directory *DirectoryService
}

func NewAPITokenService(repo domain.APITokenRepository, directory *DirectoryService) *APITokenService {
	return &APITokenService{repo: repo, directory: directory}
}

// Login checks email and password and issues a new token. The plaintext is
// returned once in IssuedToken.Secret and cannot be recovered later.
func (s *APITokenService) Login(ctx context.Context, email, password string) (*domain.IssuedToken, error) {
	user, err := s.directory.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	n, err := s.repo.CountActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if n >= maxTokensPerUser {
		return nil, domain.ErrTokenLimitReached
	}

	secret, err := newSecret()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	token := &domain.APIToken{
		UserID:      user.ID,
		TokenHash:   digest(secret),
		TokenPrefix: secret[:len(TokenPrefix)+displayChars] + "...",
	}
	if err := s.repo.Create(ctx, token); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	log.Info().Int32("user_id", user.ID).Str("token_id", token.ID.String()).Msg("Issued API token")
	return &domain.IssuedToken{Token: token, Secret: secret, User: user}, nil
}

// Revoke invalidates tokenID. Tokens owned by another user read as
// domain.ErrTokenNotFound.
func (s *APITokenService) Revoke(ctx context.Context, userID int32, tokenID uuid.UUID) error {
	if err := s.repo.Revoke(ctx, userID, tokenID); err != nil {
		return err
	}
	log.Info().Int32("user_id", userID).Str("token_id", tokenID.String()).Msg("Revoked API token")
	return nil
}

// ValidateToken returns the live token matching raw. Usage is recorded in the
// background and never fails the request.
func (s *APITokenService) ValidateToken(ctx context.Context, raw string) (*domain.APIToken, error) {
	if !IsAPIToken(raw) {
		return nil, domain.ErrTokenNotFound
	}
	token, err := s.repo.GetByHash(ctx, digest(raw))
	if err != nil {
		return nil, err
	}

	go s.touch(context.WithoutCancel(ctx), token.ID)
	return token, nil
}

func (s *APITokenService) touch(ctx context.Context, id uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, touchTimeout)
	defer cancel()
	if err := s.repo.UpdateLastUsed(ctx, id); err != nil {
		log.Warn().Err(err).Str("token_id", id.String()).Msg("Could not record token use")
	}
}

// IsAPIToken reports whether raw is shaped like a login-issued token rather
// than a JWT
func IsAPIToken(raw string) bool {
	return len(raw) > len(TokenPrefix) && strings.HasPrefix(raw, TokenPrefix)
}

// newSecret returns TokenPrefix followed by 256 random bits, base64url encoded
func newSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return TokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

func digest(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
