package service

import (
	"context"
	"errors"
	"strings"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// DirectoryService resolves users to roles and verifies credentials
type DirectoryService struct {
	userRepo domain.UserRepository
}

// NewDirectoryService creates a new DirectoryService
func NewDirectoryService(userRepo domain.UserRepository) *DirectoryService {
	return &DirectoryService{userRepo: userRepo}
}

// LookupRole returns the role of a user
func (s *DirectoryService) LookupRole(ctx context.Context, userID int32) (domain.Role, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Role, nil
}

// IsManager reports whether userID exists and holds the manager role
func (s *DirectoryService) IsManager(ctx context.Context, userID int32) (bool, error) {
	role, err := s.LookupRole(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return role == domain.RoleManager, nil
}

// VerifyCredentials returns the user when email and password match.
// Unknown emails and wrong passwords produce the same error.
func (s *DirectoryService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := checkPassword(user.PasswordHash, password)
	if err != nil {
		log.Error().Err(err).Int32("user_id", user.ID).Msg("Failed to compare password hash")
		return nil, err
	}
	if !ok {
		log.Debug().Int32("user_id", user.ID).Msg("Password mismatch")
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// GetUserIDByEmail maps an identity provider email claim to a registered user
func (s *DirectoryService) GetUserIDByEmail(ctx context.Context, email string) (int32, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}
