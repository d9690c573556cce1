package service

import (
	"context"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserInput holds the fields accepted when registering a user
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UserService handles user registration and lookup
type UserService struct {
	userRepo domain.UserRepository
	hashCost int
}

// NewUserService creates a new UserService
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
		hashCost: bcrypt.DefaultCost,
	}
}

// CreateUser validates input, hashes the password and stores the user.
// The plaintext password is never stored or returned.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > domain.MaxNameLength {
		return nil, domain.ErrNameTooLong
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if utf8.RuneCountInString(email) > domain.MaxEmailLength {
		return nil, domain.ErrInvalidEmail
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, domain.ErrInvalidEmail
	}

	if utf8.RuneCountInString(input.Password) < domain.MinPasswordLength {
		return nil, domain.ErrPasswordTooShort
	}

	role, err := domain.ParseRole(input.Role)
	if err != nil {
		return nil, err
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := hashPassword(input.Password, s.hashCost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int32("user_id", user.ID).Str("role", string(user.Role)).Msg("User created")
	return user, nil
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers retrieves all users
func (s *UserService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}
