package middleware

import (
	"context"
	"errors"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

const (
	// APITokenIDKey holds the uuid.UUID of the token that authenticated the request
	APITokenIDKey contextKey = "api_token_id"
	// IsAPITokenAuthKey is true when the request carried a login-issued token
	IsAPITokenAuthKey contextKey = "is_api_token_auth"
)

// APITokenValidator resolves a raw brq_ token to its stored record
type APITokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*domain.APIToken, error)
}

// APITokenAuthMiddleware authenticates the bearer tokens issued on login
type APITokenAuthMiddleware struct {
	validator APITokenValidator
}

func NewAPITokenAuthMiddleware(validator APITokenValidator) *APITokenAuthMiddleware {
	return &APITokenAuthMiddleware{validator: validator}
}

// Authenticate accepts only "Bearer brq_..." credentials
func (m *APITokenAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return unauthorizedError(c, "Missing authorization header")
			}
			raw, ok := bearerToken(header)
			switch {
			case !ok:
				return unauthorizedError(c, "Invalid authorization header format")
			case !service.IsAPIToken(raw):
				return unauthorizedError(c, "Invalid token format")
			}
			return m.admit(c, next, raw)
		}
	}
}

// admit validates raw and, on success, runs next with the token owner attached
func (m *APITokenAuthMiddleware) admit(c echo.Context, next echo.HandlerFunc, raw string) error {
	token, err := m.validator.ValidateToken(c.Request().Context(), raw)
	if errors.Is(err, domain.ErrTokenNotFound) {
		log.Debug().Msg("Rejected unknown or revoked API token")
		return unauthorizedError(c, "Invalid or revoked API token")
	}
	if err != nil {
		log.Error().Err(err).Msg("API token lookup failed")
		return unauthorizedError(c, "Token validation failed")
	}

	ctx := context.WithValue(c.Request().Context(), UserIDKey, token.UserID)
	ctx = context.WithValue(ctx, APITokenIDKey, token.ID)
	ctx = context.WithValue(ctx, IsAPITokenAuthKey, true)
	c.SetRequest(c.Request().WithContext(ctx))

	return next(c)
}

// GetAPITokenID returns the authenticating token's id, or uuid.Nil
func GetAPITokenID(c echo.Context) uuid.UUID {
	id, _ := c.Request().Context().Value(APITokenIDKey).(uuid.UUID)
	return id
}

func IsAPITokenAuth(c echo.Context) bool {
	ok, _ := c.Request().Context().Value(IsAPITokenAuthKey).(bool)
	return ok
}
