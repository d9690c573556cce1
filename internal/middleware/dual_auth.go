package middleware

import (
	"context"
	"strings"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DualAuthMiddleware accepts both login-issued API tokens and, when Auth0 is
// configured, JWTs. When required is false, requests without credentials
// pass through anonymously; credentials that are present must still be valid.
type DualAuthMiddleware struct {
	jwtAuth      *AuthMiddleware
	apiTokenAuth *APITokenAuthMiddleware
	required     bool
}

// NewDualAuthMiddleware creates a new DualAuthMiddleware. jwtAuth may be nil.
func NewDualAuthMiddleware(jwtAuth *AuthMiddleware, apiTokenAuth *APITokenAuthMiddleware, required bool) *DualAuthMiddleware {
	return &DualAuthMiddleware{
		jwtAuth:      jwtAuth,
		apiTokenAuth: apiTokenAuth,
		required:     required,
	}
}

// Authenticate returns an Echo middleware that dispatches on token shape
func (m *DualAuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				if !m.required {
					return next(c)
				}
				return unauthorizedError(c, "Missing authorization header")
			}

			token, ok := bearerToken(authHeader)
			if !ok {
				if !service.IsAPIToken(authHeader) {
					return unauthorizedError(c, "Invalid authorization header format")
				}
				// Accept API tokens without Bearer prefix (for Swagger/simple clients)
				token = authHeader
			}

			if service.IsAPIToken(token) {
				log.Debug().Msg("Attempting API token authentication")
				return m.apiTokenAuth.admit(c, next, token)
			}

			if m.jwtAuth == nil {
				return unauthorizedError(c, "Unsupported token type")
			}
			log.Debug().Msg("Attempting JWT authentication")
			return m.jwtAuth.admit(c, next, token)
		}
	}
}

// Required returns a middleware that rejects anonymous requests regardless of
// the configured mode
func (m *DualAuthMiddleware) Required() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !IsAuthenticated(c) {
				return unauthorizedError(c, "Authentication required")
			}
			return next(c)
		}
	}
}

// ResolveToken maps a raw token to a user ID. The WebSocket endpoint uses it
// because browsers cannot set headers on the upgrade request.
func (m *DualAuthMiddleware) ResolveToken(ctx context.Context, token string) (int32, error) {
	token = strings.TrimSpace(token)
	if service.IsAPIToken(token) {
		apiToken, err := m.apiTokenAuth.validator.ValidateToken(ctx, token)
		if err != nil {
			return 0, err
		}
		return apiToken.UserID, nil
	}
	if m.jwtAuth == nil || token == "" {
		return 0, domain.ErrUnauthorized
	}
	_, userID, err := m.jwtAuth.resolve(ctx, token)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}
	return userID, nil
}
