package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// Auth0IDKey is the context key for the Auth0 user ID (subject)
	Auth0IDKey contextKey = "auth0_id"
	// UserIDKey is the context key for the authenticated user's ID
	UserIDKey contextKey = "user_id"
)

var errNoEmailClaim = errors.New("token carries no email claim")

// UserProvider maps an identity provider email to a registered user
type UserProvider interface {
	GetUserIDByEmail(ctx context.Context, email string) (int32, error)
}

// tokenValidator is satisfied by *validator.Validator
type tokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// AuthMiddleware validates Auth0 JWTs and resolves them to registered users
type AuthMiddleware struct {
	validator    tokenValidator
	userProvider UserProvider
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(domain, audience string, userProvider UserProvider) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return &AuthMiddleware{
		validator:    jwtValidator,
		userProvider: userProvider,
	}, nil
}

// Authenticate accepts only "Bearer <jwt>" credentials
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw, ok := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if !ok {
				return unauthorizedError(c, "Invalid authorization header format")
			}
			return m.admit(c, next, raw)
		}
	}
}

// admit validates raw and, on success, runs next with the claims and the
// matching registered user attached
func (m *AuthMiddleware) admit(c echo.Context, next echo.HandlerFunc, raw string) error {
	claims, userID, err := m.resolve(c.Request().Context(), raw)
	if err != nil {
		log.Debug().Err(err).Msg("JWT authentication failed")
		return unauthorizedError(c, "Invalid token or unregistered user")
	}

	ctx := context.WithValue(c.Request().Context(), ClaimsKey, claims)
	ctx = context.WithValue(ctx, Auth0IDKey, claims.RegisteredClaims.Subject)
	ctx = context.WithValue(ctx, UserIDKey, userID)
	c.SetRequest(c.Request().WithContext(ctx))

	return next(c)
}

// resolve validates token and looks up the user named by its email claim
func (m *AuthMiddleware) resolve(ctx context.Context, token string) (*validator.ValidatedClaims, int32, error) {
	raw, err := m.validator.ValidateToken(ctx, token)
	if err != nil {
		return nil, 0, err
	}
	claims, ok := raw.(*validator.ValidatedClaims)
	if !ok {
		return nil, 0, errors.New("unexpected claims type")
	}
	custom, _ := claims.CustomClaims.(*CustomClaims)
	if custom == nil || custom.Email == "" {
		return nil, 0, errNoEmailClaim
	}
	userID, err := m.userProvider.GetUserIDByEmail(ctx, custom.Email)
	if err != nil {
		return nil, 0, err
	}
	return claims, userID, nil
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// GetAuth0ID extracts the Auth0 user ID from the context
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetUserID returns the authenticated user's ID, or 0 for anonymous requests
func GetUserID(c echo.Context) int32 {
	if id, ok := c.Request().Context().Value(UserIDKey).(int32); ok {
		return id
	}
	return 0
}

// IsAuthenticated reports whether an identity was attached to the request
func IsAuthenticated(c echo.Context) bool {
	return GetUserID(c) != 0
}
