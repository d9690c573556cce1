package handler

import (
	"net/http"
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/middleware"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles login, logout and the current-user endpoint
type AuthHandler struct {
	tokenService *service.APITokenService
	userService  *service.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(tokenService *service.APITokenService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		tokenService: tokenService,
		userService:  userService,
	}
}

// LoginRequest is the JSON request for logging in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the newly issued token. The token is shown only once.
type LoginResponse struct {
	Token       string       `json:"token"`
	TokenID     string       `json:"tokenId"`
	TokenPrefix string       `json:"tokenPrefix"`
	CreatedAt   time.Time    `json:"createdAt"`
	User        UserResponse `json:"user"`
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and issues an API token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err, "Failed to log in")
	}

	issued, err := h.tokenService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return handleServiceError(c, err, "Failed to log in")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Token:       issued.Secret,
		TokenID:     issued.Token.ID.String(),
		TokenPrefix: issued.Token.TokenPrefix,
		CreatedAt:   issued.Token.CreatedAt,
		User:        toUserResponse(issued.User),
	})
}

// Logout godoc
// @Summary Log out
// @Description Revokes the token used for this request
// @Tags auth
// @Security BearerAuth
// @Success 204 "No Content"
// @Failure 401 {object} ProblemDetails
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	userID := middleware.GetUserID(c)
	tokenID := middleware.GetAPITokenID(c)
	if userID == 0 || tokenID == uuid.Nil {
		return NewUnauthorizedError(c, "Token authentication required")
	}

	if err := h.tokenService.Revoke(c.Request().Context(), userID, tokenID); err != nil {
		return handleServiceError(c, err, "Failed to log out")
	}

	log.Info().Int32("user_id", userID).Str("token_id", tokenID.String()).Msg("User logged out")
	return c.NoContent(http.StatusNoContent)
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} ProblemDetails
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		return NewUnauthorizedError(c, "Authentication required")
	}

	user, err := h.userService.GetUser(c.Request().Context(), userID)
	if err != nil {
		return handleServiceError(c, err, "Failed to get current user")
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}
