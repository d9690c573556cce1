package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`

	// Budget exceeded extension members
	Limit     string `json:"limit,omitempty"`
	Committed string `json:"committed,omitempty"`
	Requested string `json:"requested,omitempty"`

	// Already decided extension member
	CurrentStatus string `json:"currentStatus,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation     = "https://budgetreq.app/errors/validation"
	ErrorTypeBudgetExceeded = "https://budgetreq.app/errors/budget-exceeded"
	ErrorTypeNotFound       = "https://budgetreq.app/errors/not-found"
	ErrorTypeUnauthorized   = "https://budgetreq.app/errors/unauthorized"
	ErrorTypeForbidden      = "https://budgetreq.app/errors/forbidden"
	ErrorTypeConflict       = "https://budgetreq.app/errors/conflict"
	ErrorTypeUnavailable    = "https://budgetreq.app/errors/unavailable"
	ErrorTypeInternal       = "https://budgetreq.app/errors/internal"
)

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:     ErrorTypeValidation,
		Title:    "Validation Error",
		Status:   http.StatusBadRequest,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errors,
	})
}

// NewBudgetExceededError reports the ledger figures that caused a denial
func NewBudgetExceededError(c echo.Context, exceeded *domain.BudgetExceededError) error {
	return c.JSON(http.StatusBadRequest, ProblemDetails{
		Type:      ErrorTypeBudgetExceeded,
		Title:     "Budget Exceeded",
		Status:    http.StatusBadRequest,
		Detail:    fmt.Sprintf("Requested %s but only %s of %s remains", exceeded.Requested.StringFixed(2), exceeded.Available().StringFixed(2), exceeded.Limit.StringFixed(2)),
		Instance:  c.Request().URL.Path,
		Limit:     exceeded.Limit.StringFixed(2),
		Committed: exceeded.Committed.StringFixed(2),
		Requested: exceeded.Requested.StringFixed(2),
	})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return c.JSON(http.StatusNotFound, ProblemDetails{
		Type:     ErrorTypeNotFound,
		Title:    "Not Found",
		Status:   http.StatusNotFound,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return c.JSON(http.StatusUnauthorized, ProblemDetails{
		Type:     ErrorTypeUnauthorized,
		Title:    "Unauthorized",
		Status:   http.StatusUnauthorized,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewForbiddenError creates a forbidden error response
func NewForbiddenError(c echo.Context, detail string) error {
	return c.JSON(http.StatusForbidden, ProblemDetails{
		Type:     ErrorTypeForbidden,
		Title:    "Forbidden",
		Status:   http.StatusForbidden,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return c.JSON(http.StatusConflict, ProblemDetails{
		Type:     ErrorTypeConflict,
		Title:    "Conflict",
		Status:   http.StatusConflict,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewUnavailableError creates a service unavailable error response
func NewUnavailableError(c echo.Context, detail string) error {
	return c.JSON(http.StatusServiceUnavailable, ProblemDetails{
		Type:     ErrorTypeUnavailable,
		Title:    "Service Unavailable",
		Status:   http.StatusServiceUnavailable,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return c.JSON(http.StatusInternalServerError, ProblemDetails{
		Type:     ErrorTypeInternal,
		Title:    "Internal Server Error",
		Status:   http.StatusInternalServerError,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

var (
	badRequestErrors = []error{
		domain.ErrInvalidInput,
		domain.ErrNameRequired, domain.ErrNameTooLong,
		domain.ErrCodeRequired, domain.ErrCodeTooLong,
		domain.ErrDescriptionRequired, domain.ErrDescriptionTooLong,
		domain.ErrInvalidEmail, domain.ErrPasswordTooShort, domain.ErrInvalidRole,
		domain.ErrInvalidStatus, domain.ErrInvalidPeriod,
		domain.ErrInvalidAmount, domain.ErrAmountPrecision, domain.ErrNegativeAllocation, domain.ErrAmountTooLarge,
		domain.ErrInvalidRequester, domain.ErrInvalidCostCenter, domain.ErrInvalidAccountPlan,
		domain.ErrInvalidManager, domain.ErrInvalidParent, domain.ErrInvalidApprover,
		domain.ErrBudgetNotAllocated,
		service.ErrImageTooLarge, service.ErrInvalidFormat, service.ErrImageTooSmall, service.ErrInvalidImageData,
	}
	notFoundErrors = []error{
		domain.ErrNotFound, domain.ErrUserNotFound, domain.ErrCostCenterNotFound,
		domain.ErrAccountPlanNotFound, domain.ErrBudgetNotFound,
		domain.ErrRequisitionNotFound, domain.ErrAttachmentNotFound,
	}
	conflictErrors = []error{
		domain.ErrAlreadyExists, domain.ErrEmailAlreadyExists, domain.ErrCostCenterAlreadyExists,
		domain.ErrAccountPlanAlreadyExists, domain.ErrBudgetAlreadyExists, domain.ErrTokenLimitReached,
	}
	forbiddenErrors = []error{
		domain.ErrForbidden, domain.ErrNotCostCenterManager, domain.ErrIdentityMismatch, domain.ErrNotParticipant,
	}
	unauthorizedErrors = []error{
		domain.ErrUnauthorized, domain.ErrInvalidCredentials, domain.ErrTokenNotFound,
	}
)

func matchesAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// handleServiceError maps a service error to its problem response. Errors that
// map to no known domain error are logged and reported as 500 with msg.
func handleServiceError(c echo.Context, err error, msg string) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return NewValidationError(c, reqErr.detail, reqErr.fields)
	}

	var exceeded *domain.BudgetExceededError
	if errors.As(err, &exceeded) {
		return NewBudgetExceededError(c, exceeded)
	}

	var decided *domain.AlreadyDecidedError
	if errors.As(err, &decided) {
		return c.JSON(http.StatusConflict, ProblemDetails{
			Type:          ErrorTypeConflict,
			Title:         "Conflict",
			Status:        http.StatusConflict,
			Detail:        err.Error(),
			Instance:      c.Request().URL.Path,
			CurrentStatus: string(decided.Status),
		})
	}

	switch {
	case errors.Is(err, domain.ErrRequisitionDecided):
		return NewConflictError(c, err.Error())
	case matchesAny(err, badRequestErrors):
		return NewValidationError(c, err.Error(), nil)
	case matchesAny(err, notFoundErrors):
		return NewNotFoundError(c, err.Error())
	case matchesAny(err, conflictErrors):
		return NewConflictError(c, err.Error())
	case matchesAny(err, forbiddenErrors):
		return NewForbiddenError(c, err.Error())
	case matchesAny(err, unauthorizedErrors):
		return NewUnauthorizedError(c, err.Error())
	case errors.Is(err, domain.ErrStorageDisabled):
		return NewUnavailableError(c, err.Error())
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(msg)
	return NewInternalError(c, msg)
}
