package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")

	ErrUserNotFound        = errors.New("user not found")
	ErrCostCenterNotFound  = errors.New("cost center not found")
	ErrAccountPlanNotFound = errors.New("account plan not found")
	ErrBudgetNotFound      = errors.New("budget not found")
	ErrRequisitionNotFound = errors.New("requisition not found")
	ErrAttachmentNotFound  = errors.New("attachment not found")

	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrCodeRequired        = errors.New("code is required")
	ErrCodeTooLong         = errors.New("code exceeds maximum length")
	ErrDescriptionRequired = errors.New("description is required")
	ErrDescriptionTooLong  = errors.New("description exceeds maximum length")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrPasswordTooShort    = errors.New("password is too short")
	ErrInvalidRole         = errors.New("invalid role")
	ErrInvalidStatus       = errors.New("invalid requisition status")
	ErrInvalidPeriod       = errors.New("invalid year or month")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAmountPrecision     = errors.New("amount must have at most 2 decimal places")
	ErrNegativeAllocation  = errors.New("allocated amount must not be negative")
	ErrAmountTooLarge      = errors.New("amount must be less than 10000000000000000")

	ErrEmailAlreadyExists       = errors.New("email already registered")
	ErrCostCenterAlreadyExists  = errors.New("cost center with this name or code already exists")
	ErrAccountPlanAlreadyExists = errors.New("account plan with this name or code already exists")
	ErrBudgetAlreadyExists      = errors.New("budget already exists for this cost center, account plan and period")

	ErrInvalidRequester   = errors.New("requester does not exist")
	ErrInvalidCostCenter  = errors.New("cost center does not exist")
	ErrInvalidAccountPlan = errors.New("account plan does not exist")
	ErrInvalidManager     = errors.New("manager does not exist or does not hold the manager role")
	ErrInvalidParent      = errors.New("parent cost center does not exist")
	ErrInvalidApprover    = errors.New("approver does not exist or does not hold the manager role")

	ErrBudgetNotAllocated   = errors.New("no budget allocated for this cost center and account plan in the current period")
	ErrBudgetExceeded       = errors.New("budget exceeded")
	ErrRequisitionDecided   = errors.New("requisition has already been decided")
	ErrNotCostCenterManager = errors.New("not the manager of this cost center")
	ErrIdentityMismatch     = errors.New("acting user does not match the authenticated user")
	ErrNotParticipant       = errors.New("only the requester or the cost center manager can access this requisition's attachments")

	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenLimitReached  = errors.New("maximum number of active tokens reached")
	ErrTokenNotFound      = errors.New("token not found")
	ErrStorageDisabled    = errors.New("attachment storage is not configured")
)

// Validation constants
const (
	MaxNameLength        = 100
	MaxEmailLength       = 100
	MaxCodeLength        = 20
	MaxDescriptionLength = 500
	MinPasswordLength    = 6
	MinBudgetYear        = 2020
	MaxBudgetYear        = 2100
)

// AmountLimit is the exclusive upper bound on stored amounts. NUMERIC(18,2)
// leaves 16 digits before the decimal point.
var AmountLimit = decimal.New(1, 16)

// BudgetExceededError is returned when a requisition would push the committed
// amount of a budget line past its allocation.
type BudgetExceededError struct {
	Limit     decimal.Decimal
	Committed decimal.Decimal
	Requested decimal.Decimal
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: limit %s, committed %s, requested %s",
		e.Limit.StringFixed(2), e.Committed.StringFixed(2), e.Requested.StringFixed(2))
}

// Is makes errors.Is(err, ErrBudgetExceeded) match.
func (e *BudgetExceededError) Is(target error) bool {
	return target == ErrBudgetExceeded
}

// Available is what remains of the allocation before this request.
func (e *BudgetExceededError) Available() decimal.Decimal {
	return e.Limit.Sub(e.Committed)
}

// AlreadyDecidedError is returned when a decision targets a requisition that
// is no longer pending.
type AlreadyDecidedError struct {
	Status RequisitionStatus
}

func (e *AlreadyDecidedError) Error() string {
	return fmt.Sprintf("requisition has already been decided (status: %s)", e.Status)
}

// Is makes errors.Is(err, ErrRequisitionDecided) match.
func (e *AlreadyDecidedError) Is(target error) bool {
	return target == ErrRequisitionDecided
}
