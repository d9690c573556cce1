package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RequisitionStatus is the lifecycle state of a requisition
type RequisitionStatus string

const (
	RequisitionPending  RequisitionStatus = "pending"
	RequisitionApproved RequisitionStatus = "approved"
	RequisitionRejected RequisitionStatus = "rejected"
)

// ParseRequisitionStatus converts user input into a RequisitionStatus
func ParseRequisitionStatus(s string) (RequisitionStatus, error) {
	st := RequisitionStatus(strings.ToLower(strings.TrimSpace(s)))
	switch st {
	case RequisitionPending, RequisitionApproved, RequisitionRejected:
		return st, nil
	}
	return "", ErrInvalidStatus
}

// Commits reports whether requisitions in this status consume budget
func (s RequisitionStatus) Commits() bool {
	return s == RequisitionPending || s == RequisitionApproved
}

// Decision is the outcome a manager applies to a pending requisition
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status maps a decision to the terminal status it produces
func (d Decision) Status() (RequisitionStatus, error) {
	switch d {
	case DecisionApprove:
		return RequisitionApproved, nil
	case DecisionReject:
		return RequisitionRejected, nil
	}
	return "", ErrInvalidInput
}

// Requisition is a request to spend against a budget line
type Requisition struct {
	ID              int32             `json:"id" db:"id"`
	RequesterID     int32             `json:"requesterId" db:"requester_id"`
	CostCenterID    int32             `json:"costCenterId" db:"cost_center_id"`
	AccountPlanID   int32             `json:"accountPlanId" db:"account_plan_id"`
	Description     string            `json:"description" db:"description"`
	RequestedAmount decimal.Decimal   `json:"requestedAmount" db:"requested_amount"`
	RequestedAt     time.Time         `json:"requestedAt" db:"requested_at"`
	Status          RequisitionStatus `json:"status" db:"status"`
	ApproverID      *int32            `json:"approverId,omitempty" db:"approver_id"`
	DecidedAt       *time.Time        `json:"decidedAt,omitempty" db:"decided_at"`
}

// RequisitionDetail is the read model with joined display names
type RequisitionDetail struct {
	Requisition
	RequesterName   string  `json:"requesterName" db:"requester_name"`
	CostCenterName  string  `json:"costCenterName" db:"cost_center_name"`
	AccountPlanName string  `json:"accountPlanName" db:"account_plan_name"`
	ApproverName    *string `json:"approverName,omitempty" db:"approver_name"`
}

// RequisitionFilter narrows requisition listings. Nil fields are not applied.
// Year and Month filter on the period of RequestedAt.
type RequisitionFilter struct {
	Year         *int
	Month        *int
	CostCenterID *int32
	Status       *RequisitionStatus
}

// BudgetCheck decides whether a requisition fits a budget line given what is
// already committed against it. It runs while the line is locked.
type BudgetCheck func(budget *Budget, committed decimal.Decimal) error

type RequisitionRepository interface {
	// SumCommitted totals pending and approved requisitions of the line's
	// cost center and account plan requested within the line's month.
	SumCommitted(ctx context.Context, line BudgetLine) (decimal.Decimal, error)
	// CreateWithinBudget locks the budget row of line, computes the committed
	// amount, runs check and inserts req only if check returns nil. Returns
	// ErrBudgetNotAllocated when the line has no budget row.
	CreateWithinBudget(ctx context.Context, req *Requisition, line BudgetLine, check BudgetCheck) (*Requisition, error)
	GetByID(ctx context.Context, id int32) (*RequisitionDetail, error)
	List(ctx context.Context, filter RequisitionFilter) ([]*RequisitionDetail, error)
	// Decide moves a pending requisition to status. Returns ErrRequisitionDecided
	// when the row is no longer pending.
	Decide(ctx context.Context, id int32, status RequisitionStatus, approverID int32, decidedAt time.Time) (*Requisition, error)
}
