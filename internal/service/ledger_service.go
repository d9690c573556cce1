package service

import (
	"context"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/shopspring/decimal"
)

// LedgerService computes how much of a budget line is committed and whether a
// new request still fits
type LedgerService struct {
	requisitionRepo domain.RequisitionRepository
	budgetRepo      domain.BudgetRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(requisitionRepo domain.RequisitionRepository, budgetRepo domain.BudgetRepository) *LedgerService {
	return &LedgerService{
		requisitionRepo: requisitionRepo,
		budgetRepo:      budgetRepo,
	}
}

// ComputeCommitted returns the sum of pending and approved requisitions of a
// budget line requested within the line's month. Rejected requisitions never count.
func (s *LedgerService) ComputeCommitted(ctx context.Context, line domain.BudgetLine) (decimal.Decimal, error) {
	return s.requisitionRepo.SumCommitted(ctx, line)
}

// CheckAndAuthorize allows requested when committed + requested stays within
// the allocation. A nil budget means nothing was allocated for the period.
func (s *LedgerService) CheckAndAuthorize(budget *domain.Budget, committed, requested decimal.Decimal) error {
	return CheckAndAuthorize(budget, committed, requested)
}

// CheckAndAuthorize is the pure budget rule shared by the ledger and the
// requisition lifecycle
func CheckAndAuthorize(budget *domain.Budget, committed, requested decimal.Decimal) error {
	if budget == nil {
		return domain.ErrBudgetNotAllocated
	}
	if committed.Add(requested).GreaterThan(budget.AllocatedAmount) {
		return &domain.BudgetExceededError{
			Limit:     budget.AllocatedAmount,
			Committed: committed,
			Requested: requested,
		}
	}
	return nil
}

// Check returns a domain.BudgetCheck for requested, for use inside the
// locked submit transaction
func (s *LedgerService) Check(requested decimal.Decimal) domain.BudgetCheck {
	return func(budget *domain.Budget, committed decimal.Decimal) error {
		return CheckAndAuthorize(budget, committed, requested)
	}
}

// Summary returns allocated, committed and remaining amounts for a budget
func (s *LedgerService) Summary(ctx context.Context, budgetID int32) (*domain.BudgetSummary, error) {
	budget, err := s.budgetRepo.GetByID(ctx, budgetID)
	if err != nil {
		return nil, err
	}

	committed, err := s.ComputeCommitted(ctx, budget.Line())
	if err != nil {
		return nil, err
	}

	return &domain.BudgetSummary{
		Budget:    budget,
		Allocated: budget.AllocatedAmount,
		Committed: committed,
		Remaining: budget.AllocatedAmount.Sub(committed),
	}, nil
}
