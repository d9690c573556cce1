package service

import (
	"context"
	"errors"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CreateBudgetInput holds the fields accepted when allocating a budget
type CreateBudgetInput struct {
	CostCenterID    int32
	AccountPlanID   int32
	Year            int
	Month           int
	AllocatedAmount decimal.Decimal
}

// BudgetService handles budget allocation business logic
type BudgetService struct {
	budgetRepo      domain.BudgetRepository
	costCenterRepo  domain.CostCenterRepository
	accountPlanRepo domain.AccountPlanRepository
	ledger          *LedgerService
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.BudgetRepository, costCenterRepo domain.CostCenterRepository, accountPlanRepo domain.AccountPlanRepository, ledger *LedgerService) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		costCenterRepo:  costCenterRepo,
		accountPlanRepo: accountPlanRepo,
		ledger:          ledger,
	}
}

// CreateBudget allocates an amount to a budget line. At most one budget may
// exist per cost center, account plan, year and month.
func (s *BudgetService) CreateBudget(ctx context.Context, input CreateBudgetInput) (*domain.BudgetDetail, error) {
	if !util.ValidPeriod(input.Year, input.Month, domain.MinBudgetYear, domain.MaxBudgetYear) {
		return nil, domain.ErrInvalidPeriod
	}
	if input.AllocatedAmount.IsNegative() {
		return nil, domain.ErrNegativeAllocation
	}
	if !hasCentPrecision(input.AllocatedAmount) {
		return nil, domain.ErrAmountPrecision
	}
	if !withinAmountLimit(input.AllocatedAmount) {
		return nil, domain.ErrAmountTooLarge
	}

	if _, err := s.costCenterRepo.GetByID(ctx, input.CostCenterID); err != nil {
		if errors.Is(err, domain.ErrCostCenterNotFound) {
			return nil, domain.ErrInvalidCostCenter
		}
		return nil, err
	}
	if _, err := s.accountPlanRepo.GetByID(ctx, input.AccountPlanID); err != nil {
		if errors.Is(err, domain.ErrAccountPlanNotFound) {
			return nil, domain.ErrInvalidAccountPlan
		}
		return nil, err
	}

	budget := &domain.Budget{
		CostCenterID:    input.CostCenterID,
		AccountPlanID:   input.AccountPlanID,
		Year:            input.Year,
		Month:           input.Month,
		AllocatedAmount: input.AllocatedAmount,
	}

	if _, err := s.budgetRepo.GetByLine(ctx, budget.Line()); err == nil {
		return nil, domain.ErrBudgetAlreadyExists
	} else if !errors.Is(err, domain.ErrBudgetNotFound) {
		return nil, err
	}

	// The unique constraint still guards against a concurrent insert of the same line
	created, err := s.budgetRepo.Create(ctx, budget)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int32("budget_id", created.ID).
		Int32("cost_center_id", created.CostCenterID).
		Int32("account_plan_id", created.AccountPlanID).
		Int("year", created.Year).
		Int("month", created.Month).
		Str("allocated", created.AllocatedAmount.StringFixed(2)).
		Msg("Budget created")

	return s.budgetRepo.GetByID(ctx, created.ID)
}

// GetBudget retrieves a budget with cost center and account plan names
func (s *BudgetService) GetBudget(ctx context.Context, id int32) (*domain.BudgetDetail, error) {
	return s.budgetRepo.GetByID(ctx, id)
}

// ListBudgets retrieves budgets matching filter
func (s *BudgetService) ListBudgets(ctx context.Context, filter domain.BudgetFilter) ([]*domain.BudgetDetail, error) {
	if filter.Month != nil && (*filter.Month < 1 || *filter.Month > 12) {
		return nil, domain.ErrInvalidPeriod
	}
	return s.budgetRepo.List(ctx, filter)
}

// GetSummary returns the ledger view of a budget
func (s *BudgetService) GetSummary(ctx context.Context, id int32) (*domain.BudgetSummary, error) {
	return s.ledger.Summary(ctx, id)
}

// hasCentPrecision reports whether amount needs no rounding to two places
func hasCentPrecision(amount decimal.Decimal) bool {
	return amount.Equal(amount.Round(2))
}

// withinAmountLimit reports whether amount fits the integer digits of NUMERIC(18,2)
func withinAmountLimit(amount decimal.Decimal) bool {
	return amount.Abs().LessThan(domain.AmountLimit)
}
