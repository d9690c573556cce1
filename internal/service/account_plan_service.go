package service

import (
	"context"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// AccountPlanService handles account plan business logic
type AccountPlanService struct {
	accountPlanRepo domain.AccountPlanRepository
}

// NewAccountPlanService creates a new AccountPlanService
func NewAccountPlanService(accountPlanRepo domain.AccountPlanRepository) *AccountPlanService {
	return &AccountPlanService{accountPlanRepo: accountPlanRepo}
}

// CreateAccountPlan creates a new account plan with a unique name and code
func (s *AccountPlanService) CreateAccountPlan(ctx context.Context, name, code string) (*domain.AccountPlan, error) {
	name, code, err := validateNameAndCode(name, code)
	if err != nil {
		return nil, err
	}

	exists, err := s.accountPlanRepo.ExistsByNameOrCode(ctx, name, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrAccountPlanAlreadyExists
	}

	plan, err := s.accountPlanRepo.Create(ctx, &domain.AccountPlan{Name: name, Code: code})
	if err != nil {
		return nil, err
	}

	log.Info().Int32("account_plan_id", plan.ID).Str("code", plan.Code).Msg("Account plan created")
	return plan, nil
}

// GetAccountPlan retrieves an account plan by ID
func (s *AccountPlanService) GetAccountPlan(ctx context.Context, id int32) (*domain.AccountPlan, error) {
	return s.accountPlanRepo.GetByID(ctx, id)
}

// ListAccountPlans retrieves all account plans
func (s *AccountPlanService) ListAccountPlans(ctx context.Context) ([]*domain.AccountPlan, error) {
	return s.accountPlanRepo.List(ctx)
}
