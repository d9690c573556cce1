package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
)

// AccountPlanRepository implements domain.AccountPlanRepository using PostgreSQL
type AccountPlanRepository struct {
	db DBTX
}

// NewAccountPlanRepository creates a new AccountPlanRepository
func NewAccountPlanRepository(db DBTX) *AccountPlanRepository {
	return &AccountPlanRepository{db: db}
}

// Create creates a new account plan
func (r *AccountPlanRepository) Create(ctx context.Context, plan *domain.AccountPlan) (*domain.AccountPlan, error) {
	query, args, err := psql.Insert("account_plans").
		Columns("name", "code").
		Values(plan.Name, plan.Code).
		Suffix("RETURNING id, name, code, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}

	var created domain.AccountPlan
	if err := pgxscan.Get(ctx, r.db, &created, query, args...); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrAccountPlanAlreadyExists
		}
		return nil, fmt.Errorf("inserting account plan: %w", err)
	}
	created.CreatedAt = created.CreatedAt.UTC()
	return &created, nil
}

// GetByID retrieves an account plan by ID
func (r *AccountPlanRepository) GetByID(ctx context.Context, id int32) (*domain.AccountPlan, error) {
	query, args, err := psql.Select("id", "name", "code", "created_at").
		From("account_plans").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var plan domain.AccountPlan
	if err := pgxscan.Get(ctx, r.db, &plan, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrAccountPlanNotFound
		}
		return nil, fmt.Errorf("scanning account plan: %w", err)
	}
	plan.CreatedAt = plan.CreatedAt.UTC()
	return &plan, nil
}

// List retrieves all account plans ordered by code
func (r *AccountPlanRepository) List(ctx context.Context) ([]*domain.AccountPlan, error) {
	query, args, err := psql.Select("id", "name", "code", "created_at").
		From("account_plans").
		OrderBy("code").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var plans []*domain.AccountPlan
	if err := pgxscan.Select(ctx, r.db, &plans, query, args...); err != nil {
		return nil, fmt.Errorf("scanning account plans: %w", err)
	}
	for _, p := range plans {
		p.CreatedAt = p.CreatedAt.UTC()
	}
	return plans, nil
}

// ExistsByNameOrCode reports whether an account plan already uses name or code
func (r *AccountPlanRepository) ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error) {
	return existsByNameOrCode(ctx, r.db, "account_plans", name, code)
}
