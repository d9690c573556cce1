package sqlite

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/shopspring/decimal"
)

var budgetColumns = []string{"b.id", "b.cost_center_id", "b.account_plan_id", "b.year", "b.month", "b.allocated_amount", "b.created_at"}

type budgetRow struct {
	ID              int32           `db:"id"`
	CostCenterID    int32           `db:"cost_center_id"`
	AccountPlanID   int32           `db:"account_plan_id"`
	Year            int             `db:"year"`
	Month           int             `db:"month"`
	AllocatedAmount decimal.Decimal `db:"allocated_amount"`
	CreatedAt       timestamp       `db:"created_at"`
}

type budgetDetailRow struct {
	ID              int32           `db:"id"`
	CostCenterID    int32           `db:"cost_center_id"`
	AccountPlanID   int32           `db:"account_plan_id"`
	Year            int             `db:"year"`
	Month           int             `db:"month"`
	AllocatedAmount decimal.Decimal `db:"allocated_amount"`
	CreatedAt       timestamp       `db:"created_at"`
	CostCenterName  string          `db:"cost_center_name"`
	AccountPlanName string          `db:"account_plan_name"`
}

func (b budgetRow) toDomain() *domain.Budget {
	return &domain.Budget{
		ID:              b.ID,
		CostCenterID:    b.CostCenterID,
		AccountPlanID:   b.AccountPlanID,
		Year:            b.Year,
		Month:           b.Month,
		AllocatedAmount: b.AllocatedAmount,
		CreatedAt:       b.CreatedAt.at,
	}
}

func (b budgetDetailRow) toDomain() *domain.BudgetDetail {
	return &domain.BudgetDetail{
		Budget: *budgetRow{
			ID:              b.ID,
			CostCenterID:    b.CostCenterID,
			AccountPlanID:   b.AccountPlanID,
			Year:            b.Year,
			Month:           b.Month,
			AllocatedAmount: b.AllocatedAmount,
			CreatedAt:       b.CreatedAt,
		}.toDomain(),
		CostCenterName:  b.CostCenterName,
		AccountPlanName: b.AccountPlanName,
	}
}

// BudgetRepository implements domain.BudgetRepository on SQLite
type BudgetRepository struct {
	store *Store
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(store *Store) *BudgetRepository {
	return &BudgetRepository{store: store}
}

// Create allocates a budget line
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	createdAt := nowUTC()
	id, err := insert(ctx, r.store.db, sq.Insert("budgets").
		Columns("cost_center_id", "account_plan_id", "year", "month", "allocated_amount", "created_at").
		Values(budget.CostCenterID, budget.AccountPlanID, budget.Year, budget.Month,
			formatAmount(budget.AllocatedAmount), formatTime(createdAt)))
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, domain.ErrBudgetAlreadyExists
		case isForeignKeyViolation(err):
			return nil, domain.ErrInvalidInput
		}
		return nil, fmt.Errorf("sqlite: create budget: %w", err)
	}

	created := *budget
	created.ID = id
	created.CreatedAt = createdAt
	return &created, nil
}

// GetByID retrieves a budget with cost center and account plan names
func (r *BudgetRepository) GetByID(ctx context.Context, id int32) (*domain.BudgetDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	query, args, err := r.detailQuery().Where(squirrel.Eq{"b.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row budgetDetailRow
	if err := sqlscan.Get(ctx, r.store.db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("sqlite: get budget: %w", err)
	}
	return row.toDomain(), nil
}

// GetByLine retrieves the budget allocated to a line
func (r *BudgetRepository) GetByLine(ctx context.Context, line domain.BudgetLine) (*domain.Budget, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return getBudgetByLine(ctx, r.store.db, line)
}

// List retrieves budgets matching filter, newest period first
func (r *BudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]*domain.BudgetDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	qb := r.detailQuery()
	if filter.Year != nil {
		qb = qb.Where(squirrel.Eq{"b.year": *filter.Year})
	}
	if filter.Month != nil {
		qb = qb.Where(squirrel.Eq{"b.month": *filter.Month})
	}
	if filter.CostCenterID != nil {
		qb = qb.Where(squirrel.Eq{"b.cost_center_id": *filter.CostCenterID})
	}

	query, args, err := qb.OrderBy("b.year DESC", "b.month DESC", "cc.name", "ap.code").ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var rows []budgetDetailRow
	if err := sqlscan.Select(ctx, r.store.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: list budgets: %w", err)
	}
	result := make([]*domain.BudgetDetail, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}

func (r *BudgetRepository) detailQuery() squirrel.SelectBuilder {
	return sq.Select(budgetColumns...).
		Columns("cc.name AS cost_center_name", "ap.name AS account_plan_name").
		From("budgets b").
		Join("cost_centers cc ON cc.id = b.cost_center_id").
		Join("account_plans ap ON ap.id = b.account_plan_id")
}

func getBudgetByLine(ctx context.Context, db sqlscan.Querier, line domain.BudgetLine) (*domain.Budget, error) {
	query, args, err := sq.Select(budgetColumns...).
		From("budgets b").
		Where(squirrel.Eq{
			"b.cost_center_id":  line.CostCenterID,
			"b.account_plan_id": line.AccountPlanID,
			"b.year":            line.Year,
			"b.month":           line.Month,
		}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row budgetRow
	if err := sqlscan.Get(ctx, db, &row, query, args...); err != nil {
		if sqlscan.NotFound(err) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("sqlite: get budget by line: %w", err)
	}
	return row.toDomain(), nil
}
