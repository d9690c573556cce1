package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgtype"
)

var budgetColumns = []string{"b.id", "b.cost_center_id", "b.account_plan_id", "b.year", "b.month", "b.allocated_amount", "b.created_at"}

// budgetRow mirrors the budgets table; NUMERIC is read through pgtype
type budgetRow struct {
	ID              int32          `db:"id"`
	CostCenterID    int32          `db:"cost_center_id"`
	AccountPlanID   int32          `db:"account_plan_id"`
	Year            int32          `db:"year"`
	Month           int32          `db:"month"`
	AllocatedAmount pgtype.Numeric `db:"allocated_amount"`
	CreatedAt       time.Time      `db:"created_at"`
}

type budgetDetailRow struct {
	ID              int32          `db:"id"`
	CostCenterID    int32          `db:"cost_center_id"`
	AccountPlanID   int32          `db:"account_plan_id"`
	Year            int32          `db:"year"`
	Month           int32          `db:"month"`
	AllocatedAmount pgtype.Numeric `db:"allocated_amount"`
	CreatedAt       time.Time      `db:"created_at"`
	CostCenterName  string         `db:"cost_center_name"`
	AccountPlanName string         `db:"account_plan_name"`
}

// BudgetRepository implements domain.BudgetRepository using PostgreSQL
type BudgetRepository struct {
	db DBTX
}

// NewBudgetRepository creates a new BudgetRepository
func NewBudgetRepository(db DBTX) *BudgetRepository {
	return &BudgetRepository{db: db}
}

// Create allocates a budget line. The (cost center, account plan, year, month)
// unique constraint maps to ErrBudgetAlreadyExists.
func (r *BudgetRepository) Create(ctx context.Context, budget *domain.Budget) (*domain.Budget, error) {
	amount, err := toNumeric(budget.AllocatedAmount)
	if err != nil {
		return nil, err
	}

	query, args, err := psql.Insert("budgets").
		Columns("cost_center_id", "account_plan_id", "year", "month", "allocated_amount").
		Values(budget.CostCenterID, budget.AccountPlanID, budget.Year, budget.Month, amount).
		Suffix("RETURNING id, cost_center_id, account_plan_id, year, month, allocated_amount, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}

	var row budgetRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		switch {
		case isUniqueViolation(err):
			return nil, domain.ErrBudgetAlreadyExists
		case isForeignKeyViolation(err):
			return nil, domain.ErrInvalidInput
		case isNumericOutOfRange(err):
			return nil, domain.ErrAmountTooLarge
		}
		return nil, fmt.Errorf("inserting budget: %w", err)
	}
	return row.toDomain(), nil
}

// GetByID retrieves a budget with cost center and account plan names
func (r *BudgetRepository) GetByID(ctx context.Context, id int32) (*domain.BudgetDetail, error) {
	query, args, err := r.detailQuery().
		Where(squirrel.Eq{"b.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row budgetDetailRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("scanning budget: %w", err)
	}
	return row.toDomain(), nil
}

// GetByLine retrieves the budget allocated to a line
func (r *BudgetRepository) GetByLine(ctx context.Context, line domain.BudgetLine) (*domain.Budget, error) {
	return getBudgetByLine(ctx, r.db, line, false)
}

// List retrieves budgets matching filter, newest period first
func (r *BudgetRepository) List(ctx context.Context, filter domain.BudgetFilter) ([]*domain.BudgetDetail, error) {
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
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scanning budgets: %w", err)
	}

	result := make([]*domain.BudgetDetail, len(rows))
	for i := range rows {
		result[i] = rows[i].toDomain()
	}
	return result, nil
}

func (r *BudgetRepository) detailQuery() squirrel.SelectBuilder {
	return psql.Select(budgetColumns...).
		Columns("cc.name AS cost_center_name", "ap.name AS account_plan_name").
		From("budgets b").
		Join("cost_centers cc ON cc.id = b.cost_center_id").
		Join("account_plans ap ON ap.id = b.account_plan_id")
}

// getBudgetByLine reads the budget row of a line. With forUpdate the row stays
// locked until the surrounding transaction ends.
func getBudgetByLine(ctx context.Context, db pgxscan.Querier, line domain.BudgetLine, forUpdate bool) (*domain.Budget, error) {
	qb := psql.Select(budgetColumns...).
		From("budgets b").
		Where(squirrel.Eq{
			"b.cost_center_id":  line.CostCenterID,
			"b.account_plan_id": line.AccountPlanID,
			"b.year":            line.Year,
			"b.month":           line.Month,
		})
	if forUpdate {
		qb = qb.Suffix("FOR UPDATE")
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}

	var row budgetRow
	if err := pgxscan.Get(ctx, db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, domain.ErrBudgetNotFound
		}
		return nil, fmt.Errorf("scanning budget: %w", err)
	}
	return row.toDomain(), nil
}

func (b budgetRow) toDomain() *domain.Budget {
	return &domain.Budget{
		ID:              b.ID,
		CostCenterID:    b.CostCenterID,
		AccountPlanID:   b.AccountPlanID,
		Year:            int(b.Year),
		Month:           int(b.Month),
		AllocatedAmount: fromNumeric(b.AllocatedAmount),
		CreatedAt:       b.CreatedAt.UTC(),
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
