package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Budget is the amount allocated to a budget line
type Budget struct {
	ID              int32           `json:"id" db:"id"`
	CostCenterID    int32           `json:"costCenterId" db:"cost_center_id"`
	AccountPlanID   int32           `json:"accountPlanId" db:"account_plan_id"`
	Year            int             `json:"year" db:"year"`
	Month           int             `json:"month" db:"month"`
	AllocatedAmount decimal.Decimal `json:"allocatedAmount" db:"allocated_amount"`
	CreatedAt       time.Time       `json:"createdAt" db:"created_at"`
}

// Line returns the budget line this allocation belongs to
func (b *Budget) Line() BudgetLine {
	return BudgetLine{
		CostCenterID:  b.CostCenterID,
		AccountPlanID: b.AccountPlanID,
		Year:          b.Year,
		Month:         b.Month,
	}
}

// BudgetDetail is the read model with joined display names
type BudgetDetail struct {
	Budget
	CostCenterName  string `json:"costCenterName" db:"cost_center_name"`
	AccountPlanName string `json:"accountPlanName" db:"account_plan_name"`
}

// BudgetLine identifies a (cost center, account plan, year, month) tuple
type BudgetLine struct {
	CostCenterID  int32
	AccountPlanID int32
	Year          int
	Month         int
}

// BudgetFilter narrows budget listings. Nil fields are not applied.
type BudgetFilter struct {
	Year         *int
	Month        *int
	CostCenterID *int32
}

// BudgetSummary is the ledger view of a single budget line
type BudgetSummary struct {
	Budget    *BudgetDetail   `json:"budget"`
	Allocated decimal.Decimal `json:"allocated"`
	Committed decimal.Decimal `json:"committed"`
	Remaining decimal.Decimal `json:"remaining"`
}

type BudgetRepository interface {
	Create(ctx context.Context, budget *Budget) (*Budget, error)
	GetByID(ctx context.Context, id int32) (*BudgetDetail, error)
	GetByLine(ctx context.Context, line BudgetLine) (*Budget, error)
	List(ctx context.Context, filter BudgetFilter) ([]*BudgetDetail, error)
}
