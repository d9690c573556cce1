package service

import (
	"context"
	"testing"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBudget(t *testing.T) {
	f := newFixture(t)

	budget, err := f.budget.CreateBudget(context.Background(), CreateBudgetInput{
		CostCenterID:    salesCostCenterID,
		AccountPlanID:   softwarePlanID,
		Year:            2026,
		Month:           3,
		AllocatedAmount: decimal.RequireFromString("2500.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Sales", budget.CostCenterName)
	assert.Equal(t, "Software", budget.AccountPlanName)
	assert.Equal(t, "2500.50", budget.AllocatedAmount.StringFixed(2))
}

func TestCreateBudget_ZeroAllocationAllowed(t *testing.T) {
	f := newFixture(t)

	_, err := f.budget.CreateBudget(context.Background(), CreateBudgetInput{
		CostCenterID: itCostCenterID, AccountPlanID: softwarePlanID, Year: 2026, Month: 4, AllocatedAmount: decimal.Zero,
	})
	assert.NoError(t, err)
}

func TestCreateBudget_LargestStorableAllocation(t *testing.T) {
	f := newFixture(t)

	budget, err := f.budget.CreateBudget(context.Background(), CreateBudgetInput{
		CostCenterID: salesCostCenterID, AccountPlanID: softwarePlanID, Year: 2026, Month: 3,
		AllocatedAmount: decimal.RequireFromString("9999999999999999.99"),
	})
	require.NoError(t, err)
	assert.Equal(t, "9999999999999999.99", budget.AllocatedAmount.StringFixed(2))
}

func TestCreateBudget_Errors(t *testing.T) {
	valid := CreateBudgetInput{
		CostCenterID:    salesCostCenterID,
		AccountPlanID:   softwarePlanID,
		Year:            2026,
		Month:           5,
		AllocatedAmount: decimal.NewFromInt(100),
	}

	tests := []struct {
		name    string
		mutate  func(*CreateBudgetInput)
		wantErr error
	}{
		{"month zero", func(in *CreateBudgetInput) { in.Month = 0 }, domain.ErrInvalidPeriod},
		{"month thirteen", func(in *CreateBudgetInput) { in.Month = 13 }, domain.ErrInvalidPeriod},
		{"year too early", func(in *CreateBudgetInput) { in.Year = 2019 }, domain.ErrInvalidPeriod},
		{"negative amount", func(in *CreateBudgetInput) { in.AllocatedAmount = decimal.NewFromInt(-1) }, domain.ErrNegativeAllocation},
		{"sub-cent amount", func(in *CreateBudgetInput) { in.AllocatedAmount = decimal.RequireFromString("10.001") }, domain.ErrAmountPrecision},
		{"amount past column range", func(in *CreateBudgetInput) { in.AllocatedAmount = decimal.New(1, 16) }, domain.ErrAmountTooLarge},
		{"unknown cost center", func(in *CreateBudgetInput) { in.CostCenterID = 99 }, domain.ErrInvalidCostCenter},
		{"unknown account plan", func(in *CreateBudgetInput) { in.AccountPlanID = 99 }, domain.ErrInvalidAccountPlan},
		{"duplicate line", func(in *CreateBudgetInput) { in.CostCenterID = itCostCenterID; in.Month = 3 }, domain.ErrBudgetAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			input := valid
			tt.mutate(&input)

			_, err := f.budget.CreateBudget(context.Background(), input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.budgets.Budgets, 1)
		})
	}
}

func TestListBudgets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.budget.CreateBudget(ctx, CreateBudgetInput{
		CostCenterID: itCostCenterID, AccountPlanID: softwarePlanID, Year: 2026, Month: 4, AllocatedAmount: decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	all, err := f.budget.ListBudgets(ctx, domain.BudgetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 4, all[0].Month, "newest period first")

	month := 3
	march, err := f.budget.ListBudgets(ctx, domain.BudgetFilter{Month: &month})
	require.NoError(t, err)
	require.Len(t, march, 1)

	sales := salesCostCenterID
	none, err := f.budget.ListBudgets(ctx, domain.BudgetFilter{CostCenterID: &sales})
	require.NoError(t, err)
	assert.Empty(t, none)

	bad := 0
	_, err = f.budget.ListBudgets(ctx, domain.BudgetFilter{Month: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidPeriod)
}

func TestGetBudgetSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.requisition.Submit(ctx, submitInput("400"))
	require.NoError(t, err)

	summary, err := f.budget.GetSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "600.00", summary.Remaining.StringFixed(2))
}
