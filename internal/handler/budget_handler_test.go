package handler

import (
	"net/http"
	"testing"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBudget(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodPost, "/api/v1/budgets",
		`{"costCenterId":1,"accountPlanId":1,"year":2025,"month":7,"allocatedAmount":"250.5"}`)
	require.NoError(t, e.budget.CreateBudget(c))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	budget := decode[BudgetResponse](t, rec)
	assert.Equal(t, "250.50", budget.AllocatedAmount)
	assert.Equal(t, "Marketing", budget.CostCenterName)
	assert.Equal(t, "Travel", budget.AccountPlanName)
}

func TestCreateBudgetRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"duplicate line", `{"costCenterId":1,"accountPlanId":1,"year":2025,"month":6,"allocatedAmount":"10"}`, http.StatusConflict},
		{"month out of range", `{"costCenterId":1,"accountPlanId":1,"year":2025,"month":13,"allocatedAmount":"10"}`, http.StatusBadRequest},
		{"not a number", `{"costCenterId":1,"accountPlanId":1,"year":2025,"month":7,"allocatedAmount":"lots"}`, http.StatusBadRequest},
		{"negative", `{"costCenterId":1,"accountPlanId":1,"year":2025,"month":7,"allocatedAmount":"-1"}`, http.StatusBadRequest},
		{"sub-cent", `{"costCenterId":1,"accountPlanId":1,"year":2025,"month":7,"allocatedAmount":"1.005"}`, http.StatusBadRequest},
		{"past column range", `{"costCenterId":1,"accountPlanId":1,"year":2025,"month":7,"allocatedAmount":"10000000000000000"}`, http.StatusBadRequest},
		{"unknown cost center", `{"costCenterId":9,"accountPlanId":1,"year":2025,"month":7,"allocatedAmount":"10"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			c, rec := newContext(http.MethodPost, "/api/v1/budgets", tt.body)
			require.NoError(t, e.budget.CreateBudget(c))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestListBudgets(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodGet, "/api/v1/budgets?year=2025&month=6&costCenterId=1", "")
	require.NoError(t, e.budget.ListBudgets(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]BudgetResponse](t, rec), 1)

	c, rec = newContext(http.MethodGet, "/api/v1/budgets?month=5", "")
	require.NoError(t, e.budget.ListBudgets(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]BudgetResponse](t, rec))

	c, rec = newContext(http.MethodGet, "/api/v1/budgets?month=0", "")
	require.NoError(t, e.budget.ListBudgets(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetBudgetSummary(t *testing.T) {
	e := newEnv(t)
	e.requisitions.AddRequisition(&domain.Requisition{
		ID:              1,
		RequesterID:     bobID,
		CostCenterID:    marketingID,
		AccountPlanID:   travelID,
		Description:     "Flights",
		RequestedAmount: decimal.RequireFromString("300.25"),
		RequestedAt:     june,
		Status:          domain.RequisitionPending,
	})
	e.requisitions.AddRequisition(&domain.Requisition{
		ID:              2,
		RequesterID:     bobID,
		CostCenterID:    marketingID,
		AccountPlanID:   travelID,
		Description:     "Hotel",
		RequestedAmount: decimal.RequireFromString("500"),
		RequestedAt:     june,
		Status:          domain.RequisitionRejected,
	})

	c, rec := newContext(http.MethodGet, "/api/v1/budgets/1/summary", "")
	withPathParams(c, []string{"id"}, []string{"1"})
	require.NoError(t, e.budget.GetSummary(c))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := decode[BudgetSummaryResponse](t, rec)
	assert.Equal(t, "1000.00", summary.Allocated)
	assert.Equal(t, "300.25", summary.Committed)
	assert.Equal(t, "699.75", summary.Remaining)
	assert.Equal(t, budgetID, summary.Budget.ID)
}
