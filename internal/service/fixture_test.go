package service

import (
	"testing"
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

// fixedNow is 2026-03-15 UTC, inside the March 2026 budget period
var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

// fixture wires every service over in-memory repositories, seeded with:
//
//	users: 1 Alice (collaborator), 2 Bob (manager), 3 Carol (manager), 4 Fin (finance)
//	cost center 1 "IT" managed by Bob, cost center 2 "Sales" managed by Carol
//	account plan 1 "Software"
//	budget 1: IT/Software March 2026, 1000.00
type fixture struct {
	users        *testutil.MockUserRepository
	costCenters  *testutil.MockCostCenterRepository
	plans        *testutil.MockAccountPlanRepository
	budgets      *testutil.MockBudgetRepository
	requisitions *testutil.MockRequisitionRepository

	directory    *DirectoryService
	ledger       *LedgerService
	requisition  *RequisitionService
	budget       *BudgetService
	costCenter   *CostCenterService
	accountPlans *AccountPlanService
}

const (
	aliceID int32 = 1
	bobID   int32 = 2
	carolID int32 = 3
	finID   int32 = 4

	itCostCenterID    int32 = 1
	salesCostCenterID int32 = 2
	softwarePlanID    int32 = 1
)

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{}
	f.users = testutil.NewMockUserRepository()
	f.costCenters = testutil.NewMockCostCenterRepository(f.users)
	f.plans = testutil.NewMockAccountPlanRepository()
	f.budgets = testutil.NewMockBudgetRepository(f.costCenters, f.plans)
	f.requisitions = testutil.NewMockRequisitionRepository(f.budgets, f.users, f.costCenters, f.plans)

	f.users.AddUser(&domain.User{ID: aliceID, Name: "Alice", Email: "alice@example.com", Role: domain.RoleCollaborator})
	f.users.AddUser(&domain.User{ID: bobID, Name: "Bob", Email: "bob@example.com", Role: domain.RoleManager})
	f.users.AddUser(&domain.User{ID: carolID, Name: "Carol", Email: "carol@example.com", Role: domain.RoleManager})
	f.users.AddUser(&domain.User{ID: finID, Name: "Fin", Email: "fin@example.com", Role: domain.RoleFinance})

	f.costCenters.AddCostCenter(&domain.CostCenter{ID: itCostCenterID, Name: "IT", Code: "CC-IT", ManagerID: bobID})
	f.costCenters.AddCostCenter(&domain.CostCenter{ID: salesCostCenterID, Name: "Sales", Code: "CC-SALES", ManagerID: carolID})
	f.plans.AddAccountPlan(&domain.AccountPlan{ID: softwarePlanID, Name: "Software", Code: "3.1.01"})
	f.budgets.AddBudget(&domain.Budget{
		ID:              1,
		CostCenterID:    itCostCenterID,
		AccountPlanID:   softwarePlanID,
		Year:            2026,
		Month:           3,
		AllocatedAmount: decimal.NewFromInt(1000),
	})

	f.directory = NewDirectoryService(f.users)
	f.ledger = NewLedgerService(f.requisitions, f.budgets)
	f.requisition = NewRequisitionService(f.requisitions, f.users, f.costCenters, f.plans, f.ledger, f.directory)
	f.requisition.SetClock(func() time.Time { return fixedNow })
	f.budget = NewBudgetService(f.budgets, f.costCenters, f.plans, f.ledger)
	f.costCenter = NewCostCenterService(f.costCenters, f.directory)
	f.accountPlans = NewAccountPlanService(f.plans)

	return f
}

func itSoftwareMarch() domain.BudgetLine {
	return domain.BudgetLine{CostCenterID: itCostCenterID, AccountPlanID: softwarePlanID, Year: 2026, Month: 3}
}

func submitInput(amount string) SubmitRequisitionInput {
	return SubmitRequisitionInput{
		RequesterID:   aliceID,
		CostCenterID:  itCostCenterID,
		AccountPlanID: softwarePlanID,
		Description:   "Notebook",
		Amount:        decimal.RequireFromString(amount),
	}
}
