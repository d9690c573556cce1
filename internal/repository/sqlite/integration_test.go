package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/repository/sqlite"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// june is inside the only budgeted period of the scenarios below
var june = time.Date(2025, 6, 12, 14, 30, 0, 0, time.UTC)

type app struct {
	users        *service.UserService
	costCenters  *service.CostCenterService
	accountPlans *service.AccountPlanService
	budgets      *service.BudgetService
	requisitions *service.RequisitionService
}

func newApp(t *testing.T) *app {
	t.Helper()
	store, err := sqlite.NewStore(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	userRepo := sqlite.NewUserRepository(store)
	ccRepo := sqlite.NewCostCenterRepository(store)
	apRepo := sqlite.NewAccountPlanRepository(store)
	budgetRepo := sqlite.NewBudgetRepository(store)
	reqRepo := sqlite.NewRequisitionRepository(store)

	directory := service.NewDirectoryService(userRepo)
	ledger := service.NewLedgerService(reqRepo, budgetRepo)
	requisitions := service.NewRequisitionService(reqRepo, userRepo, ccRepo, apRepo, ledger, directory)
	requisitions.SetClock(func() time.Time { return june })

	return &app{
		users:        service.NewUserService(userRepo),
		costCenters:  service.NewCostCenterService(ccRepo, directory),
		accountPlans: service.NewAccountPlanService(apRepo),
		budgets:      service.NewBudgetService(budgetRepo, ccRepo, apRepo, ledger),
		requisitions: requisitions,
	}
}

type world struct {
	alice, bob, carol *domain.User
	marketing         *domain.CostCenterDetail
	travel            *domain.AccountPlan
	budget            *domain.BudgetDetail
}

// setup registers Alice (manager of MKT), Bob (collaborator), Carol (manager)
// and a June 2025 MKT/TRV budget of allocated
func setup(t *testing.T, a *app, allocated string) world {
	t.Helper()
	ctx := context.Background()

	mustUser := func(name, email, role string) *domain.User {
		u, err := a.users.CreateUser(ctx, service.CreateUserInput{Name: name, Email: email, Password: "secret1", Role: role})
		require.NoError(t, err)
		return u
	}
	w := world{
		alice: mustUser("Alice", "alice@example.com", "manager"),
		bob:   mustUser("Bob", "bob@example.com", "collaborator"),
		carol: mustUser("Carol", "carol@example.com", "manager"),
	}

	var err error
	w.marketing, err = a.costCenters.CreateCostCenter(ctx, service.CreateCostCenterInput{Name: "Marketing", Code: "MKT", ManagerID: w.alice.ID})
	require.NoError(t, err)
	w.travel, err = a.accountPlans.CreateAccountPlan(ctx, "Travel", "TRV")
	require.NoError(t, err)
	w.budget, err = a.budgets.CreateBudget(ctx, service.CreateBudgetInput{
		CostCenterID: w.marketing.ID, AccountPlanID: w.travel.ID, Year: 2025, Month: 6,
		AllocatedAmount: decimal.RequireFromString(allocated),
	})
	require.NoError(t, err)
	return w
}

func (w world) submission(amount string) service.SubmitRequisitionInput {
	return service.SubmitRequisitionInput{
		RequesterID:   w.bob.ID,
		CostCenterID:  w.marketing.ID,
		AccountPlanID: w.travel.ID,
		Description:   "Conference trip",
		Amount:        decimal.RequireFromString(amount),
	}
}

func TestRequisitionLifecycle(t *testing.T) {
	a := newApp(t)
	w := setup(t, a, "1000.00")
	ctx := context.Background()

	first, err := a.requisitions.Submit(ctx, w.submission("400.00"))
	require.NoError(t, err)
	assert.Equal(t, domain.RequisitionPending, first.Status)
	assert.Equal(t, "Bob", first.RequesterName)
	assert.Equal(t, "Marketing", first.CostCenterName)
	assert.Equal(t, "Travel", first.AccountPlanName)
	assert.True(t, first.RequestedAt.Equal(june))

	_, err = a.requisitions.Submit(ctx, w.submission("700.00"))
	var exceeded *domain.BudgetExceededError
	require.True(t, errors.As(err, &exceeded), "got %v", err)
	assert.Equal(t, "1000.00", exceeded.Limit.StringFixed(2))
	assert.Equal(t, "400.00", exceeded.Committed.StringFixed(2))
	assert.Equal(t, "700.00", exceeded.Requested.StringFixed(2))

	approved, err := a.requisitions.Approve(ctx, first.ID, w.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequisitionApproved, approved.Status)
	require.NotNil(t, approved.ApproverName)
	assert.Equal(t, "Alice", *approved.ApproverName)

	_, err = a.requisitions.Reject(ctx, first.ID, w.carol.ID)
	assert.ErrorIs(t, err, domain.ErrRequisitionDecided)

	second, err := a.requisitions.Submit(ctx, w.submission("600.00"))
	require.NoError(t, err)
	_, err = a.requisitions.Reject(ctx, second.ID, w.carol.ID)
	assert.ErrorIs(t, err, domain.ErrNotCostCenterManager)

	summary, err := a.budgets.GetSummary(ctx, w.budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", summary.Committed.StringFixed(2))
	assert.Equal(t, "0.00", summary.Remaining.StringFixed(2))

	_, err = a.requisitions.Reject(ctx, second.ID, w.alice.ID)
	require.NoError(t, err)
	summary, err = a.budgets.GetSummary(ctx, w.budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "600.00", summary.Remaining.StringFixed(2), "rejected requisitions release budget")
}

func TestSubmitWithoutBudgetFails(t *testing.T) {
	a := newApp(t)
	w := setup(t, a, "1000.00")

	a.requisitions.SetClock(func() time.Time { return june.AddDate(0, 1, 0) })
	_, err := a.requisitions.Submit(context.Background(), w.submission("1.00"))
	assert.ErrorIs(t, err, domain.ErrBudgetNotAllocated)
}

func TestConcurrentSubmissionsNeverOverspend(t *testing.T) {
	a := newApp(t)
	w := setup(t, a, "100.00")
	ctx := context.Background()

	const attempts = 2
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		exceeded  int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.requisitions.Submit(ctx, w.submission("60.00"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrBudgetExceeded):
				exceeded++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, exceeded)

	summary, err := a.budgets.GetSummary(ctx, w.budget.ID)
	require.NoError(t, err)
	assert.Equal(t, "60.00", summary.Committed.StringFixed(2))
}

func TestConcurrentDecisionsExactlyOneWins(t *testing.T) {
	a := newApp(t)
	w := setup(t, a, "1000.00")
	ctx := context.Background()

	req, err := a.requisitions.Submit(ctx, w.submission("100.00"))
	require.NoError(t, err)

	decisions := []domain.Decision{domain.DecisionApprove, domain.DecisionReject, domain.DecisionApprove, domain.DecisionReject}
	results := make([]error, len(decisions))
	var wg sync.WaitGroup
	for i, d := range decisions {
		wg.Add(1)
		go func(i int, d domain.Decision) {
			defer wg.Done()
			_, results[i] = a.requisitions.Decide(ctx, req.ID, w.alice.ID, d)
		}(i, d)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrRequisitionDecided)
	}
	assert.Equal(t, 1, wins)

	final, err := a.requisitions.GetRequisition(ctx, req.ID)
	require.NoError(t, err)
	assert.NotEqual(t, domain.RequisitionPending, final.Status)
}
