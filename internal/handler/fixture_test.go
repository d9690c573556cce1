package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/middleware"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// june is inside the only budgeted period of the fixture
var june = time.Date(2025, 6, 12, 14, 30, 0, 0, time.UTC)

const (
	aliceID int32 = 1 // manager of Marketing
	bobID   int32 = 2 // collaborator
	carolID int32 = 3 // manager without cost centers

	marketingID int32 = 1
	travelID    int32 = 1
	budgetID    int32 = 1

	testPassword = "secret1"
)

// env wires handlers over in-memory repositories seeded with Alice, Bob and
// Carol, the Marketing cost center, the Travel account plan and a June 2025
// Marketing/Travel budget of 1000.00.
type env struct {
	users        *testutil.MockUserRepository
	requisitions *testutil.MockRequisitionRepository
	tokens       *testutil.MockAPITokenRepository
	storage      *testutil.MockObjectStorage

	tokenService *service.APITokenService
	reqService   *service.RequisitionService

	user        *UserHandler
	auth        *AuthHandler
	costCenter  *CostCenterHandler
	accountPlan *AccountPlanHandler
	budget      *BudgetHandler
	requisition *RequisitionHandler
	attachment  *AttachmentHandler
}

func newEnv(t *testing.T) *env {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}

	users := testutil.NewMockUserRepository()
	users.AddUser(&domain.User{ID: aliceID, Name: "Alice", Email: "alice@example.com", PasswordHash: string(hash), Role: domain.RoleManager})
	users.AddUser(&domain.User{ID: bobID, Name: "Bob", Email: "bob@example.com", PasswordHash: string(hash), Role: domain.RoleCollaborator})
	users.AddUser(&domain.User{ID: carolID, Name: "Carol", Email: "carol@example.com", PasswordHash: string(hash), Role: domain.RoleManager})

	costCenters := testutil.NewMockCostCenterRepository(users)
	costCenters.AddCostCenter(&domain.CostCenter{ID: marketingID, Name: "Marketing", Code: "MKT", ManagerID: aliceID})
	plans := testutil.NewMockAccountPlanRepository()
	plans.AddAccountPlan(&domain.AccountPlan{ID: travelID, Name: "Travel", Code: "TRV"})
	budgets := testutil.NewMockBudgetRepository(costCenters, plans)
	budgets.AddBudget(&domain.Budget{
		ID:              budgetID,
		CostCenterID:    marketingID,
		AccountPlanID:   travelID,
		Year:            2025,
		Month:           6,
		AllocatedAmount: decimal.NewFromInt(1000),
	})
	requisitions := testutil.NewMockRequisitionRepository(budgets, users, costCenters, plans)
	tokens := testutil.NewMockAPITokenRepository()
	storage := testutil.NewMockObjectStorage()

	directory := service.NewDirectoryService(users)
	ledger := service.NewLedgerService(requisitions, budgets)
	reqService := service.NewRequisitionService(requisitions, users, costCenters, plans, ledger, directory)
	reqService.SetClock(func() time.Time { return june })
	userService := service.NewUserService(users)
	tokenService := service.NewAPITokenService(tokens, directory)

	return &env{
		users:        users,
		requisitions: requisitions,
		tokens:       tokens,
		storage:      storage,
		tokenService: tokenService,
		reqService:   reqService,
		user:         NewUserHandler(userService),
		auth:         NewAuthHandler(tokenService, userService),
		costCenter:   NewCostCenterHandler(service.NewCostCenterService(costCenters, directory)),
		accountPlan:  NewAccountPlanHandler(service.NewAccountPlanService(plans)),
		budget:       NewBudgetHandler(service.NewBudgetService(budgets, costCenters, plans, ledger)),
		requisition:  NewRequisitionHandler(reqService),
		attachment:   NewAttachmentHandler(service.NewAttachmentService(testutil.NewMockAttachmentRepository(), requisitions, costCenters, storage)),
	}
}

// newContext builds an echo context for a JSON request
func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// withPathParams sets route parameters on c
func withPathParams(c echo.Context, names []string, values []string) {
	c.SetParamNames(names...)
	c.SetParamValues(values...)
}

// authenticateAs attaches a user identity the way the auth middleware does
func authenticateAs(c echo.Context, userID int32) {
	ctx := context.WithValue(c.Request().Context(), middleware.UserIDKey, userID)
	ctx = context.WithValue(ctx, middleware.APITokenIDKey, uuid.New())
	ctx = context.WithValue(ctx, middleware.IsAPITokenAuthKey, true)
	c.SetRequest(c.Request().WithContext(ctx))
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	if err := json.Unmarshal(rec.Body.Bytes(), &problem); err != nil {
		t.Fatalf("Failed to unmarshal problem: %v (body %s)", err, rec.Body.String())
	}
	return problem
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("Failed to unmarshal response: %v (body %s)", err, rec.Body.String())
	}
	return v
}
