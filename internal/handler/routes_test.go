package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, e *env, required bool) *echo.Echo {
	t.Helper()
	server := echo.New()
	RegisterRoutes(server, Handlers{
		Auth:         e.auth,
		User:         e.user,
		CostCenter:   e.costCenter,
		AccountPlan:  e.accountPlan,
		Budget:       e.budget,
		Requisition:  e.requisition,
		Attachment:   e.attachment,
		Authenticate: middleware.NewDualAuthMiddleware(nil, middleware.NewAPITokenAuthMiddleware(e.tokenService), required),
	})
	return server
}

func serve(server *echo.Echo, method, target, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func TestRoutesRequiredAuth(t *testing.T) {
	e := newEnv(t)
	server := newTestServer(t, e, true)

	rec := serve(server, http.MethodGet, "/api/v1/requisitions", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(server, http.MethodPost, "/api/v1/users", "",
		`{"name":"Dave","email":"dave@example.com","password":"secret1","role":"collaborator"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, "registration is public")

	issued, err := e.tokenService.Login(context.Background(), "bob@example.com", testPassword)
	require.NoError(t, err)

	rec = serve(server, http.MethodPost, "/api/v1/requisitions", issued.Secret,
		`{"costCenterId":1,"accountPlanId":1,"description":"Trip","requestedAmount":"10"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, bobID, decode[RequisitionResponse](t, rec).RequesterID)

	rec = serve(server, http.MethodGet, "/api/v1/auth/me", issued.Secret, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(server, http.MethodPost, "/api/v1/auth/logout", issued.Secret, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(server, http.MethodGet, "/api/v1/requisitions", issued.Secret, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "revoked tokens stop working")
}

func TestRoutesOptionalAuth(t *testing.T) {
	e := newEnv(t)
	server := newTestServer(t, e, false)

	rec := serve(server, http.MethodPost, "/api/v1/requisitions", "",
		`{"requesterId":2,"costCenterId":1,"accountPlanId":1,"description":"Trip","requestedAmount":"10"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(server, http.MethodPost, "/api/v1/requisitions/1/approve", "", `{"actingManagerId":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "approved", decode[RequisitionResponse](t, rec).Status)

	rec = serve(server, http.MethodGet, "/api/v1/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "auth routes always need an identity")

	rec = serve(server, http.MethodGet, "/api/v1/budgets/1/summary", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "990.00", decode[BudgetSummaryResponse](t, rec).Remaining)
}
