package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountPlan(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"code", `{"name":"Software","code":"SFW"}`, http.StatusCreated, "SFW"},
		{"codeConta alias", `{"name":"Software","codeConta":"3.1.02"}`, http.StatusCreated, "3.1.02"},
		{"no code at all", `{"name":"Software"}`, http.StatusBadRequest, ""},
		{"duplicate name", `{"name":"Travel","code":"TRV2"}`, http.StatusConflict, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			c, rec := newContext(http.MethodPost, "/api/v1/account-plans", tt.body)
			require.NoError(t, e.accountPlan.CreateAccountPlan(c))

			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantCode != "" {
				plan := decode[AccountPlanResponse](t, rec)
				assert.Equal(t, tt.wantCode, plan.Code)
				assert.Equal(t, tt.wantCode, plan.CodeConta)
			}
		})
	}
}

func TestListAccountPlans(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodGet, "/api/v1/account-plans", "")
	require.NoError(t, e.accountPlan.ListAccountPlans(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	plans := decode[[]AccountPlanResponse](t, rec)
	require.Len(t, plans, 1)
	assert.Equal(t, "Travel", plans[0].Name)
}
