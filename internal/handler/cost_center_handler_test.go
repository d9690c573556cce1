package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCostCenter(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodPost, "/api/v1/cost-centers",
		`{"name":"Events","code":"EVT","managerId":3,"parentId":1}`)
	require.NoError(t, e.costCenter.CreateCostCenter(c))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cc := decode[CostCenterResponse](t, rec)
	assert.Equal(t, "Carol", cc.ManagerName)
	require.NotNil(t, cc.ParentID)
	assert.Equal(t, marketingID, *cc.ParentID)

	c, rec = newContext(http.MethodGet, "/api/v1/cost-centers/1/children", "")
	withPathParams(c, []string{"id"}, []string{"1"})
	require.NoError(t, e.costCenter.ListChildren(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	children := decode[[]CostCenterResponse](t, rec)
	require.Len(t, children, 1)
	assert.Equal(t, "EVT", children[0].Code)
}

func TestCreateCostCenterRejections(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"collaborator as manager", `{"name":"Events","code":"EVT","managerId":2}`, http.StatusBadRequest},
		{"missing parent", `{"name":"Events","code":"EVT","managerId":3,"parentId":42}`, http.StatusBadRequest},
		{"missing code", `{"name":"Events","managerId":3}`, http.StatusBadRequest},
		{"duplicate code", `{"name":"Brand","code":"MKT","managerId":1}`, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			c, rec := newContext(http.MethodPost, "/api/v1/cost-centers", tt.body)
			require.NoError(t, e.costCenter.CreateCostCenter(c))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestGetCostCenter(t *testing.T) {
	e := newEnv(t)

	c, rec := newContext(http.MethodGet, "/api/v1/cost-centers/1", "")
	withPathParams(c, []string{"id"}, []string{"1"})
	require.NoError(t, e.costCenter.GetCostCenter(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Alice", decode[CostCenterResponse](t, rec).ManagerName)

	c, rec = newContext(http.MethodGet, "/api/v1/cost-centers/7", "")
	withPathParams(c, []string{"id"}, []string{"7"})
	require.NoError(t, e.costCenter.GetCostCenter(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
