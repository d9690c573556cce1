package service

import (
	"context"
	"strings"
	"testing"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCostCenter(t *testing.T) {
	f := newFixture(t)
	parent := itCostCenterID

	cc, err := f.costCenter.CreateCostCenter(context.Background(), CreateCostCenterInput{
		Name:      " IT Infrastructure ",
		Code:      "CC-INFRA",
		ManagerID: carolID,
		ParentID:  &parent,
	})
	require.NoError(t, err)

	assert.Equal(t, "IT Infrastructure", cc.Name)
	assert.Equal(t, "CC-INFRA", cc.Code)
	assert.Equal(t, "Carol", cc.ManagerName)
	require.NotNil(t, cc.ParentName)
	assert.Equal(t, "IT", *cc.ParentName)

	children, err := f.costCenter.ListChildren(context.Background(), itCostCenterID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, cc.ID, children[0].ID)
}

func TestCreateCostCenter_LimitsCountCharacters(t *testing.T) {
	f := newFixture(t)

	cc, err := f.costCenter.CreateCostCenter(context.Background(), CreateCostCenterInput{
		Name:      strings.Repeat("é", domain.MaxNameLength),
		Code:      strings.Repeat("Ç", domain.MaxCodeLength),
		ManagerID: carolID,
	})
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("Ç", domain.MaxCodeLength), cc.Code)

	_, err = f.costCenter.CreateCostCenter(context.Background(), CreateCostCenterInput{
		Name: strings.Repeat("é", domain.MaxNameLength+1), Code: "OPS", ManagerID: carolID,
	})
	assert.ErrorIs(t, err, domain.ErrNameTooLong)
}

func TestCreateCostCenter_Errors(t *testing.T) {
	missingParent := int32(99)

	tests := []struct {
		name    string
		input   CreateCostCenterInput
		wantErr error
	}{
		{"empty name", CreateCostCenterInput{Name: "", Code: "X", ManagerID: bobID}, domain.ErrNameRequired},
		{"long name", CreateCostCenterInput{Name: strings.Repeat("n", domain.MaxNameLength+1), Code: "X", ManagerID: bobID}, domain.ErrNameTooLong},
		{"empty code", CreateCostCenterInput{Name: "Ops", Code: " ", ManagerID: bobID}, domain.ErrCodeRequired},
		{"long code", CreateCostCenterInput{Name: "Ops", Code: strings.Repeat("c", domain.MaxCodeLength+1), ManagerID: bobID}, domain.ErrCodeTooLong},
		{"manager is collaborator", CreateCostCenterInput{Name: "Ops", Code: "OPS", ManagerID: aliceID}, domain.ErrInvalidManager},
		{"manager is finance", CreateCostCenterInput{Name: "Ops", Code: "OPS", ManagerID: finID}, domain.ErrInvalidManager},
		{"manager missing", CreateCostCenterInput{Name: "Ops", Code: "OPS", ManagerID: 99}, domain.ErrInvalidManager},
		{"parent missing", CreateCostCenterInput{Name: "Ops", Code: "OPS", ManagerID: bobID, ParentID: &missingParent}, domain.ErrInvalidParent},
		{"duplicate name", CreateCostCenterInput{Name: "IT", Code: "OPS", ManagerID: bobID}, domain.ErrCostCenterAlreadyExists},
		{"duplicate code", CreateCostCenterInput{Name: "Ops", Code: "CC-IT", ManagerID: bobID}, domain.ErrCostCenterAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.costCenter.CreateCostCenter(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.costCenters.CostCenters, 2)
		})
	}
}

func TestListCostCenters(t *testing.T) {
	f := newFixture(t)

	list, err := f.costCenter.ListCostCenters(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "IT", list[0].Name)
	assert.Equal(t, "Bob", list[0].ManagerName)
	assert.Nil(t, list[0].ParentName)
}

func TestListChildren_UnknownParent(t *testing.T) {
	f := newFixture(t)

	_, err := f.costCenter.ListChildren(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrCostCenterNotFound)
}

func TestGetCostCenter_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.costCenter.GetCostCenter(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrCostCenterNotFound)
}
