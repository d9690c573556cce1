package service

import (
	"context"
	"testing"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAccountPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	plan, err := f.accountPlans.CreateAccountPlan(ctx, " Travel ", " 4.2.01 ")
	require.NoError(t, err)
	assert.Equal(t, "Travel", plan.Name)
	assert.Equal(t, "4.2.01", plan.Code)

	got, err := f.accountPlans.GetAccountPlan(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, plan.ID, got.ID)

	list, err := f.accountPlans.ListAccountPlans(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "3.1.01", list[0].Code, "ordered by code")
}

func TestCreateAccountPlan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		planName string
		code     string
		wantErr  error
	}{
		{"empty name", "", "9.9", domain.ErrNameRequired},
		{"empty code", "Rent", "", domain.ErrCodeRequired},
		{"duplicate name", "Software", "9.9", domain.ErrAccountPlanAlreadyExists},
		{"duplicate code", "Rent", "3.1.01", domain.ErrAccountPlanAlreadyExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.accountPlans.CreateAccountPlan(context.Background(), tt.planName, tt.code)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGetAccountPlan_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.accountPlans.GetAccountPlan(context.Background(), 99)
	assert.ErrorIs(t, err, domain.ErrAccountPlanNotFound)
}
