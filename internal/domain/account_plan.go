package domain

import (
	"context"
	"time"
)

// AccountPlan is a chart-of-accounts category that budgets and requisitions are booked against
type AccountPlan struct {
	ID        int32     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type AccountPlanRepository interface {
	Create(ctx context.Context, plan *AccountPlan) (*AccountPlan, error)
	GetByID(ctx context.Context, id int32) (*AccountPlan, error)
	List(ctx context.Context) ([]*AccountPlan, error)
	ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error)
}
