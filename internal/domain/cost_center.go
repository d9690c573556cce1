package domain

import (
	"context"
	"time"
)

// CostCenter is an organizational unit that owns budgets. ParentID is a plain
// reference, children are found by looking up rows pointing at the parent.
type CostCenter struct {
	ID        int32     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Code      string    `json:"code" db:"code"`
	ManagerID int32     `json:"managerId" db:"manager_id"`
	ParentID  *int32    `json:"parentId,omitempty" db:"parent_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CostCenterDetail is the read model with joined display names
type CostCenterDetail struct {
	CostCenter
	ManagerName string  `json:"managerName" db:"manager_name"`
	ParentName  *string `json:"parentName,omitempty" db:"parent_name"`
}

// CostCenterRepository defines the interface for cost center persistence
type CostCenterRepository interface {
	Create(ctx context.Context, cc *CostCenter) (*CostCenter, error)
	GetByID(ctx context.Context, id int32) (*CostCenterDetail, error)
	List(ctx context.Context) ([]*CostCenterDetail, error)
	ListChildren(ctx context.Context, parentID int32) ([]*CostCenterDetail, error)
	ExistsByNameOrCode(ctx context.Context, name, code string) (bool, error)
}
