package handler

import (
	"time"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
)

// UserResponse is the JSON shape of a user. Password hashes never leave the service.
type UserResponse struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

// CostCenterResponse is the JSON shape of a cost center with joined names
type CostCenterResponse struct {
	ID          int32     `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	ManagerID   int32     `json:"managerId"`
	ManagerName string    `json:"managerName"`
	ParentID    *int32    `json:"parentId,omitempty"`
	ParentName  *string   `json:"parentName,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toCostCenterResponse(cc *domain.CostCenterDetail) CostCenterResponse {
	return CostCenterResponse{
		ID:          cc.ID,
		Name:        cc.Name,
		Code:        cc.Code,
		ManagerID:   cc.ManagerID,
		ManagerName: cc.ManagerName,
		ParentID:    cc.ParentID,
		ParentName:  cc.ParentName,
		CreatedAt:   cc.CreatedAt,
	}
}

// AccountPlanResponse is the JSON shape of an account plan. CodeConta mirrors
// Code for clients of the legacy field name.
type AccountPlanResponse struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CodeConta string    `json:"codeConta"`
	CreatedAt time.Time `json:"createdAt"`
}

func toAccountPlanResponse(ap *domain.AccountPlan) AccountPlanResponse {
	return AccountPlanResponse{
		ID:        ap.ID,
		Name:      ap.Name,
		Code:      ap.Code,
		CodeConta: ap.Code,
		CreatedAt: ap.CreatedAt,
	}
}

// BudgetResponse is the JSON shape of a budget line allocation
type BudgetResponse struct {
	ID              int32     `json:"id"`
	CostCenterID    int32     `json:"costCenterId"`
	CostCenterName  string    `json:"costCenterName"`
	AccountPlanID   int32     `json:"accountPlanId"`
	AccountPlanName string    `json:"accountPlanName"`
	Year            int       `json:"year"`
	Month           int       `json:"month"`
	AllocatedAmount string    `json:"allocatedAmount"`
	CreatedAt       time.Time `json:"createdAt"`
}

func toBudgetResponse(b *domain.BudgetDetail) BudgetResponse {
	return BudgetResponse{
		ID:              b.ID,
		CostCenterID:    b.CostCenterID,
		CostCenterName:  b.CostCenterName,
		AccountPlanID:   b.AccountPlanID,
		AccountPlanName: b.AccountPlanName,
		Year:            b.Year,
		Month:           b.Month,
		AllocatedAmount: b.AllocatedAmount.StringFixed(2),
		CreatedAt:       b.CreatedAt,
	}
}

// BudgetSummaryResponse is the ledger view of a budget line
type BudgetSummaryResponse struct {
	Budget    BudgetResponse `json:"budget"`
	Allocated string         `json:"allocated"`
	Committed string         `json:"committed"`
	Remaining string         `json:"remaining"`
}

// RequisitionResponse is the JSON shape of a requisition with joined names
type RequisitionResponse struct {
	ID              int32      `json:"id"`
	RequesterID     int32      `json:"requesterId"`
	RequesterName   string     `json:"requesterName"`
	CostCenterID    int32      `json:"costCenterId"`
	CostCenterName  string     `json:"costCenterName"`
	AccountPlanID   int32      `json:"accountPlanId"`
	AccountPlanName string     `json:"accountPlanName"`
	Description     string     `json:"description"`
	RequestedAmount string     `json:"requestedAmount"`
	RequestedAt     time.Time  `json:"requestedAt"`
	Status          string     `json:"status"`
	ApproverID      *int32     `json:"approverId,omitempty"`
	ApproverName    *string    `json:"approverName,omitempty"`
	DecidedAt       *time.Time `json:"decidedAt,omitempty"`
}

func toRequisitionResponse(r *domain.RequisitionDetail) RequisitionResponse {
	return RequisitionResponse{
		ID:              r.ID,
		RequesterID:     r.RequesterID,
		RequesterName:   r.RequesterName,
		CostCenterID:    r.CostCenterID,
		CostCenterName:  r.CostCenterName,
		AccountPlanID:   r.AccountPlanID,
		AccountPlanName: r.AccountPlanName,
		Description:     r.Description,
		RequestedAmount: r.RequestedAmount.StringFixed(2),
		RequestedAt:     r.RequestedAt,
		Status:          string(r.Status),
		ApproverID:      r.ApproverID,
		ApproverName:    r.ApproverName,
		DecidedAt:       r.DecidedAt,
	}
}

// AttachmentResponse is an attachment with temporary download URLs
type AttachmentResponse struct {
	ID            string                `json:"id"`
	RequisitionID int32                 `json:"requisitionId"`
	UploadedBy    int32                 `json:"uploadedBy"`
	FileName      string                `json:"fileName"`
	URLs          domain.AttachmentURLs `json:"urls"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func toAttachmentResponse(a *service.AttachmentView) AttachmentResponse {
	return AttachmentResponse{
		ID:            a.ID.String(),
		RequisitionID: a.RequisitionID,
		UploadedBy:    a.UploadedBy,
		FileName:      a.FileName,
		URLs:          a.URLs,
		CreatedAt:     a.CreatedAt,
	}
}

func mapSlice[T, R any](items []T, convert func(T) R) []R {
	out := make([]R, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}
	return out
}
