package handler

import (
	"net/http"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// RequisitionHandler handles requisition submission and decisions
type RequisitionHandler struct {
	requisitionService *service.RequisitionService
}

// NewRequisitionHandler creates a new RequisitionHandler
func NewRequisitionHandler(requisitionService *service.RequisitionService) *RequisitionHandler {
	return &RequisitionHandler{requisitionService: requisitionService}
}

// SubmitRequisitionRequest is the JSON request for submitting a requisition.
// RequesterID defaults to the authenticated user.
type SubmitRequisitionRequest struct {
	RequesterID     *int32 `json:"requesterId,omitempty" validate:"omitempty,gt=0"`
	CostCenterID    int32  `json:"costCenterId" validate:"required,gt=0"`
	AccountPlanID   int32  `json:"accountPlanId" validate:"required,gt=0"`
	Description     string `json:"description" validate:"required,max=500"`
	RequestedAmount string `json:"requestedAmount" validate:"required,decimal"`
}

// DecideRequisitionRequest is the JSON request for approving or rejecting.
// ActingManagerID defaults to the authenticated user.
type DecideRequisitionRequest struct {
	ActingManagerID *int32 `json:"actingManagerId,omitempty" validate:"omitempty,gt=0"`
}

// SubmitRequisition godoc
// @Summary Submit a requisition
// @Description Submits a spending request against the current month's budget line
// @Tags requisitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SubmitRequisitionRequest true "Requisition"
// @Success 201 {object} RequisitionResponse
// @Failure 400 {object} ProblemDetails "Validation error or budget exceeded"
// @Failure 403 {object} ProblemDetails
// @Router /requisitions [post]
func (h *RequisitionHandler) SubmitRequisition(c echo.Context) error {
	var req SubmitRequisitionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err, "")
	}
	requesterID, err := actingUser(c, req.RequesterID, "requesterId")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	amount, err := parseAmount("requestedAmount", req.RequestedAmount)
	if err != nil {
		return handleServiceError(c, err, "")
	}

	requisition, err := h.requisitionService.Submit(c.Request().Context(), service.SubmitRequisitionInput{
		RequesterID:   requesterID,
		CostCenterID:  req.CostCenterID,
		AccountPlanID: req.AccountPlanID,
		Description:   req.Description,
		Amount:        amount,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to submit requisition")
	}
	return c.JSON(http.StatusCreated, toRequisitionResponse(requisition))
}

// ListRequisitions godoc
// @Summary List requisitions
// @Description Lists requisitions newest first
// @Tags requisitions
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Param costCenterId query int false "Cost center ID"
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} RequisitionResponse
// @Failure 400 {object} ProblemDetails
// @Router /requisitions [get]
func (h *RequisitionHandler) ListRequisitions(c echo.Context) error {
	year, month, err := parsePeriodQuery(c)
	if err != nil {
		return handleServiceError(c, err, "")
	}
	costCenterID, err := parseOptionalIDQuery(c, "costCenterId")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	filter := domain.RequisitionFilter{Year: year, Month: month, CostCenterID: costCenterID}
	if raw := c.QueryParam("status"); raw != "" {
		status, err := domain.ParseRequisitionStatus(raw)
		if err != nil {
			return handleServiceError(c, fieldError("status", "status must be one of: pending, approved, rejected"), "")
		}
		filter.Status = &status
	}

	requisitions, err := h.requisitionService.ListRequisitions(c.Request().Context(), filter)
	if err != nil {
		return handleServiceError(c, err, "Failed to list requisitions")
	}
	return c.JSON(http.StatusOK, mapSlice(requisitions, toRequisitionResponse))
}

// GetRequisition godoc
// @Summary Get a requisition
// @Tags requisitions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Requisition ID"
// @Success 200 {object} RequisitionResponse
// @Failure 404 {object} ProblemDetails
// @Router /requisitions/{id} [get]
func (h *RequisitionHandler) GetRequisition(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	requisition, err := h.requisitionService.GetRequisition(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get requisition")
	}
	return c.JSON(http.StatusOK, toRequisitionResponse(requisition))
}

// ApproveRequisition godoc
// @Summary Approve a requisition
// @Tags requisitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Requisition ID"
// @Param request body DecideRequisitionRequest false "Acting manager"
// @Success 200 {object} RequisitionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails "Already decided"
// @Router /requisitions/{id}/approve [post]
func (h *RequisitionHandler) ApproveRequisition(c echo.Context) error {
	return h.decide(c, domain.DecisionApprove)
}

// RejectRequisition godoc
// @Summary Reject a requisition
// @Tags requisitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Requisition ID"
// @Param request body DecideRequisitionRequest false "Acting manager"
// @Success 200 {object} RequisitionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails "Already decided"
// @Router /requisitions/{id}/reject [post]
func (h *RequisitionHandler) RejectRequisition(c echo.Context) error {
	return h.decide(c, domain.DecisionReject)
}

func (h *RequisitionHandler) decide(c echo.Context, decision domain.Decision) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}

	// An empty body is allowed when the caller is authenticated
	var req DecideRequisitionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err, "")
	}
	managerID, err := actingUser(c, req.ActingManagerID, "actingManagerId")
	if err != nil {
		return handleServiceError(c, err, "")
	}

	requisition, err := h.requisitionService.Decide(c.Request().Context(), id, managerID, decision)
	if err != nil {
		return handleServiceError(c, err, "Failed to decide requisition")
	}
	return c.JSON(http.StatusOK, toRequisitionResponse(requisition))
}
