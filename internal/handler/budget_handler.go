package handler

import (
	"net/http"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BudgetHandler handles budget allocation and ledger summary requests
type BudgetHandler struct {
	budgetService *service.BudgetService
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService) *BudgetHandler {
	return &BudgetHandler{budgetService: budgetService}
}

// CreateBudgetRequest is the JSON request for allocating a budget line
type CreateBudgetRequest struct {
	CostCenterID    int32  `json:"costCenterId" validate:"required,gt=0"`
	AccountPlanID   int32  `json:"accountPlanId" validate:"required,gt=0"`
	Year            int    `json:"year" validate:"required,gte=2020,lte=2100"`
	Month           int    `json:"month" validate:"required,gte=1,lte=12"`
	AllocatedAmount string `json:"allocatedAmount" validate:"required,decimal"`
}

// CreateBudget godoc
// @Summary Allocate a budget line
// @Description Allocates an amount to a cost center and account plan for one month
// @Tags budgets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBudgetRequest true "Budget"
// @Success 201 {object} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /budgets [post]
func (h *BudgetHandler) CreateBudget(c echo.Context) error {
	var req CreateBudgetRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err, "Failed to create budget")
	}
	allocated, err := parseAmount("allocatedAmount", req.AllocatedAmount)
	if err != nil {
		return handleServiceError(c, err, "")
	}

	budget, err := h.budgetService.CreateBudget(c.Request().Context(), service.CreateBudgetInput{
		CostCenterID:    req.CostCenterID,
		AccountPlanID:   req.AccountPlanID,
		Year:            req.Year,
		Month:           req.Month,
		AllocatedAmount: allocated,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to create budget")
	}

	log.Info().
		Int32("budget_id", budget.ID).
		Int("year", budget.Year).
		Int("month", budget.Month).
		Str("allocated", budget.AllocatedAmount.StringFixed(2)).
		Msg("Budget allocated")
	return c.JSON(http.StatusCreated, toBudgetResponse(budget))
}

// ListBudgets godoc
// @Summary List budgets
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Param costCenterId query int false "Cost center ID"
// @Success 200 {array} BudgetResponse
// @Failure 400 {object} ProblemDetails
// @Router /budgets [get]
func (h *BudgetHandler) ListBudgets(c echo.Context) error {
	year, month, err := parsePeriodQuery(c)
	if err != nil {
		return handleServiceError(c, err, "")
	}
	costCenterID, err := parseOptionalIDQuery(c, "costCenterId")
	if err != nil {
		return handleServiceError(c, err, "")
	}

	budgets, err := h.budgetService.ListBudgets(c.Request().Context(), domain.BudgetFilter{
		Year:         year,
		Month:        month,
		CostCenterID: costCenterID,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to list budgets")
	}
	return c.JSON(http.StatusOK, mapSlice(budgets, toBudgetResponse))
}

// GetBudget godoc
// @Summary Get a budget
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 200 {object} BudgetResponse
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id} [get]
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	budget, err := h.budgetService.GetBudget(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budget")
	}
	return c.JSON(http.StatusOK, toBudgetResponse(budget))
}

// GetSummary godoc
// @Summary Budget ledger summary
// @Description Allocated, committed (pending and approved) and remaining amounts of a budget line
// @Tags budgets
// @Produce json
// @Security BearerAuth
// @Param id path int true "Budget ID"
// @Success 200 {object} BudgetSummaryResponse
// @Failure 404 {object} ProblemDetails
// @Router /budgets/{id}/summary [get]
func (h *BudgetHandler) GetSummary(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	summary, err := h.budgetService.GetSummary(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get budget summary")
	}
	return c.JSON(http.StatusOK, BudgetSummaryResponse{
		Budget:    toBudgetResponse(summary.Budget),
		Allocated: summary.Allocated.StringFixed(2),
		Committed: summary.Committed.StringFixed(2),
		Remaining: summary.Remaining.StringFixed(2),
	})
}
