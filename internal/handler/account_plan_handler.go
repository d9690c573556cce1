package handler

import (
	"net/http"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AccountPlanHandler handles account plan HTTP requests
type AccountPlanHandler struct {
	accountPlanService *service.AccountPlanService
}

// NewAccountPlanHandler creates a new AccountPlanHandler
func NewAccountPlanHandler(accountPlanService *service.AccountPlanService) *AccountPlanHandler {
	return &AccountPlanHandler{accountPlanService: accountPlanService}
}

// CreateAccountPlanRequest is the JSON request for creating an account plan.
// CodeConta is accepted as an alias of Code.
type CreateAccountPlanRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Code      string `json:"code" validate:"required_without=CodeConta,max=20"`
	CodeConta string `json:"codeConta" validate:"required_without=Code,max=20"`
}

func (r CreateAccountPlanRequest) code() string {
	if r.Code != "" {
		return r.Code
	}
	return r.CodeConta
}

// CreateAccountPlan godoc
// @Summary Create an account plan
// @Tags account-plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAccountPlanRequest true "Account plan"
// @Success 201 {object} AccountPlanResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /account-plans [post]
func (h *AccountPlanHandler) CreateAccountPlan(c echo.Context) error {
	var req CreateAccountPlanRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err, "Failed to create account plan")
	}

	plan, err := h.accountPlanService.CreateAccountPlan(c.Request().Context(), req.Name, req.code())
	if err != nil {
		return handleServiceError(c, err, "Failed to create account plan")
	}

	log.Info().Int32("account_plan_id", plan.ID).Str("code", plan.Code).Msg("Account plan created")
	return c.JSON(http.StatusCreated, toAccountPlanResponse(plan))
}

// ListAccountPlans godoc
// @Summary List account plans
// @Tags account-plans
// @Produce json
// @Security BearerAuth
// @Success 200 {array} AccountPlanResponse
// @Router /account-plans [get]
func (h *AccountPlanHandler) ListAccountPlans(c echo.Context) error {
	plans, err := h.accountPlanService.ListAccountPlans(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Failed to list account plans")
	}
	return c.JSON(http.StatusOK, mapSlice(plans, toAccountPlanResponse))
}

// GetAccountPlan godoc
// @Summary Get an account plan
// @Tags account-plans
// @Produce json
// @Security BearerAuth
// @Param id path int true "Account plan ID"
// @Success 200 {object} AccountPlanResponse
// @Failure 404 {object} ProblemDetails
// @Router /account-plans/{id} [get]
func (h *AccountPlanHandler) GetAccountPlan(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	plan, err := h.accountPlanService.GetAccountPlan(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get account plan")
	}
	return c.JSON(http.StatusOK, toAccountPlanResponse(plan))
}
