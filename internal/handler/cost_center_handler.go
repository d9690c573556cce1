package handler

import (
	"net/http"

	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CostCenterHandler handles cost center HTTP requests
type CostCenterHandler struct {
	costCenterService *service.CostCenterService
}

// NewCostCenterHandler creates a new CostCenterHandler
func NewCostCenterHandler(costCenterService *service.CostCenterService) *CostCenterHandler {
	return &CostCenterHandler{costCenterService: costCenterService}
}

// CreateCostCenterRequest is the JSON request for creating a cost center
type CreateCostCenterRequest struct {
	Name      string `json:"name" validate:"required,max=100"`
	Code      string `json:"code" validate:"required,max=20"`
	ManagerID int32  `json:"managerId" validate:"required,gt=0"`
	ParentID  *int32 `json:"parentId,omitempty" validate:"omitempty,gt=0"`
}

// CreateCostCenter godoc
// @Summary Create a cost center
// @Tags cost-centers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateCostCenterRequest true "Cost center"
// @Success 201 {object} CostCenterResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /cost-centers [post]
func (h *CostCenterHandler) CreateCostCenter(c echo.Context) error {
	var req CreateCostCenterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return handleServiceError(c, err, "Failed to create cost center")
	}

	cc, err := h.costCenterService.CreateCostCenter(c.Request().Context(), service.CreateCostCenterInput{
		Name:      req.Name,
		Code:      req.Code,
		ManagerID: req.ManagerID,
		ParentID:  req.ParentID,
	})
	if err != nil {
		return handleServiceError(c, err, "Failed to create cost center")
	}

	log.Info().Int32("cost_center_id", cc.ID).Str("code", cc.Code).Msg("Cost center created")
	return c.JSON(http.StatusCreated, toCostCenterResponse(cc))
}

// ListCostCenters godoc
// @Summary List cost centers
// @Tags cost-centers
// @Produce json
// @Security BearerAuth
// @Success 200 {array} CostCenterResponse
// @Router /cost-centers [get]
func (h *CostCenterHandler) ListCostCenters(c echo.Context) error {
	ccs, err := h.costCenterService.ListCostCenters(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "Failed to list cost centers")
	}
	return c.JSON(http.StatusOK, mapSlice(ccs, toCostCenterResponse))
}

// GetCostCenter godoc
// @Summary Get a cost center
// @Tags cost-centers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Cost center ID"
// @Success 200 {object} CostCenterResponse
// @Failure 404 {object} ProblemDetails
// @Router /cost-centers/{id} [get]
func (h *CostCenterHandler) GetCostCenter(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	cc, err := h.costCenterService.GetCostCenter(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to get cost center")
	}
	return c.JSON(http.StatusOK, toCostCenterResponse(cc))
}

// ListChildren godoc
// @Summary List child cost centers
// @Tags cost-centers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Parent cost center ID"
// @Success 200 {array} CostCenterResponse
// @Failure 404 {object} ProblemDetails
// @Router /cost-centers/{id}/children [get]
func (h *CostCenterHandler) ListChildren(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return handleServiceError(c, err, "")
	}
	children, err := h.costCenterService.ListChildren(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, "Failed to list child cost centers")
	}
	return c.JSON(http.StatusOK, mapSlice(children, toCostCenterResponse))
}
