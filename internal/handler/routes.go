package handler

import (
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the HTTP handlers mounted under /api/v1
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	CostCenter   *CostCenterHandler
	AccountPlan  *AccountPlanHandler
	Budget       *BudgetHandler
	Requisition  *RequisitionHandler
	Attachment   *AttachmentHandler
	RateLimiter  *middleware.RateLimiter
	Authenticate *middleware.DualAuthMiddleware
}

// RegisterRoutes sets up all API routes. Registration and login are public;
// whether the rest require credentials depends on how Authenticate was built.
func RegisterRoutes(e *echo.Echo, h Handlers) {
	api := e.Group("/api/v1")

	var limit []echo.MiddlewareFunc
	if h.RateLimiter != nil {
		limit = append(limit, middleware.RateLimitMiddleware(h.RateLimiter))
	}

	// Public routes
	api.POST("/users", h.User.CreateUser, limit...)
	api.POST("/auth/login", h.Auth.Login, limit...)

	// Routes behind the configured authentication mode
	protected := api.Group("", append([]echo.MiddlewareFunc{h.Authenticate.Authenticate()}, limit...)...)

	// Auth routes always need an identity
	auth := protected.Group("/auth")
	auth.Use(h.Authenticate.Required())
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	protected.GET("/users", h.User.ListUsers)
	protected.GET("/users/:id", h.User.GetUser)

	costCenters := protected.Group("/cost-centers")
	costCenters.POST("", h.CostCenter.CreateCostCenter)
	costCenters.GET("", h.CostCenter.ListCostCenters)
	costCenters.GET("/:id", h.CostCenter.GetCostCenter)
	costCenters.GET("/:id/children", h.CostCenter.ListChildren)

	accountPlans := protected.Group("/account-plans")
	accountPlans.POST("", h.AccountPlan.CreateAccountPlan)
	accountPlans.GET("", h.AccountPlan.ListAccountPlans)
	accountPlans.GET("/:id", h.AccountPlan.GetAccountPlan)

	budgets := protected.Group("/budgets")
	budgets.POST("", h.Budget.CreateBudget)
	budgets.GET("", h.Budget.ListBudgets)
	budgets.GET("/:id", h.Budget.GetBudget)
	budgets.GET("/:id/summary", h.Budget.GetSummary)

	requisitions := protected.Group("/requisitions")
	requisitions.POST("", h.Requisition.SubmitRequisition)
	requisitions.GET("", h.Requisition.ListRequisitions)
	requisitions.GET("/:id", h.Requisition.GetRequisition)
	requisitions.POST("/:id/approve", h.Requisition.ApproveRequisition)
	requisitions.POST("/:id/reject", h.Requisition.RejectRequisition)
	requisitions.POST("/:id/attachments", h.Attachment.UploadAttachment)
	requisitions.GET("/:id/attachments", h.Attachment.ListAttachments)
}
