// @title Budget Requisition API
// @version 1.0
// @description Cost centers, monthly budgets and requisitions that draw on them.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dafibh/budgetreq/budgetreq-backend/docs"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/config"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/domain"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/handler"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/metrics"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/middleware"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/repository/postgres"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/repository/sqlite"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/repository/storage"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/service"
	"github.com/dafibh/budgetreq/budgetreq-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// repositories is the persistence layer selected by DATABASE_DRIVER
type repositories struct {
	users        domain.UserRepository
	costCenters  domain.CostCenterRepository
	accountPlans domain.AccountPlanRepository
	budgets      domain.BudgetRepository
	requisitions domain.RequisitionRepository
	attachments  domain.AttachmentRepository
	tokens       domain.APITokenRepository
	ping         func(ctx context.Context) error
	close        func()
}

func openPostgres(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.MigrateOnStart {
		if err := postgres.ApplyMigrations(ctx, cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("apply migrations: %w", err)
		}
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &repositories{
		users:        postgres.NewUserRepository(pool),
		costCenters:  postgres.NewCostCenterRepository(pool),
		accountPlans: postgres.NewAccountPlanRepository(pool),
		budgets:      postgres.NewBudgetRepository(pool),
		requisitions: postgres.NewRequisitionRepository(pool),
		attachments:  postgres.NewAttachmentRepository(pool),
		tokens:       postgres.NewAPITokenRepository(pool),
		ping:         pool.Ping,
		close:        pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg *config.Config) (*repositories, error) {
	store, err := sqlite.NewStore(ctx, cfg.SQLitePath)
	if err != nil {
		return nil, err
	}

	return &repositories{
		users:        sqlite.NewUserRepository(store),
		costCenters:  sqlite.NewCostCenterRepository(store),
		accountPlans: sqlite.NewAccountPlanRepository(store),
		budgets:      sqlite.NewBudgetRepository(store),
		requisitions: sqlite.NewRequisitionRepository(store),
		attachments:  sqlite.NewAttachmentRepository(store),
		tokens:       sqlite.NewAPITokenRepository(store),
		ping:         store.Ping,
		close: func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Failed to close SQLite store")
			}
		},
	}, nil
}

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx := context.Background()

	// Connect to database
	var repos *repositories
	switch cfg.DatabaseDriver {
	case config.DriverSQLite:
		repos, err = openSQLite(ctx, cfg)
	default:
		repos, err = openPostgres(ctx, cfg)
	}
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("Failed to open database")
	}
	defer repos.close()
	log.Info().Str("driver", cfg.DatabaseDriver).Msg("Connected to database")

	// Initialize services
	directory := service.NewDirectoryService(repos.users)
	ledger := service.NewLedgerService(repos.requisitions, repos.budgets)
	userService := service.NewUserService(repos.users)
	tokenService := service.NewAPITokenService(repos.tokens, directory)
	costCenterService := service.NewCostCenterService(repos.costCenters, directory)
	accountPlanService := service.NewAccountPlanService(repos.accountPlans)
	budgetService := service.NewBudgetService(repos.budgets, repos.costCenters, repos.accountPlans, ledger)
	requisitionService := service.NewRequisitionService(repos.requisitions, repos.users, repos.costCenters, repos.accountPlans, ledger, directory)

	collector := metrics.New()
	requisitionService.SetMetrics(collector)

	// Real-time updates
	hub := websocket.NewHub()
	requisitionService.SetEventPublisher(hub)

	// Attachments are only available when S3 is configured
	var objectStorage domain.ObjectStorage
	if cfg.S3.Enabled() {
		s3Storage, err := storage.NewS3ObjectStorage(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		objectStorage = s3Storage
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 storage initialized")
	} else {
		log.Warn().Msg("S3 storage not configured, attachment uploads disabled")
	}
	attachmentService := service.NewAttachmentService(repos.attachments, repos.requisitions, repos.costCenters, objectStorage)
	attachmentService.SetEventPublisher(hub)

	// Initialize auth middleware
	var jwtAuth *middleware.AuthMiddleware
	if cfg.Auth0Enabled() {
		jwtAuth, err = middleware.NewAuthMiddleware(cfg.Auth0Domain, cfg.Auth0Audience, directory)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create auth middleware")
		}
	}
	apiTokenAuth := middleware.NewAPITokenAuthMiddleware(tokenService)
	dualAuth := middleware.NewDualAuthMiddleware(jwtAuth, apiTokenAuth, cfg.AuthRequired)
	if !cfg.AuthRequired {
		log.Warn().Msg("AUTH_REQUIRED is off, requests may act on behalf of any user id they supply")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitPerMinute/6+1)
	defer rateLimiter.Stop()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())
	e.Use(collector.Middleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		pingCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := repos.ping(pingCtx); err != nil {
			log.Error().Err(err).Msg("Health check failed")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(collector.Handler()))

	// API documentation
	e.GET("/swagger/openapi3.json", handler.ServeOpenAPI3Spec)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// WebSocket endpoint authenticates through the token query parameter
	wsHandler := handler.NewWebSocketHandler(hub, dualAuth, cfg.CORSOrigins)
	e.GET("/ws", wsHandler.HandleWS)

	// Register API routes
	handler.RegisterRoutes(e, handler.Handlers{
		Auth:         handler.NewAuthHandler(tokenService, userService),
		User:         handler.NewUserHandler(userService),
		CostCenter:   handler.NewCostCenterHandler(costCenterService),
		AccountPlan:  handler.NewAccountPlanHandler(accountPlanService),
		Budget:       handler.NewBudgetHandler(budgetService),
		Requisition:  handler.NewRequisitionHandler(requisitionService),
		Attachment:   handler.NewAttachmentHandler(attachmentService),
		RateLimiter:  rateLimiter,
		Authenticate: dualAuth,
	})

	// Start server in goroutine
	go func() {
		log.Info().
			Str("port", cfg.Port).
			Bool("auth_required", cfg.AuthRequired).
			Bool("jwt_enabled", jwtAuth != nil).
			Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Int32("user_id", middleware.GetUserID(c)).
				Msg("request")

			return nil
		}
	}
}
