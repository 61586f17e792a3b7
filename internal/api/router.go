package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/civicfix/mobile-gateway/docs"
	"github.com/civicfix/mobile-gateway/internal/api/handler"
	appmiddleware "github.com/civicfix/mobile-gateway/internal/api/middleware"
	"github.com/civicfix/mobile-gateway/internal/core/service"
	"github.com/civicfix/mobile-gateway/internal/core/session"
	"github.com/civicfix/mobile-gateway/internal/infrastructure/backend"
	"github.com/civicfix/mobile-gateway/internal/infrastructure/config"
	mongoinfra "github.com/civicfix/mobile-gateway/internal/infrastructure/db/mongo"
	redisinfra "github.com/civicfix/mobile-gateway/internal/infrastructure/db/redis"
	"github.com/civicfix/mobile-gateway/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(cfg *config.Config, db *mongo.Database, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("civicfix"))

	// --- Dependencies ---
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	authAPI := backend.NewAuthAPI(client)
	issuesAPI := backend.NewIssuesAPI(client)
	registrar := backend.NewNotificationRegistrar(client)

	registry := session.NewRegistry(redisinfra.NewStorageFactory(rdb), cfg.SessionIdleAfter)
	initializer := session.NewInitializer(log)
	roleRouter := session.NewRoleRouter(cfg.RoleStaleAfter, log)
	limiter := redisinfra.NewResendLimiter(rdb, cfg.ResendCooldownSeconds)

	flows := service.NewAuthFlows(authAPI, registrar, limiter, service.NewCooldownSet(), cfg.ResendCooldownSeconds, log)
	drafts := service.NewDraftService(mongoinfra.NewDraftRepository(db), issuesAPI, log)

	authHandler := handler.NewAuthHandler(flows)
	sessionHandler := handler.NewSessionHandler(flows)
	draftHandler := handler.NewDraftHandler(drafts)
	issuesHandler := handler.NewIssuesHandler(issuesAPI)

	sessionMW := appmiddleware.Session(registry, initializer, roleRouter)

	// --- Auth flows (session-scoped, no role required) ---
	auth := e.Group("/auth", sessionMW)
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/google", authHandler.GoogleLogin)
	auth.POST("/otp/verify", authHandler.VerifyOTP)
	auth.POST("/otp/resend", authHandler.ResendOTP)
	auth.POST("/email/verify", authHandler.VerifyEmail)
	auth.POST("/email/resend", authHandler.ResendEmail)
	auth.GET("/resend/:channel", authHandler.ResendState)
	auth.POST("/password/reset", authHandler.ForgotPassword)
	auth.POST("/logout", authHandler.Logout)

	// --- Session probe ---
	sess := e.Group("/session", sessionMW)
	sess.GET("", sessionHandler.Describe)
	sess.POST("/profile", sessionHandler.RefreshProfile)

	// --- Role-gated app surfaces, one group per navigator ---
	citizen := e.Group("/app/citizen", sessionMW, appmiddleware.RequireNavigator(session.NavigatorCitizen))
	citizen.GET("/issues", issuesHandler.Feed)
	citizen.POST("/issues/:id/upvote", issuesHandler.Upvote)
	citizen.POST("/drafts", draftHandler.Create)
	citizen.GET("/drafts", draftHandler.List)
	citizen.GET("/drafts/:id", draftHandler.Get)
	citizen.PUT("/drafts/:id", draftHandler.Update)
	citizen.DELETE("/drafts/:id", draftHandler.Discard)
	citizen.POST("/drafts/:id/submit", draftHandler.Submit)

	worker := e.Group("/app/worker", sessionMW, appmiddleware.RequireNavigator(session.NavigatorWorker))
	worker.GET("/issues", issuesHandler.Assigned)

	admin := e.Group("/app/admin", sessionMW, appmiddleware.RequireNavigator(session.NavigatorAdmin))
	admin.GET("/stats", issuesHandler.Stats)

	// --- Operational surfaces ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	// --- Health probes (no session required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
