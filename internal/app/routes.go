package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/discipulus-api/internal/handler"
	"github.com/noah-isme/discipulus-api/internal/middleware"
	"github.com/noah-isme/discipulus-api/pkg/config"
	"github.com/noah-isme/discipulus-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/discipulus-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/discipulus-api/pkg/middleware/requestid"
)

func (a *App) routes() *gin.Engine {
	if a.cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	svc := a.services

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.logger))
	r.Use(corsmiddleware.New(a.cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(svc.Metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(svc.Metrics, a.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if a.cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	catalogHandler := handler.NewCatalogHandler(svc.Catalog)
	bookingHandler := handler.NewBookingHandler(svc.Booking)
	chatHandler := handler.NewChatHandler(svc.Chat, a.cfg.CORS.AllowedOrigins, a.logger)
	scheduleHandler := handler.NewScheduleHandler(svc.Schedule)
	dashboardHandler := handler.NewDashboardHandler(svc.Profiles, svc.Wallets)
	statementHandler := handler.NewStatementHandler(svc.Statements)
	authHandler := handler.NewAuthHandler(svc.Auth)
	navigationHandler := handler.NewNavigationHandler(svc.Navigation)

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(a.logger, action, resource)
	}
	requireAuth := middleware.JWT(svc.Auth)

	api := r.Group(a.cfg.APIPrefix)
	api.GET("/metrics/summary", metricsHandler.Summary)

	api.GET("/teachers", catalogHandler.List)
	api.GET("/teachers/:id", catalogHandler.Get)
	api.GET("/teachers/:id/availability", bookingHandler.Availability)
	api.GET("/subjects", catalogHandler.Subjects)
	api.GET("/categories", catalogHandler.Categories)
	api.GET("/navigation", middleware.OptionalJWT(svc.Auth), navigationHandler.Routes)
	api.GET("/files/:token", statementHandler.Download)

	authRoutes := api.Group("/auth")
	authRoutes.POST("/register", audit("register", "user"), authHandler.Register)
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/logout", requireAuth, authHandler.Logout)
	authRoutes.GET("/me", requireAuth, authHandler.Me)

	api.GET("/conversations/:id/stream", middleware.QueryToken(), requireAuth, chatHandler.Stream)

	secured := api.Group("")
	secured.Use(requireAuth)

	secured.POST("/teachers/:id/bookings/drafts", bookingHandler.CreateDraft)
	drafts := secured.Group("/bookings/drafts/:draftId")
	drafts.GET("", bookingHandler.GetDraft)
	drafts.PATCH("", bookingHandler.UpdateDraft)
	drafts.DELETE("", bookingHandler.DiscardDraft)
	drafts.POST("/next", bookingHandler.Next)
	drafts.POST("/back", bookingHandler.Back)
	drafts.POST("/submit", audit("submit", "booking"), bookingHandler.Submit)

	secured.POST("/teachers/:id/conversation", chatHandler.Open)
	conversations := secured.Group("/conversations/:id")
	conversations.GET("", chatHandler.Get)
	conversations.POST("/messages", chatHandler.Send)
	conversations.DELETE("/pending", chatHandler.CancelPending)

	schedule := secured.Group("/schedule")
	schedule.GET("", scheduleHandler.Overview)
	schedule.GET("/classes/:id/cancellation", scheduleHandler.CancellationPolicy)
	schedule.POST("/classes/:id/cancel", audit("cancel", "class"), scheduleHandler.Cancel)
	schedule.POST("/classes/:id/reschedule", audit("reschedule", "class"), scheduleHandler.Reschedule)

	dashboard := secured.Group("/dashboard")
	dashboard.Use(middleware.RequireTeacher())
	dashboard.GET("/profile", dashboardHandler.Profile)
	dashboard.PUT("/profile", audit("update", "teacher_profile"), dashboardHandler.UpdateProfile)
	dashboard.GET("/wallet", dashboardHandler.Wallet)
	dashboard.POST("/wallet/withdrawals", audit("withdraw", "wallet"), dashboardHandler.Withdraw)
	dashboard.GET("/wallet/statement", dashboardHandler.Statement)
	dashboard.POST("/wallet/statement/links", audit("share", "statement"), statementHandler.Share)

	return r
}
