package routes

import (
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/locker-service/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler the API mounts
type Handlers struct {
	Users        *handler.UserHandler
	Lockers      *handler.LockerHandler
	Devices      *handler.DeviceHandler
	Transactions *handler.TransactionHandler
	Payments     *handler.PaymentHandler
	LockerLogs   *handler.LockerLogHandler
	Health       *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers) {
	handler.RegisterBindingLabels()

	router.GET("/health", h.Health.Health)

	api := router.Group("/api/v1")

	users := api.Group("/users")
	{
		users.POST("", h.Users.Create)
		users.GET("", h.Users.List)
		users.GET("/:id", h.Users.Get)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Delete)
	}

	lockers := api.Group("/lockers")
	{
		lockers.POST("", h.Lockers.Create)
		lockers.GET("", h.Lockers.List)
		lockers.GET("/:id", h.Lockers.Get)
		lockers.PUT("/:id", h.Lockers.Update)
		lockers.DELETE("/:id", h.Lockers.Delete)
		lockers.GET("/:id/consistency", h.Lockers.Consistency)
		lockers.POST("/:id/reconcile", h.Lockers.Reconcile)
	}

	devices := api.Group("/devices")
	{
		devices.POST("", h.Devices.Create)
		devices.GET("", h.Devices.List)
		devices.GET("/:id", h.Devices.Get)
		devices.PUT("/:id", h.Devices.Update)
		devices.PUT("/:id/status", h.Devices.SetStatus)
		devices.DELETE("/:id", h.Devices.Delete)
	}

	transactions := api.Group("/transactions")
	{
		transactions.POST("", h.Transactions.Book)
		transactions.GET("", h.Transactions.List)
		transactions.POST("/checkout", h.Transactions.CheckoutByCode)
		transactions.POST("/access", h.Transactions.Access)
		transactions.GET("/:id", h.Transactions.Get)
		transactions.POST("/:id/paid", h.Transactions.MarkPaid)
		transactions.POST("/:id/failed", h.Transactions.MarkFailed)
		transactions.POST("/:id/expired", h.Transactions.MarkExpired)
		transactions.POST("/:id/checkout", h.Transactions.Checkout)
		transactions.DELETE("/:id", h.Transactions.Delete)
	}

	payments := api.Group("/payments")
	{
		payments.POST("", h.Payments.Create)
		payments.GET("", h.Payments.List)
		payments.GET("/:id", h.Payments.Get)
		payments.POST("/:id/outcome", h.Payments.RecordOutcome)
		payments.DELETE("/:id", h.Payments.Delete)
	}

	logs := api.Group("/locker-logs")
	{
		logs.POST("", h.LockerLogs.Create)
		logs.GET("", h.LockerLogs.List)
		logs.POST("/purge", h.LockerLogs.Purge)
		logs.GET("/stats", h.LockerLogs.Stats)
		logs.GET("/:id", h.LockerLogs.Get)
		logs.PUT("/:id", h.LockerLogs.Correct)
		logs.DELETE("/:id", h.LockerLogs.Delete)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, ids coreport.IDGenerator, timeProvider coreport.TimeProvider) {
	router.Use(middleware.RequestID(ids))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
	router.Use(middleware.CORS())
}
