package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tailorbook-api/internal/config"
	domainRepo "github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/infrastructure/logger"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/handler"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/middleware"
	"github.com/sangkips/tailorbook-api/pkg/utils"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Roles allowed to change shop-wide settings and destructive bill operations
var managerRoles = []string{"owner", "manager"}

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Customer *handler.CustomerHandler
	Tax      *handler.TaxHandler
	Bill     *handler.BillHandler
	Receipt  *handler.ReceiptHandler
	Printer  *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	Logger          *zap.Logger
	DB              *gorm.DB
	IdempotencyRepo domainRepo.IdempotencyRepository
	RateLimiter     *middleware.ShopRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	router.Use(logger.Recovery(deps.Logger))
	router.Use(logger.GinMiddleware(deps.Logger))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", healthHandler(deps))

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))
		if deps.RateLimiter != nil {
			protected.Use(deps.RateLimiter.Middleware())
		}

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func healthHandler(deps *Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		}
		if deps.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
				status["status"] = "degraded"
				status["database"] = "unreachable"
				c.JSON(http.StatusServiceUnavailable, status)
				return
			}
			status["database"] = "ok"
		}
		c.JSON(http.StatusOK, status)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	// Customers
	registerCustomerRoutes(protected, h)

	// Taxes
	registerTaxRoutes(protected, h)

	// Bills
	registerBillRoutes(protected, h, idempotent)

	// Receipts
	registerReceiptRoutes(protected, h, idempotent)

	// Printer
	registerPrinterRoutes(protected, h)
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers) {
	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Delete)
	}
}

func registerTaxRoutes(protected *gin.RouterGroup, h *Handlers) {
	taxes := protected.Group("/taxes")
	{
		taxes.GET("", h.Tax.List)
		taxes.POST("", middleware.RequireRole(managerRoles...), h.Tax.Create)
		taxes.PUT("/:id", middleware.RequireRole(managerRoles...), h.Tax.Update)
		taxes.DELETE("/:id", middleware.RequireRole(managerRoles...), h.Tax.Delete)
	}
}

func registerBillRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	bills := protected.Group("/bills")
	{
		bills.GET("", h.Bill.List)
		// Creation requires an Idempotency-Key so a retried request cannot open a second bill
		bills.POST("", idempotent, h.Bill.Create)
		bills.GET("/due", h.Bill.ListDue)
		bills.GET("/:number", h.Bill.Get)
		bills.PUT("/:number", h.Bill.Update)
		bills.DELETE("/:number", middleware.RequireRole(managerRoles...), h.Bill.Delete)
		bills.GET("/:number/amount-track", h.Bill.AmountTrack)
		bills.POST("/:number/reconcile", h.Bill.Reconcile)
		bills.GET("/:number/receipts", h.Bill.Receipts)
	}
}

func registerReceiptRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	receipts := protected.Group("/receipts")
	{
		receipts.POST("", idempotent, h.Receipt.Create)
		receipts.GET("/:number", h.Receipt.Get)
		receipts.PUT("/:number", h.Receipt.Update)
		receipts.GET("/:number/breakdown", h.Receipt.Breakdown)
		receipts.POST("/:number/print", h.Printer.PrintReceipt)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printer := protected.Group("/printer")
	{
		printer.GET("/status", h.Printer.GetStatus)
	}
}
