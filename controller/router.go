package controller

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/varity-labs/varity-app-store/common"
	"github.com/varity-labs/varity-app-store/conf"
	"github.com/varity-labs/varity-app-store/controller/handler"
	"github.com/varity-labs/varity-app-store/controller/respond"
	"github.com/varity-labs/varity-app-store/docs"
	"github.com/varity-labs/varity-app-store/service/audit_service"
	"github.com/varity-labs/varity-app-store/service/event_service"
	"github.com/varity-labs/varity-app-store/service/ledger_service"
	"github.com/varity-labs/varity-app-store/service/registry_service"
)

var log = common.NewLog("controller")

// Services everything the HTTP boundary talks to. Audit, Recent and Archive may be nil.
type Services struct {
	Registry *registry_service.RegistryService
	Ledger   *ledger_service.LedgerService
	Audit    *audit_service.AuditService
	Recent   *event_service.RingSink
	Archive  *event_service.ArchiveSink
}

// SetupRouter setup app store router
func SetupRouter(cfg *conf.Config, svc *Services) *gin.Engine {
	// Set Swagger host from config
	if cfg.Server.SwaggerBaseUrl != "" {
		docs.SwaggerInfo.Host = cfg.Server.SwaggerBaseUrl
	}
	docs.SwaggerInfo.BasePath = cfg.Server.PathPrefix

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization", "Accept", "Cache-Control", "X-Requested-With", handler.AccountHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: !allowsAnyOrigin(cfg.Server.AllowOrigins),
		MaxAge:           12 * 3600, // 12 hours
	}))

	r.Use(respond.TimingMiddleware())
	r.Use(handler.AccountMiddleware())

	appHandler := handler.NewAppHandler(svc.Registry)
	ledgerHandler := handler.NewLedgerHandler(svc.Ledger, svc.Audit, cfg.Ledger.TokenDecimals)
	eventHandler := handler.NewEventHandler(svc.Recent, svc.Archive)

	root := r.Group(cfg.Server.PathPrefix)

	v1 := root.Group("/api/v1")
	{
		apps := v1.Group("/apps")
		{
			apps.GET("", appHandler.ListApps)
			apps.POST("", appHandler.SubmitApp)

			// Static segments before /:id
			apps.GET("/count", appHandler.AppCount)
			apps.GET("/pending", appHandler.ListPending)
			apps.GET("/pending/queue", appHandler.PendingQueue)
			apps.GET("/featured", appHandler.ListFeatured)
			apps.GET("/developer/:account", appHandler.ListByDeveloper)

			apps.GET("/:id", appHandler.GetApp)
			apps.PUT("/:id", appHandler.UpdateApp)
			apps.GET("/:id/screenshots/:index", appHandler.GetScreenshot)
			apps.GET("/:id/events", eventHandler.ListByApp)
			apps.POST("/:id/approve", appHandler.ApproveApp)
			apps.POST("/:id/reject", appHandler.RejectApp)
			apps.POST("/:id/deactivate", appHandler.DeactivateApp)
			apps.POST("/:id/feature", appHandler.FeatureApp)
			apps.DELETE("/:id/feature", appHandler.UnfeatureApp)
		}

		admins := v1.Group("/admins")
		{
			admins.GET("", appHandler.ListAdmins)
			admins.POST("", appHandler.AddAdmin)
			admins.GET("/:account", appHandler.IsAdmin)
			admins.DELETE("/:account", appHandler.RemoveAdmin)
		}

		pricing := v1.Group("/pricing")
		{
			pricing.GET("/:appId", ledgerHandler.GetPricing)
			pricing.PUT("/:appId", ledgerHandler.SetPrice)
			pricing.PATCH("/:appId", ledgerHandler.UpdatePrice)
			pricing.POST("/:appId/deactivate", ledgerHandler.DeactivatePricing)
		}

		// Settlement routes move funds and are throttled per caller
		settle := v1.Group("")
		if cfg.Server.RateLimit > 0 {
			mw, err := handler.LimiterMiddleware(cfg.Server.RateLimit, cfg.Server.RatePeriod)
			if err != nil {
				log.Error("rate limit disabled", "limit", cfg.Server.RateLimit, "period", cfg.Server.RatePeriod, "err", err)
			} else {
				settle.Use(mw)
			}
		}
		settle.POST("/purchases/:appId", ledgerHandler.Purchase)
		settle.POST("/billing/:appId", ledgerHandler.PayBill)

		v1.GET("/purchases/:appId/:buyer", ledgerHandler.GetPurchase)
		v1.GET("/billing/:appId/:period", ledgerHandler.GetBilling)

		ledger := v1.Group("/ledger")
		{
			ledger.GET("/summary", ledgerHandler.Summary)
			ledger.POST("/owner", ledgerHandler.TransferOwnership)
			ledger.GET("/audit", ledgerHandler.LastAudit)
			ledger.POST("/audit", ledgerHandler.RunAudit)
		}

		v1.GET("/events/recent", eventHandler.Recent)
	}

	// Health check
	root.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "appstore",
			"net":     cfg.Net,
		})
	})

	root.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger documentation
	root.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName("swagger")))

	return r
}

func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
