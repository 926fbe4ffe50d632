package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func NewRouter(handler *Handler, authMiddleware, activityMiddleware gin.HandlerFunc, environment string) *gin.Engine {
	if environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	api := router.Group("/api/v1")

	api.POST("/auth/register", handler.register)
	api.POST("/auth/login", handler.login)
	api.GET("/tariffs", handler.listTariffs)

	protected := api.Group("/")
	protected.Use(authMiddleware, activityMiddleware)

	protected.GET("/me", handler.me)
	protected.GET("/contracts", handler.listContracts)
	protected.GET("/contracts/:id/history", handler.readingHistory)

	protected.GET("/readings", handler.listReadings)
	protected.POST("/readings", handler.submitReading)
	protected.POST("/readings/bulk", handler.submitBulkReadings)
	protected.GET("/readings/:id", handler.getReading)
	protected.PUT("/readings/:id", handler.updateReading)
	protected.DELETE("/readings/:id", handler.deleteReading)

	protected.GET("/invoices", handler.listInvoices)
	protected.GET("/invoices/:id", handler.getInvoice)
	protected.GET("/invoices/:id/pdf", handler.invoicePDF)
	protected.POST("/invoices/:id/reconcile", handler.reconcileInvoice)
	protected.DELETE("/invoices/:id", handler.deleteInvoice)
	protected.POST("/admin/invoices/mark-overdue", handler.markOverdueInvoices)

	protected.GET("/payments", handler.listPayments)
	protected.POST("/payments", handler.recordPayment)

	protected.GET("/dashboard/home", handler.dashboardHome)
	protected.GET("/dashboard/overview", handler.dashboardOverview)
	protected.GET("/dashboard/stats", handler.dashboardStats)
	protected.GET("/dashboard/stats/export", handler.exportDashboardStats)
	protected.GET("/dashboard/notifications", handler.dashboardNotifications)

	return router
}
