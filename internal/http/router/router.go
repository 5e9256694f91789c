package router

import (
	"github.com/gin-gonic/gin"

	"reportdesk.app/reportdesk/internal/http/handler"
)

type RouterConfig struct {
	// InteractionMiddleware verifies interaction webhook signatures.
	InteractionMiddleware gin.HandlerFunc
}

func SetupRoutes(router *gin.Engine, interactions *handler.InteractionHandler, admin *handler.AdminHandler, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	webhook := router.Group("/interactions")
	if cfg.InteractionMiddleware != nil {
		webhook.Use(cfg.InteractionMiddleware)
	}
	webhook.POST("", interactions.Handle)

	adminGroup := router.Group("/admin")
	adminGroup.Use(admin.RequireAdminAPIKey())
	{
		adminGroup.GET("/reports", admin.ListReports)
		adminGroup.GET("/reports/:id", admin.GetReport)
		adminGroup.GET("/config", admin.GetConfig)
		adminGroup.PUT("/config", admin.SetConfig)
	}
}
