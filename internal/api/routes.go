// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/freight-audit/backend/internal/config"
)

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, cfg *config.AppConfig, version string) {
	h := NewHandler(cfg, version)

	e.GET("/api/health", h.HandleHealth)
	e.POST("/api/transform", h.HandleTransform)

	auditGroup := e.Group("/api/audit")
	auditGroup.POST("", h.HandleAudit)
	auditGroup.POST("/precheck", h.HandlePrecheck)
}
