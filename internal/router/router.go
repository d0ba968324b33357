package router

import (
	"github.com/gin-gonic/gin"

	"shipmerge/internal/handler"
	"shipmerge/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	shipmentH *handler.ShipmentHandler,
	healthH *handler.HealthHandler,
	allowedOrigins []string,
	maxBodyBytes int64,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.BodyLimit(maxBodyBytes))

	shipments := v1.Group("/shipments")
	shipments.POST("/merge", shipmentH.Merge)
	shipments.POST("/report", shipmentH.Report)
	shipments.POST("/report/archive", shipmentH.Archive)

	return r
}
