package routes

import (
	"time"

	"facilities/handlers"
	"facilities/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAgentRoutes registers the endpoints the voice agent calls. When
// requireAuth is set every call must carry a service token.
func RegisterAgentRoutes(r *gin.Engine, hb *handlers.HandlerBundle, requireAuth bool) {
	api := r.Group("/api/agent")
	if requireAuth {
		api.Use(middleware.JWTAuthServiceMiddleware())
	}
	{
		api.POST("/datetime/parse", hb.ParseDateTimeHandler)
		api.POST("/datetime/suggest", hb.SuggestTimesHandler)

		api.GET("/services", hb.ListServicesHandler)
		api.GET("/customer-lookup", hb.LookupCustomerHandler)
		api.POST("/availability", hb.CheckAvailabilityHandler)
		api.POST("/alternatives/accept", hb.AcceptAlternativeHandler)

		api.POST("/confirmation/detect", hb.DetectConfirmationHandler)
		api.POST("/bookings/execute", hb.ExecuteBookingHandler)

		api.POST("/contexts", hb.CreateContextHandler)
		api.GET("/contexts/:sessionID", hb.GetContextHandler)
		api.DELETE("/contexts/:sessionID", hb.ClearContextHandler)

		api.GET("/work-orders/:id", hb.GetWorkOrderHandler)
		api.PATCH("/work-orders/:id/status", hb.UpdateWorkOrderStatusHandler)
		api.GET("/customers/:customerID/work-orders", hb.CustomerWorkOrdersHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, requireAuth bool) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterAgentRoutes(r, hb, requireAuth)
	RegisterHealthRoute(r)
}
