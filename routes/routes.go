package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/canteen-meals-api/config"
	"github.com/kendall-kelly/canteen-meals-api/controllers"
	"github.com/kendall-kelly/canteen-meals-api/middleware"
	"github.com/kendall-kelly/canteen-meals-api/models"
	"github.com/kendall-kelly/canteen-meals-api/realtime"
)

// SetupRouter builds the API router. authenticate validates the operator
// token; production passes middleware.EnsureValidToken, tests a stub.
func SetupRouter(cfg *config.Config, authenticate gin.HandlerFunc, hub *realtime.Hub) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)

		// Biometric device, authenticated by pre-shared key
		v1.POST("/device/events", middleware.RequireDeviceKey(cfg.DeviceAPIKey), controllers.IngestDeviceEvent)

		// Profile provisioning only needs a valid token
		v1.POST("/users", authenticate, controllers.CreateUser)

		operators := v1.Group("")
		operators.Use(authenticate, middleware.LoadOperator())
		{
			operators.GET("/users/me", controllers.GetMyProfile)
			operators.PUT("/users/me", controllers.UpdateMyProfile)

			operators.GET("/orders", controllers.ListOrders)
			operators.POST("/orders", controllers.CreateOrder)
			operators.GET("/orders/summary", controllers.GetOrderSummary)
			operators.GET("/orders/:id", controllers.GetOrder)
			operators.PUT("/orders/:id", controllers.UpdateOrder)
			operators.POST("/orders/:id/approve", controllers.ApproveOrder)
			operators.POST("/orders/:id/reject", controllers.RejectOrder)
			operators.POST("/orders/:id/reprint", controllers.ReprintOrder)
			operators.GET("/orders/:id/ticket", controllers.GetOrderTicket)

			operators.GET("/food-items", controllers.ListFoodItems)
			operators.GET("/customers", controllers.ListCustomers)
			operators.GET("/settings", controllers.GetSettings)

			if hub != nil {
				operators.GET("/ws", realtime.ServeWS(hub))
			}
		}

		admins := v1.Group("")
		admins.Use(authenticate, middleware.LoadOperator(), middleware.RequireRole(models.RoleAdmin))
		{
			admins.POST("/food-items", controllers.CreateFoodItem)
			admins.PUT("/food-items/:id", controllers.UpdateFoodItem)
			admins.DELETE("/food-items/:id", controllers.DeactivateFoodItem)

			admins.POST("/customers", controllers.CreateCustomer)
			admins.PUT("/customers/:id", controllers.UpdateCustomer)
			admins.DELETE("/customers/:id", controllers.DeactivateCustomer)

			admins.PUT("/settings", controllers.UpdateSettings)
			admins.GET("/audit-logs", controllers.ListAuditLogs)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			origins = nil
			break
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
