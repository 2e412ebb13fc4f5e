package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rui-valente/shopfloor-api/config"
	"github.com/rui-valente/shopfloor-api/controllers"
	"github.com/rui-valente/shopfloor-api/middleware"
	"github.com/rui-valente/shopfloor-api/models"
	"github.com/rui-valente/shopfloor-api/services"
)

func main() {
	log.Println("Starting Shopfloor API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Station{},
		&models.Operator{},
		&models.Accessory{},
		&models.ProductionOrder{},
		&models.Task{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize S3 storage for order reference drawings
	if cfg.AWSS3Bucket != "" {
		if _, err := services.InitS3Service(); err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
	} else {
		log.Println("AWS_S3_BUCKET not set, order image uploads are disabled")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter configures middleware and the full route table
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	// Prometheus metrics for the workflow engine
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)
	}

	protected := v1.Group("")
	protected.Use(middleware.EnsureValidToken(cfg))
	{
		// Operator directory
		protected.POST("/operators", controllers.CreateOperator)
		protected.GET("/operators", controllers.ListOperators)
		protected.GET("/operators/me", controllers.GetMyProfile)
		protected.PUT("/operators/:id/stations", controllers.UpdateOperatorStations)
		protected.DELETE("/operators/:id", controllers.DeleteOperator)

		// Station catalog
		protected.POST("/stations", controllers.CreateStation)
		protected.GET("/stations", controllers.ListStations)
		protected.DELETE("/stations/:id", controllers.DeleteStation)

		// Accessory catalog
		protected.POST("/accessories", controllers.CreateAccessory)
		protected.GET("/accessories", controllers.ListAccessories)

		// Production orders and the workflow
		protected.POST("/orders", controllers.CreateOrder)
		protected.GET("/orders", controllers.ListOrders)
		protected.GET("/orders/queue", controllers.GetOrderQueue)
		protected.GET("/orders/:id", controllers.GetOrder)
		protected.PATCH("/orders/:id/schedule", controllers.ScheduleOrder)
		protected.DELETE("/orders/:id", controllers.DeleteOrder)
		protected.POST("/orders/:id/claim", controllers.ClaimOrder)
		protected.POST("/orders/:id/image", controllers.UploadOrderImage)

		// Tasks
		protected.POST("/tasks/:id/complete", controllers.CompleteTask)
		protected.GET("/tasks/open", controllers.GetOpenTask)

		// Statistics
		protected.GET("/stats/stations", controllers.GetStationStats)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Shopfloor API is running",
	})
}

// databaseStatus checks database connectivity
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
	})
}
