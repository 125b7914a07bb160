package main

import (
	"context"
	"log"
	"os"
	"time"

	"voucher-redemption-api/config"
	"voucher-redemption-api/controllers"
	"voucher-redemption-api/middleware"
	"voucher-redemption-api/routes"
	"voucher-redemption-api/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	logFile, _ := config.InitLogging()
	if logFile != nil {
		defer logFile.Close()
	}

	ctx := context.Background()

	// Initialize database
	config.InitDB()

	// Initialize redis (optional; drafts fall back to memory without it)
	config.InitRedis(ctx)

	settings, err := config.LoadSettings(ctx)
	if err != nil {
		log.Fatal("Failed to load settings:", err)
	}

	var draftStore services.DraftStore
	if config.Redis != nil {
		ttl := time.Duration(settings.DraftTTLMinutes) * time.Minute
		draftStore = services.NewRedisDraftStore(config.Redis, ttl)
		log.Println("Using redis draft store")
	} else {
		draftStore = services.NewMemoryDraftStore()
		log.Println("Redis not configured, using in-memory draft store")
	}

	controllers.Init(settings, draftStore)

	// Set Gin mode
	ginMode := os.Getenv("GIN_MODE")
	if ginMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create Gin router
	router := gin.New()

	// Add logging middleware
	router.Use(gin.LoggerWithWriter(config.LogWriter))

	// Add recovery middleware
	router.Use(gin.Recovery())

	// Add security headers middleware
	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Next()
	})

	// Add CORS middleware
	router.Use(middleware.CORSMiddleware())

	// Register /logs route early (before 404 catch-all in SetupRoutes)
	router.GET("/logs", func(c *gin.Context) {
		accessToken := os.Getenv("LOG_ACCESS_TOKEN")
		if accessToken == "" || c.Query("token") != accessToken {
			c.JSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		logData, err := os.ReadFile(config.LogFilePath())
		if err != nil {
			c.JSON(500, gin.H{"error": "Unable to read log"})
			return
		}

		c.Data(200, "text/plain; charset=utf-8", logData)
	})

	// Setup routes
	routes.SetupRoutes(router)

	// Start server
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
