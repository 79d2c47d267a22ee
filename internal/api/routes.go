package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Koodattu/fyralath-data-tracker/internal/api/handlers"
	"github.com/Koodattu/fyralath-data-tracker/internal/services"
)

func SetupRouter(history *services.HistoryService, worker *services.AuctionWorker, db handlers.Pinger, corsOrigins []string) *gin.Engine {
	router := gin.Default()
	router.Use(metricsMiddleware())

	// CORS configuration - allow configured origins or use defaults
	config := cors.DefaultConfig()
	if len(corsOrigins) > 0 {
		config.AllowOrigins = corsOrigins
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	config.AllowCredentials = false
	router.Use(cors.New(config))

	// Initialize handlers
	priceHandler := handlers.NewPriceHandler(history)
	statusHandler := handlers.NewStatusHandler(worker, db)

	// API routes
	api := router.Group("/api")
	{
		data := api.Group("/data")
		{
			data.GET("/current", priceHandler.GetCurrent)
			data.GET("/history/:period", priceHandler.GetHistory)
		}

		regions := api.Group("/regions/:region")
		{
			regions.GET("/snapshots", priceHandler.GetRegionSnapshots)
			regions.GET("/averages", priceHandler.GetRegionAverages)
		}

		api.GET("/status", statusHandler.GetStatus)
	}

	router.GET("/health", statusHandler.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
