package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/api/handlers"
	"github.com/andresuchdata/restock-forecast/internal/api/middleware"
	"github.com/andresuchdata/restock-forecast/internal/auth"
	"github.com/andresuchdata/restock-forecast/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Services struct {
	ForecastService  *service.ForecastService
	RestockService   *service.RestockService
	SalesService     *service.SalesService
	InventoryService *service.InventoryService
	Tokens           *auth.TokenService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			// Any origin may call, but never with credentials.
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
			corsConfig.AllowCredentials = false
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if services == nil {
		return router
	}
	if services.Tokens == nil {
		log.Warn().Msg("No token service configured; API routes disabled")
		return router
	}

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.RequireAuth(services.Tokens))

	if services.ForecastService != nil {
		forecastHandler := handlers.NewForecastHandler(services.ForecastService)
		forecastGroup := apiGroup.Group("/forecast")
		{
			forecastGroup.POST("/run", forecastHandler.Run)
			forecastGroup.GET("/predictions", forecastHandler.GetPredictions)
			forecastGroup.GET("/runs", forecastHandler.GetRuns)
		}
	}

	if services.RestockService != nil {
		restockHandler := handlers.NewRestockHandler(services.RestockService)
		restockGroup := apiGroup.Group("/restock")
		{
			restockGroup.GET("", restockHandler.GetRecommendations)
			restockGroup.GET("/latest", restockHandler.GetLatest)
		}
	}

	if services.SalesService != nil {
		salesHandler := handlers.NewSalesHandler(services.SalesService)
		salesGroup := apiGroup.Group("/sales")
		{
			salesGroup.POST("", salesHandler.RecordSale)
			salesGroup.GET("/stats", salesHandler.GetStats)
			salesGroup.GET("/distribution", salesHandler.GetDistribution)
		}
	}

	if services.InventoryService != nil {
		inventoryHandler := handlers.NewInventoryHandler(services.InventoryService)
		apiGroup.GET("/items", inventoryHandler.GetItems)
		inventoryGroup := apiGroup.Group("/inventory")
		{
			inventoryGroup.GET("", inventoryHandler.GetInventory)
			inventoryGroup.POST("", inventoryHandler.AddStock)
			inventoryGroup.GET("/stats", inventoryHandler.GetStats)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
