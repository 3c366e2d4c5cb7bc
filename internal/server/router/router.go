package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/config"
	"github.com/stokku/inventory-service/internal/auth"
	forecastH "github.com/stokku/inventory-service/internal/forecast/handler"
	inventoryH "github.com/stokku/inventory-service/internal/inventory/handler"
	transferH "github.com/stokku/inventory-service/internal/transfer/handler"
)

// New wires the gin engine with routes and middlewares. Everything under
// /api/v1 requires a valid bearer token.
func New(
	cfg *config.Config,
	transfers *transferH.TransferHandler,
	inventories *inventoryH.InventoryHandler,
	forecasts *forecastH.ForecastHandler,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Server.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.Use(auth.Middleware(cfg.JWT.SecretKey))
	{
		api.GET("/transfers", transfers.List)
		api.POST("/transfers", transfers.Create)
		api.PATCH("/transfers", transfers.UpdateStatus)

		api.GET("/inventory", inventories.Get)
		api.GET("/inventory/alerts", inventories.Alerts)
		api.PATCH("/inventory/alerts/:id/read", inventories.MarkAlertRead)
		api.GET("/inventory/low-stock", inventories.LowStock)
		api.GET("/inventory/movements", inventories.Movements)
		api.POST("/inventory/adjust", inventories.Adjust)

		api.GET("/forecast", forecasts.Forecast)
		api.GET("/forecast/optimize", forecasts.Optimize)
	}

	if logger != nil {
		logger.Info("router initialized")
	}
	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
