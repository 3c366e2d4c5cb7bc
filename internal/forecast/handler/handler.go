package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/forecast"
	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/server/httpx"
)

type ForecastHandler struct {
	engine *forecast.Engine
	logger *zap.Logger
}

func NewForecastHandler(engine *forecast.Engine, logger *zap.Logger) *ForecastHandler {
	return &ForecastHandler{
		engine: engine,
		logger: logger,
	}
}

// Forecast handles GET /forecast?productId=&storeId=&periodDays=&confidence=.
func (h *ForecastHandler) Forecast(c *gin.Context) {
	productID := c.Query("productId")
	storeID := c.Query("storeId")
	if productID == "" || storeID == "" {
		httpx.Error(c, fmt.Errorf("%w: productId and storeId are required", model.ErrValidation))
		return
	}

	periodDays := intQuery(c, "periodDays", 30)
	confidence := floatQuery(c, "confidence", 0.95)

	result, err := h.engine.Forecast(c.Request.Context(), productID, storeID, periodDays, confidence)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"forecast": result})
}

// Optimize handles GET /forecast/optimize?productId=&storeId=&days=&serviceLevel=.
func (h *ForecastHandler) Optimize(c *gin.Context) {
	productID := c.Query("productId")
	storeID := c.Query("storeId")
	if productID == "" || storeID == "" {
		httpx.Error(c, fmt.Errorf("%w: productId and storeId are required", model.ErrValidation))
		return
	}

	days := intQuery(c, "days", 180)
	serviceLevel := floatQuery(c, "serviceLevel", 0.95)

	result, err := h.engine.OptimizeStockLevels(c.Request.Context(), productID, storeID, days, serviceLevel)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"optimization": result})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func floatQuery(c *gin.Context, key string, fallback float64) float64 {
	if v := c.Query(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return fallback
}
