package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/auth"
	"github.com/stokku/inventory-service/internal/inventory"
	"github.com/stokku/inventory-service/internal/inventory/dto"
	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/server/httpx"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger *zap.Logger
}

func NewInventoryHandler(uc inventory.UseCase, logger *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: logger,
	}
}

// Get handles GET /inventory?storeId=&productId=, the stock position of one
// product at one store. A pair with no row reads as zero stock.
func (h *InventoryHandler) Get(c *gin.Context) {
	storeID := c.Query("storeId")
	productID := c.Query("productId")
	if storeID == "" || productID == "" {
		httpx.Error(c, fmt.Errorf("%w: storeId and productId are required", model.ErrValidation))
		return
	}

	inv, err := h.uc.GetStoreInventory(c.Request.Context(), storeID, productID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": inv})
}

// Alerts handles GET /inventory/alerts?warehouseId=, the current unread
// alerts for a store.
func (h *InventoryHandler) Alerts(c *gin.Context) {
	storeID := c.Query("warehouseId")
	if storeID == "" {
		storeID = c.Query("storeId")
	}
	if storeID == "" {
		httpx.Error(c, fmt.Errorf("%w: warehouseId is required", model.ErrValidation))
		return
	}

	alerts, err := h.uc.ListUnreadAlerts(c.Request.Context(), storeID)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

// MarkAlertRead handles PATCH /inventory/alerts/:id/read.
func (h *InventoryHandler) MarkAlertRead(c *gin.Context) {
	if err := h.uc.MarkAlertRead(c.Request.Context(), c.Param("id")); err != nil {
		httpx.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LowStock handles GET /inventory/low-stock?storeId=.
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.uc.ListLowStock(c.Request.Context(), c.Query("storeId"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Movements handles GET /inventory/movements.
func (h *InventoryHandler) Movements(c *gin.Context) {
	filters := &dto.MovementFilters{
		StoreID:      c.Query("storeId"),
		ProductID:    c.Query("productId"),
		MovementType: c.Query("movementType"),
		Page:         intQuery(c, "page", 1),
		PageSize:     intQuery(c, "pageSize", 50),
	}
	if from := c.Query("from"); from != "" {
		if ts, err := time.Parse("2006-01-02", from); err == nil {
			filters.StartDate = &ts
		}
	}
	if to := c.Query("to"); to != "" {
		if ts, err := time.Parse("2006-01-02", to); err == nil {
			filters.EndDate = &ts
		}
	}

	movements, total, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements, "total": total})
}

// Adjust handles POST /inventory/adjust: sales, production arrivals, and
// manual corrections from collaborating systems.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, fmt.Errorf("%w: %s", model.ErrValidation, err.Error()))
		return
	}

	actor, ok := auth.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	inv, err := h.uc.AdjustStock(c.Request.Context(), &dto.AdjustStockInput{
		StoreID:        req.StoreID,
		ProductID:      req.ProductID,
		MovementType:   req.MovementType,
		QuantityChange: req.QuantityChange,
		Notes:          req.Notes,
		UserID:         actor.UserID,
	})
	if err != nil {
		h.logger.Warn("stock adjustment rejected", zap.Error(err))
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"inventory": inv})
}

func intQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}
