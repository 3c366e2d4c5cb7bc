package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stokku/inventory-service/internal/auth"
	"github.com/stokku/inventory-service/internal/model"
	"github.com/stokku/inventory-service/internal/server/httpx"
	"github.com/stokku/inventory-service/internal/transfer"
	"github.com/stokku/inventory-service/internal/transfer/dto"
)

type TransferHandler struct {
	uc     transfer.UseCase
	logger *zap.Logger
}

func NewTransferHandler(uc transfer.UseCase, logger *zap.Logger) *TransferHandler {
	return &TransferHandler{
		uc:     uc,
		logger: logger,
	}
}

// List handles GET /transfers?storeId=, the transfers where the store is
// source or destination, newest first.
func (h *TransferHandler) List(c *gin.Context) {
	records, err := h.uc.ListTransfers(c.Request.Context(), c.Query("storeId"))
	if err != nil {
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfers": records})
}

// Create handles POST /transfers.
func (h *TransferHandler) Create(c *gin.Context) {
	var req dto.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, fmt.Errorf("%w: %s", model.ErrValidation, err.Error()))
		return
	}

	actor, ok := auth.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	t, err := h.uc.RequestTransfer(c.Request.Context(), &dto.RequestTransferInput{
		SourceStoreID: req.SourceStoreID,
		DestStoreID:   req.DestStoreID,
		ProductID:     req.ProductID,
		Quantity:      req.Quantity,
		RequestedBy:   actor.UserID,
		Notes:         req.Notes,
	})
	if err != nil {
		h.logger.Warn("transfer request rejected", zap.Error(err))
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transfer": t})
}

// UpdateStatus handles PATCH /transfers.
func (h *TransferHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.Error(c, fmt.Errorf("%w: %s", model.ErrValidation, err.Error()))
		return
	}

	actor, ok := auth.ActorFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	t, err := h.uc.UpdateTransferStatus(c.Request.Context(), req.ID, model.TransferStatus(req.Status), actor)
	if err != nil {
		h.logger.Warn("transfer transition rejected",
			zap.String("transfer_id", req.ID),
			zap.String("status", req.Status),
			zap.Error(err))
		httpx.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transfer": t})
}
