package handlers

import (
	"net/http"

	"github.com/andresuchdata/restock-forecast/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InventoryHandler struct {
	service *service.InventoryService
}

func NewInventoryHandler(service *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

type addStockRequest struct {
	Item     string          `json:"item" binding:"required"`
	ItemType string          `json:"item_type"`
	Quantity decimal.Decimal `json:"quantity"`
}

func (h *InventoryHandler) AddStock(c *gin.Context) {
	var req addStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := h.service.AddStock(c.Request.Context(), req.Item, req.ItemType, req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inventory updated successfully"})
}

func (h *InventoryHandler) GetInventory(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}

func (h *InventoryHandler) GetItems(c *gin.Context) {
	items, err := h.service.Items(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *InventoryHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
