package handlers

import (
	"net/http"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/service"
	"github.com/gin-gonic/gin"
)

type SalesHandler struct {
	service *service.SalesService
}

func NewSalesHandler(service *service.SalesService) *SalesHandler {
	return &SalesHandler{service: service}
}

func (h *SalesHandler) RecordSale(c *gin.Context) {
	var req domain.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}

	orderID, err := h.service.RecordSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Sale recorded successfully",
		"order_id": orderID,
	})
}

func (h *SalesHandler) GetStats(c *gin.Context) {
	stats, err := h.service.SalesStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *SalesHandler) GetDistribution(c *gin.Context) {
	counts, err := h.service.Distribution(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales_types": counts})
}
