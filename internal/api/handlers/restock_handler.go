package handlers

import (
	"net/http"

	"github.com/andresuchdata/restock-forecast/internal/service"
	"github.com/gin-gonic/gin"
)

type RestockHandler struct {
	service *service.RestockService
}

func NewRestockHandler(service *service.RestockService) *RestockHandler {
	return &RestockHandler{service: service}
}

// GetRecommendations runs the forecast, then resolves restocking needs.
func (h *RestockHandler) GetRecommendations(c *gin.Context) {
	report, err := h.service.RunAndRecommend(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetLatest resolves against the stored snapshot.
func (h *RestockHandler) GetLatest(c *gin.Context) {
	report, err := h.service.Latest(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
