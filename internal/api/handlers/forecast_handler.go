package handlers

import (
	"net/http"
	"strconv"

	"github.com/andresuchdata/restock-forecast/internal/service"
	"github.com/gin-gonic/gin"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// Run triggers a synchronous forecast run and returns the published snapshot.
func (h *ForecastHandler) Run(c *gin.Context) {
	result, err := h.service.Run(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *ForecastHandler) GetPredictions(c *gin.Context) {
	predictions, err := h.service.ListPredictions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"predictions": predictions})
}

func (h *ForecastHandler) GetRuns(c *gin.Context) {
	limit := 10
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && v > 0 {
		limit = v
	}

	runs, err := h.service.LatestRuns(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
