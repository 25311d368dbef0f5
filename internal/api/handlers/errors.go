package handlers

import (
	"errors"
	"net/http"

	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/andresuchdata/restock-forecast/internal/pipeline"
	"github.com/andresuchdata/restock-forecast/internal/predictor"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrMissingRecipe):
		return http.StatusNotFound
	case errors.Is(err, predictor.ErrUnknownItem):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pipeline.ErrNoModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
