package server

import (
	"errors"
	"net/http"

	"github.com/franckalain/foodrescue/internal/ml"
	"github.com/franckalain/foodrescue/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	rateLimitMessage = "Rate limit exceeded. Please try again later."
	creditsMessage   = "AI credits exhausted. Please add credits."
)

func (s *Server) handlePredictDemand(c *gin.Context) {
	var req models.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	result, err := s.model.PredictDemand(c.Request.Context(), req)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, ml.ErrRateLimited):
		c.JSON(http.StatusTooManyRequests, errorBody(rateLimitMessage))
	case errors.Is(err, ml.ErrCreditsExhausted):
		c.JSON(http.StatusPaymentRequired, errorBody(creditsMessage))
	default:
		s.logger.Error("Prediction error",
			zap.Error(err),
			zap.Bool("no_tool_call", errors.Is(err, ml.ErrNoToolCall)),
			zap.Bool("malformed", errors.Is(err, ml.ErrMalformedPrediction)))
		c.JSON(http.StatusInternalServerError, errorBody(err.Error()))
	}
}
