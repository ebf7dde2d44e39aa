package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franckalain/foodrescue/internal/database"
	"github.com/franckalain/foodrescue/internal/models"
	"github.com/franckalain/foodrescue/internal/realtime"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecentLimit caps how many submissions the recent list returns
const RecentLimit = 10

type submissionInput struct {
	FoodType  string                  `json:"food_type"`
	Quantity  float64                 `json:"quantity"`
	Unit      string                  `json:"unit"`
	Location  string                  `json:"location"`
	EventType *string                 `json:"event_type"`
	Notes     *string                 `json:"notes"`
	Status    models.SubmissionStatus `json:"status"`
}

func (s *Server) handleCreateSubmission(c *gin.Context) {
	var in submissionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	sub := &models.FoodSubmission{
		FoodType:  in.FoodType,
		Quantity:  in.Quantity,
		Unit:      in.Unit,
		Location:  in.Location,
		EventType: in.EventType,
		Notes:     in.Notes,
		Status:    in.Status,
	}
	if err := sub.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if sub.Status != "" && !sub.Status.Valid() {
		c.JSON(http.StatusBadRequest, errorBody("invalid status"))
		return
	}

	if err := s.db.SaveFoodSubmission(c.Request.Context(), sub); err != nil {
		s.logger.Error("Error saving food submission", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("failed to save submission"))
		return
	}

	s.logger.Info("Food submission recorded",
		zap.String("id", sub.ID),
		zap.String("food_type", sub.FoodType),
		zap.Float64("quantity", sub.Quantity),
		zap.String("unit", sub.Unit))

	s.hub.Broadcast(realtime.Event{Type: realtime.EventInsert, Table: realtime.TableFoodSubmissions, Data: sub})
	c.JSON(http.StatusCreated, sub)
}

func (s *Server) handleRecentSubmissions(c *gin.Context) {
	limit := RecentLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorBody("invalid limit"))
			return
		}
		if n > 0 && n < RecentLimit {
			limit = n
		}
	}

	subs, err := s.db.GetRecentFoodSubmissions(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Error fetching submissions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("failed to fetch submissions"))
		return
	}
	c.JSON(http.StatusOK, subs)
}

func (s *Server) handleUpdateSubmissionStatus(c *gin.Context) {
	var in struct {
		Status models.SubmissionStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if !in.Status.Valid() {
		c.JSON(http.StatusBadRequest, errorBody("invalid status"))
		return
	}

	ctx := c.Request.Context()
	id := c.Param("id")
	err := s.db.UpdateSubmissionStatus(ctx, id, in.Status)
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("submission not found"))
		return
	}
	if err != nil {
		s.logger.Error("Error updating submission status", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("failed to update submission"))
		return
	}

	sub, err := s.db.GetFoodSubmission(ctx, id)
	if err != nil || sub == nil {
		s.logger.Error("Error reloading submission", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("failed to update submission"))
		return
	}

	s.hub.Broadcast(realtime.Event{Type: realtime.EventUpdate, Table: realtime.TableFoodSubmissions, Data: sub})
	c.JSON(http.StatusOK, sub)
}
