package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) handleListNGOs(c *gin.Context) {
	ngos, err := s.db.ListNGOs(c.Request.Context())
	if err != nil {
		s.logger.Error("Error fetching NGOs", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorBody("failed to fetch NGOs"))
		return
	}
	c.JSON(http.StatusOK, ngos)
}
