package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// handleWeekProgress returns the dashboard numbers for the week containing startDate.
func (s *Server) handleWeekProgress(c *gin.Context) {
	summary, err := s.progress.Week(c.Request.Context(), currentUser(c), c.Param("startDate"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, summary)
}
