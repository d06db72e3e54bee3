package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habitd/internal/tracker"
)

type habitRequest struct {
	Name       string   `json:"name"`
	TargetDays []string `json:"targetDays"`
}

type toggleRequest struct {
	Date string `json:"date"`
}

// handleListHabits returns the caller's habits.
func (s *Server) handleListHabits(c *gin.Context) {
	habits, err := s.habits.List(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, habits)
}

// handleCreateHabit creates a habit for the caller.
func (s *Server) handleCreateHabit(c *gin.Context) {
	var req habitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	habit, err := s.habits.Create(c.Request.Context(), currentUser(c), tracker.NewHabit{
		Name:       req.Name,
		TargetDays: req.TargetDays,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, habit)
}

// handleToggleHabit flips the completion mark for the given date.
func (s *Server) handleToggleHabit(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	habit, err := s.habits.Toggle(c.Request.Context(), currentUser(c), c.Param("id"), req.Date)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, habit)
}

// handleDeleteHabit removes a habit permanently.
func (s *Server) handleDeleteHabit(c *gin.Context) {
	if err := s.habits.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Habit deleted"})
}
