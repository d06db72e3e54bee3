package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"habitd/internal/tracker"
)

type taskRequest struct {
	Date     string `json:"date"`
	TaskName string `json:"taskName"`
	Category string `json:"category"`
}

type completionRequest struct {
	Completed *bool `json:"completed"`
}

// handleListWeekTasks returns the caller's tasks for the seven days from startDate.
func (s *Server) handleListWeekTasks(c *gin.Context) {
	tasks, err := s.tasks.ListByWeek(c.Request.Context(), currentUser(c), c.Param("startDate"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, tasks)
}

// handleCreateTask inserts a new task for a day.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.tasks.Create(c.Request.Context(), currentUser(c), tracker.NewTask{
		Date:     req.Date,
		TaskName: req.TaskName,
		Category: req.Category,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, task)
}

// handleUpdateTask sets the completion flag of a task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.tasks.UpdateCompletion(c.Request.Context(), currentUser(c), c.Param("id"), req.Completed)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, task)
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.tasks.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"message": "Task deleted"})
}
