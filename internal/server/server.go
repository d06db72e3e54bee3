package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"habitd/internal/auth"
	"habitd/internal/storage"
	"habitd/internal/tracker"
)

// Server provides HTTP handlers for the habit tracker backend.
type Server struct {
	engine    *gin.Engine
	store     storage.Store
	auth      *auth.Service
	habits    *tracker.HabitService
	tasks     *tracker.TaskService
	progress  *tracker.ProgressService
	metrics   *metrics
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(store storage.Store, authSvc *auth.Service, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz", "/metrics"))

	srv := &Server{
		engine:    router,
		store:     store,
		auth:      authSvc,
		habits:    tracker.NewHabitService(store, logger),
		tasks:     tracker.NewTaskService(store, logger),
		progress:  tracker.NewProgressService(store),
		metrics:   newMetrics(logger),
		logger:    logger,
		staticDir: staticDir,
	}

	router.Use(srv.metrics.middleware())
	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/metrics", s.metrics.handler())

	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", s.handleRegister)
			authRoutes.POST("/login", s.handleLogin)
			authRoutes.GET("/me", s.requireAuth, s.handleMe)
		}

		habits := api.Group("/habits", s.requireAuth)
		{
			habits.GET("", s.handleListHabits)
			habits.POST("", s.handleCreateHabit)
			habits.PUT("/:id/toggle", s.handleToggleHabit)
			habits.DELETE("/:id", s.handleDeleteHabit)
		}

		tasks := api.Group("/tasks", s.requireAuth)
		{
			tasks.GET("/week/:startDate", s.handleListWeekTasks)
			tasks.POST("", s.handleCreateTask)
			tasks.PUT("/:id", s.handleUpdateTask)
			tasks.DELETE("/:id", s.handleDeleteTask)
		}

		api.GET("/progress/week/:startDate", s.requireAuth, s.handleWeekProgress)
	}

	s.mountStatic()
}

// handleHealth reports whether the store answers.
func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps service and storage errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, tracker.ErrValidation), errors.Is(err, auth.ErrValidation), errors.Is(err, auth.ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// fail responds with the status that matches err.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondError logs the error and returns a JSON payload. Internal failures
// are reported without detail.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	message := err.Error()
	switch {
	case status >= http.StatusInternalServerError:
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", message))
		message = http.StatusText(status)
	case errors.Is(err, storage.ErrNotFound):
		message = "not found"
	default:
		s.logger.Debug("request rejected", slog.String("path", c.FullPath()), slog.String("error", message))
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// respondSuccess writes payload as JSON, or only the status when it is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
