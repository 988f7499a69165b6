// Package server exposes the job service over HTTP: a blocking and a
// queued run endpoint per registered task, plus job polling.
package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/prepforge/prepforge/internal/jobs"
)

// Server routes HTTP requests onto a job manager.
type Server struct {
	manager *jobs.Manager
	log     *logrus.Logger
}

func New(manager *jobs.Manager, log *logrus.Logger) *Server {
	return &Server{manager: manager, log: log}
}

// Router builds the gin engine. Task names are path parameters so new
// task registrations need no route changes.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), corsAllowAll())

	router.GET("/", s.health)

	api := router.Group("/api")
	{
		api.POST("/sync/:task", s.runSync)
		api.POST("/async/:task", s.submit)
	}

	router.GET("/jobs/:id", s.getJob)

	return router
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"tasks":  s.manager.TaskNames(),
	})
}

// runSync executes the task in the request context and returns the
// result inline. Long pipelines can take minutes; callers who cannot
// hold the connection should use the async route instead.
func (s *Server) runSync(c *gin.Context) {
	task := c.Param("task")
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := s.manager.RunSync(c.Request.Context(), task, raw)
	if err != nil {
		s.renderError(c, task, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": string(jobs.StatusCompleted),
		"result": result,
	})
}

// submit queues the task and returns the job id for polling.
func (s *Server) submit(c *gin.Context) {
	task := c.Param("task")
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	id, err := s.manager.Submit(c.Request.Context(), task, raw)
	if err != nil {
		s.renderError(c, task, err)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status": string(jobs.StatusQueued),
		"job_id": id,
	})
}

// getJob reports job status. Unknown and expired ids both come back as
// status "unknown" with a null result, never 404: the caller cannot
// tell them apart and should stop polling either way.
func (s *Server) getJob(c *gin.Context) {
	job, err := s.manager.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.log.WithError(err).WithField("job_id", c.Param("id")).Error("job lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up job"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (s *Server) renderError(c *gin.Context, task string, err error) {
	switch {
	case errors.Is(err, jobs.ErrUnknownTask):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, jobs.ErrInvalidPayload):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, jobs.ErrQueueFull):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		s.log.WithError(err).WithField("task", task).Error("task execution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// corsAllowAll permits cross-origin requests from any origin. The
// service carries no credentials or cookies, so nothing is gained by
// restricting origins.
func corsAllowAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "*")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
