// Package v1 provides the HTTP handlers for the question-answering API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xhzhu1024/docqa/internal/docs"
	"github.com/xhzhu1024/docqa/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service   *service.Service
	processor *docs.Processor
}

// NewHandler creates a new handler. The processor may be nil when no local
// index is configured; upload routes then report the capability as missing.
func NewHandler(svc *service.Service, processor *docs.Processor) *Handler {
	return &Handler{
		service:   svc,
		processor: processor,
	}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	// Question answering
	e.POST("/api/question", h.AskQuestion)
	e.POST("/api/question/stream", h.AskQuestionStream)
	e.POST("/api/guide/question", h.AskGuideQuestion)
	e.POST("/api/guide/question/stream", h.AskGuideQuestionStream)

	// Session management
	e.POST("/api/session", h.CreateSession)
	e.GET("/api/sessions", h.ListSessions)
	e.GET("/api/session/:session_id", h.GetSession)
	e.DELETE("/api/session/:session_id", h.DeleteSession)
	e.POST("/api/session/:session_id/clear", h.ClearSession)

	// Capabilities
	e.GET("/api/status", h.Status)
	e.POST("/api/search", h.Search)

	// Document ingestion
	e.POST("/api/upload/file", h.UploadFile)
	e.POST("/api/upload/batch", h.UploadBatch)
	e.POST("/api/upload/url", h.UploadURL)
	e.POST("/api/upload/directory", h.UploadDirectory)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": "0.1.0",
	})
}
