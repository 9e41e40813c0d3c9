// Package http provides the HTTP server for the question-answering service.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xhzhu1024/docqa/internal/docs"
	"github.com/xhzhu1024/docqa/internal/service"
	v1 "github.com/xhzhu1024/docqa/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server.
func NewServer(svc *service.Service, processor *docs.Processor) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Handlers
	handler := v1.NewHandler(svc, processor)
	handler.RegisterRoutes(e)

	return e
}
