package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xhzhu1024/docqa/domain"
)

// Status reports capability readiness.
// GET /api/status
func (h *Handler) Status(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Status(c.Request().Context()))
}

type searchRequest struct {
	Query          string                 `json:"query"`
	SearchSettings *domain.SearchSettings `json:"search_settings,omitempty"`
}

// Search runs a standalone web search.
// POST /api/search
func (h *Handler) Search(c echo.Context) error {
	var req searchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "query is required"})
	}

	results, err := h.service.PerformWebSearch(c.Request().Context(), req.Query, req.SearchSettings)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"query":   req.Query,
		"results": results,
		"count":   len(results),
	})
}
