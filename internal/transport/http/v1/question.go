package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xhzhu1024/docqa/domain"
)

// AskQuestion answers a question in a single response.
// POST /api/question
func (h *Handler) AskQuestion(c echo.Context) error {
	var req domain.QuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.ProcessQuestion(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}

// AskGuideQuestion answers a question in the tour-guide persona.
// POST /api/guide/question
func (h *Handler) AskGuideQuestion(c echo.Context) error {
	var req domain.QuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	result, err := h.service.ProcessGuideQuestion(c.Request().Context(), req)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}
