package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xhzhu1024/docqa/internal/session"
)

// CreateSession creates a new empty session.
// POST /api/session
func (h *Handler) CreateSession(c echo.Context) error {
	id, err := h.service.CreateSession(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"session_id": id})
}

// ListSessions lists all sessions.
// GET /api/sessions
func (h *Handler) ListSessions(c echo.Context) error {
	summaries, err := h.service.ListSessions(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": summaries,
		"count":    len(summaries),
	})
}

// GetSession returns the history of one session.
// GET /api/session/:session_id
func (h *Handler) GetSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	history, err := h.service.GetSessionMessages(c.Request().Context(), sessionID)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id": sessionID,
		"history":    history,
	})
}

// DeleteSession removes a session.
// DELETE /api/session/:session_id
func (h *Handler) DeleteSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if err := h.service.DeleteSession(c.Request().Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted", "session_id": sessionID})
}

// ClearSession empties a session while keeping its id.
// POST /api/session/:session_id/clear
func (h *Handler) ClearSession(c echo.Context) error {
	sessionID := c.Param("session_id")
	if err := h.service.ClearSession(c.Request().Context(), sessionID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "cleared", "session_id": sessionID})
}
