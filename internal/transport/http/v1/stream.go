package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/service"
)

// streamFrame is one SSE data payload. Incremental frames carry only text;
// the final frame has done set and carries the source attribution.
type streamFrame struct {
	Text       string             `json:"text"`
	Done       bool               `json:"done"`
	Sources    []string           `json:"sources,omitempty"`
	WebSources []domain.WebSource `json:"web_sources,omitempty"`
	HistoryID  string             `json:"history_id,omitempty"`
	Error      string             `json:"error,omitempty"`
}

// AskQuestionStream answers a question over SSE.
// POST /api/question/stream
func (h *Handler) AskQuestionStream(c echo.Context) error {
	return h.streamAnswer(c, h.service.ProcessQuestionStream)
}

// AskGuideQuestionStream answers a tour-guide question over SSE.
// POST /api/guide/question/stream
func (h *Handler) AskGuideQuestionStream(c echo.Context) error {
	return h.streamAnswer(c, h.service.ProcessGuideQuestionStream)
}

func (h *Handler) streamAnswer(c echo.Context, process func(ctx context.Context, req domain.QuestionRequest, emit service.StreamEmitter) error) error {
	var req domain.QuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := req.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	flusher, ok := c.Response().Writer.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming not supported")
	}

	emit := func(chunk string, meta *domain.StreamMetadata) error {
		frame := streamFrame{Text: chunk}
		if meta != nil {
			frame.Done = meta.Done
			frame.Sources = meta.Sources
			frame.WebSources = meta.WebSources
			frame.HistoryID = meta.HistoryID
			frame.Error = meta.Error
		}
		data, err := json.Marshal(frame)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	return process(c.Request().Context(), req, emit)
}
