package v1

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/xhzhu1024/docqa/config"
	"github.com/xhzhu1024/docqa/domain"
	"github.com/xhzhu1024/docqa/internal/llm"
	"github.com/xhzhu1024/docqa/internal/prompt"
	"github.com/xhzhu1024/docqa/internal/service"
	"github.com/xhzhu1024/docqa/internal/session"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	store, err := session.NewFileStore(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{
		DefaultModel:       "gpt-4o-mini",
		DefaultTemperature: 0.7,
		LLMTimeout:         5 * time.Second,
		SearchTimeout:      5 * time.Second,
		LocalK:             4,
		HybridLocalK:       3,
		HybridWebResults:   3,
		WebMaxResults:      5,
		ChunkSize:          1000,
		ChunkOverlap:       200,
	}
	svc := service.New(cfg, store, nil, nil, llm.NewMockClient(), nil, prompt.NewAssembler(0), nil)
	return NewHandler(svc, nil)
}

func doJSON(t *testing.T, h func(echo.Context) error, method, target, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	require.NoError(t, h(c))
	return rec
}

func TestAskQuestion(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.AskQuestion, http.MethodPost, "/api/question", `{"question":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.AnswerResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Answer)
	require.NotEmpty(t, result.HistoryID)
	require.Len(t, result.History, 2)
}

func TestAskQuestionEmpty(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.AskQuestion, http.MethodPost, "/api/question", `{"question":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAskQuestionStreamContract(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.AskQuestionStream, http.MethodPost, "/api/question/stream", `{"question":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/event-stream")

	var frames []streamFrame
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var f streamFrame
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &f))
		frames = append(frames, f)
	}
	require.NotEmpty(t, frames)

	final := frames[len(frames)-1]
	require.True(t, final.Done)
	require.NotEmpty(t, final.HistoryID)
	for _, f := range frames[:len(frames)-1] {
		require.False(t, f.Done)
	}

	var answer strings.Builder
	for _, f := range frames {
		answer.WriteString(f.Text)
	}
	require.NotEmpty(t, answer.String())
}

func TestAskQuestionStreamEmptyQuestion(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.AskQuestionStream, http.MethodPost, "/api/question/stream", `{"question":" "}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.CreateSession, http.MethodPost, "/api/session", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var created struct {
		SessionID string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionID)

	rec = doJSON(t, h.ListSessions, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Equal(t, 1, listed.Count)

	rec = doJSON(t, h.GetSession, http.MethodGet, "/api/session/"+created.SessionID, "", "session_id", created.SessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.ClearSession, http.MethodPost, "/api/session/"+created.SessionID+"/clear", "", "session_id", created.SessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.DeleteSession, http.MethodDelete, "/api/session/"+created.SessionID, "", "session_id", created.SessionID)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h.GetSession, http.MethodGet, "/api/session/"+created.SessionID, "", "session_id", created.SessionID)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteUnknownSession(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.DeleteSession, http.MethodDelete, "/api/session/nope", "", "session_id", "nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatus(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.Status, http.MethodGet, "/api/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	require.Equal(t, "ok", status["status"])
	require.Equal(t, false, status["web_search_enabled"])
	require.Equal(t, false, status["local_index_ready"])
	require.Equal(t, "gpt-4o-mini", status["default_model"])
	require.Equal(t, float64(1000), status["chunk_size"])
	require.Equal(t, float64(200), status["chunk_overlap"])
}

func TestSearchUnavailable(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.Search, http.MethodPost, "/api/search", `{"query":"news"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSearchEmptyQuery(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.Search, http.MethodPost, "/api/search", `{"query":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadWithoutProcessor(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.UploadURL, http.MethodPost, "/api/upload/url", `{"url":"https://example.com"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealth(t *testing.T) {
	h := newTestHandler(t)

	rec := doJSON(t, h.Health, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
