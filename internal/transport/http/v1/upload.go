package v1

import (
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
)

// UploadFile indexes one uploaded document.
// POST /api/upload/file
func (h *Handler) UploadFile(c echo.Context) error {
	if h.processor == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "document indexing is not configured"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "file is required"})
	}

	chunks, err := h.indexUpload(c, fileHeader)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":   "indexed",
		"filename": fileHeader.Filename,
		"chunks":   chunks,
	})
}

// UploadBatch indexes multiple uploaded documents. Per-file failures are
// reported alongside the successes.
// POST /api/upload/batch
func (h *Handler) UploadBatch(c echo.Context) error {
	if h.processor == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "document indexing is not configured"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "multipart form is required"})
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "files are required"})
	}

	type fileResult struct {
		Filename string `json:"filename"`
		Chunks   int    `json:"chunks,omitempty"`
		Error    string `json:"error,omitempty"`
	}
	results := make([]fileResult, 0, len(files))
	indexed := 0
	for _, fh := range files {
		chunks, err := h.indexUpload(c, fh)
		if err != nil {
			results = append(results, fileResult{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		results = append(results, fileResult{Filename: fh.Filename, Chunks: chunks})
		indexed++
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"indexed": indexed,
		"failed":  len(files) - indexed,
		"results": results,
	})
}

type uploadURLRequest struct {
	URL string `json:"url"`
}

// UploadURL fetches a page and indexes its text content.
// POST /api/upload/url
func (h *Handler) UploadURL(c echo.Context) error {
	if h.processor == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "document indexing is not configured"})
	}

	var req uploadURLRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.URL == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "url is required"})
	}

	chunks, err := h.processor.ProcessURL(c.Request().Context(), req.URL)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "indexed",
		"url":    req.URL,
		"chunks": chunks,
	})
}

type uploadDirectoryRequest struct {
	Path string `json:"path"`
}

// UploadDirectory indexes every supported file under a server-side directory.
// POST /api/upload/directory
func (h *Handler) UploadDirectory(c echo.Context) error {
	if h.processor == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "document indexing is not configured"})
	}

	var req uploadDirectoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Path == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "path is required"})
	}

	files, err := h.processor.ProcessDirectory(c.Request().Context(), req.Path)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "indexed",
		"path":   req.Path,
		"files":  files,
	})
}

func (h *Handler) indexUpload(c echo.Context, fh *multipart.FileHeader) (int, error) {
	f, err := fh.Open()
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return h.processor.ProcessReader(c.Request().Context(), f, fh.Filename)
}
