package http

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/medcompare/backend/internal/domain"
	"github.com/medcompare/backend/internal/usecase"
	"github.com/sirupsen/logrus"
)

const (
	// maxUploadBytes bounds prescription uploads
	maxUploadBytes = 10 << 20

	// requestSlackBytes covers multipart framing and JSON field overhead
	requestSlackBytes = 1 << 20

	// maxJSONImageBytes fits a base64 encoded upload of maxUploadBytes
	maxJSONImageBytes = (maxUploadBytes+2)/3*4 + requestSlackBytes
)

// Services are the use cases served over HTTP. Nil services answer 503.
type Services struct {
	Search    *usecase.SearchService
	Selection *usecase.SelectionService
	Compare   *usecase.CompareService
	Sources   *usecase.SourceService
	OCR       *usecase.OCRService
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	services Services
	logger   *logrus.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(services Services, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{services: services, logger: logger}
}

type searchBody struct {
	Query string `json:"query" binding:"required"`
}

type toggleBody struct {
	Key string `json:"key" binding:"required"`
}

type itemsResponse struct {
	Items      []domain.NormalizedItem `json:"items"`
	Count      int                     `json:"count"`
	CanCompare bool                    `json:"canCompare"`
}

func newItemsResponse(items []domain.NormalizedItem) itemsResponse {
	return itemsResponse{Items: items, Count: len(items), CanCompare: len(items) >= 2}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "medcompare-backend",
		"version": "1.0.0",
	})
}

// Search runs a new search and returns one table per source
func (h *Handler) Search(c *gin.Context) {
	if h.services.Search == nil {
		respondUnavailable(c, "Search service not configured")
		return
	}

	var body searchBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	outcome, err := h.services.Search.Search(c.Request.Context(), body.Query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// CurrentResults returns the latest search outcome with selection flags
func (h *Handler) CurrentResults(c *gin.Context) {
	if h.services.Search == nil {
		respondUnavailable(c, "Search service not configured")
		return
	}

	outcome := h.services.Search.Current()
	if outcome == nil {
		outcome = &domain.SearchOutcome{Tables: []domain.SourceTable{}}
	}
	c.JSON(http.StatusOK, outcome)
}

// ListSources returns every source with its enable flag
func (h *Handler) ListSources(c *gin.Context) {
	if h.services.Sources == nil {
		respondUnavailable(c, "Source preferences not configured")
		return
	}

	states, err := h.services.Sources.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": states})
}

// UpdateSources sets the flags present in the body, keyed by source name
func (h *Handler) UpdateSources(c *gin.Context) {
	if h.services.Sources == nil {
		respondUnavailable(c, "Source preferences not configured")
		return
	}

	var flags map[string]bool
	if err := c.ShouldBindJSON(&flags); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	states, err := h.services.Sources.Update(c.Request.Context(), flags)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": states})
}

// ToggleSource flips the enable flag of one source
func (h *Handler) ToggleSource(c *gin.Context) {
	if h.services.Sources == nil {
		respondUnavailable(c, "Source preferences not configured")
		return
	}

	states, err := h.services.Sources.Toggle(c.Request.Context(), c.Param("source"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sources": states})
}

// ListSelection returns the selected items
func (h *Handler) ListSelection(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}
	c.JSON(http.StatusOK, newItemsResponse(h.services.Selection.Selected()))
}

// ToggleSelection selects or unselects one item of the current results
func (h *Handler) ToggleSelection(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}

	var body toggleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	selected, err := h.services.Selection.Toggle(body.Key)
	if err != nil {
		respondError(c, err)
		return
	}

	items := h.services.Selection.Selected()
	c.JSON(http.StatusOK, gin.H{
		"key":        body.Key,
		"selected":   selected,
		"count":      len(items),
		"canCompare": len(items) >= 2,
	})
}

// RemoveSelection unselects the item given by the key query parameter
func (h *Handler) RemoveSelection(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}

	key, ok := requireKey(c)
	if !ok {
		return
	}
	h.services.Selection.Remove(key)
	c.JSON(http.StatusOK, newItemsResponse(h.services.Selection.Selected()))
}

// ClearSelection unselects everything
func (h *Handler) ClearSelection(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}
	h.services.Selection.Clear()
	c.JSON(http.StatusOK, newItemsResponse(h.services.Selection.Selected()))
}

// SaveSelection moves the selection into the saved items
func (h *Handler) SaveSelection(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}

	n := h.services.Selection.Save()
	saved := h.services.Selection.Saved()
	c.JSON(http.StatusOK, gin.H{
		"saved": n,
		"items": saved,
		"count": len(saved),
	})
}

// ListSaved returns the saved items
func (h *Handler) ListSaved(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}
	c.JSON(http.StatusOK, newItemsResponse(h.services.Selection.Saved()))
}

// RemoveSaved deletes the saved item given by the key query parameter
func (h *Handler) RemoveSaved(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}

	key, ok := requireKey(c)
	if !ok {
		return
	}
	h.services.Selection.RemoveSaved(key)
	c.JSON(http.StatusOK, newItemsResponse(h.services.Selection.Saved()))
}

// ClearSaved deletes every saved item
func (h *Handler) ClearSaved(c *gin.Context) {
	if !h.selectionReady(c) {
		return
	}
	h.services.Selection.ClearSaved()
	c.JSON(http.StatusOK, newItemsResponse(h.services.Selection.Saved()))
}

// Compare returns the comparison view of the selected or saved items
func (h *Handler) Compare(c *gin.Context) {
	if h.services.Compare == nil {
		respondUnavailable(c, "Compare service not configured")
		return
	}

	list, err := usecase.ParseList(c.Query("list"))
	if err != nil {
		respondError(c, err)
		return
	}

	view, err := h.services.Compare.Build(list)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// ExportComparison downloads the comparison view as a spreadsheet
func (h *Handler) ExportComparison(c *gin.Context) {
	if h.services.Compare == nil {
		respondUnavailable(c, "Compare service not configured")
		return
	}

	list, err := usecase.ParseList(c.Query("list"))
	if err != nil {
		respondError(c, err)
		return
	}

	contentType, ext := h.services.Compare.ExportFormat()
	if contentType == "" {
		respondUnavailable(c, "Export not configured")
		return
	}

	// render fully before any header goes out so failures still get an error status
	var buf bytes.Buffer
	if err := h.services.Compare.Export(list, &buf); err != nil {
		h.logger.WithError(err).WithField("list", list).Error("export failed")
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="medcompare-%s.%s"`, list, ext))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// ExtractMedicines reads a prescription image, as a multipart "file" or as
// JSON {imageBase64, mimeType}, and returns the medicine names found in it
func (h *Handler) ExtractMedicines(c *gin.Context) {
	if h.services.OCR == nil {
		respondUnavailable(c, "OCR service not configured")
		return
	}

	image, mimeType, err := readImage(c)
	if err != nil {
		respondError(c, err)
		return
	}

	names, err := h.services.OCR.ExtractMedicines(c.Request.Context(), image, mimeType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "medicines": names})
}

func (h *Handler) selectionReady(c *gin.Context) bool {
	if h.services.Selection == nil {
		respondUnavailable(c, "Selection service not configured")
		return false
	}
	return true
}

func requireKey(c *gin.Context) (string, bool) {
	key := strings.TrimSpace(c.Query("key"))
	if key == "" {
		respondError(c, fmt.Errorf("%w: key is required", domain.ErrInvalidRequest))
		return "", false
	}
	return key, true
}

func readImage(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes+requestSlackBytes)
		header, err := c.FormFile("file")
		if err != nil {
			return nil, "", fmt.Errorf("%w: file is required", domain.ErrInvalidRequest)
		}
		file, err := header.Open()
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
		}
		return data, header.Header.Get("Content-Type"), nil
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONImageBytes)
	var body domain.OCRRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		return nil, "", fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return decodeImage(body)
}

// decodeImage accepts plain base64 or a data URL
func decodeImage(body domain.OCRRequest) ([]byte, string, error) {
	encoded := strings.TrimSpace(body.ImageBase64)
	mimeType := body.MimeType

	if rest, ok := strings.CutPrefix(encoded, "data:"); ok {
		meta, payload, found := strings.Cut(rest, ",")
		if !found || !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("%w: malformed data URL", domain.ErrInvalidRequest)
		}
		if mimeType == "" {
			mimeType = strings.TrimSuffix(meta, ";base64")
		}
		encoded = payload
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("%w: image is not valid base64", domain.ErrInvalidRequest)
	}
	return data, mimeType, nil
}

// respondError maps an error to its status code and a single error message
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownSource):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrItemNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrStaleSearch):
		status, message = http.StatusConflict, err.Error()
	case errors.Is(err, domain.ErrRateLimited):
		status, message = http.StatusTooManyRequests, err.Error()
	case errors.Is(err, domain.ErrBackendUnavailable):
		status, message = http.StatusBadGateway, "Network error: "+backendMessage(err)
	case errors.Is(err, domain.ErrOCRFailure):
		status, message = http.StatusBadGateway, backendMessage(err)
	case errors.Is(err, domain.ErrPreferencesUnavailable):
		message = err.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}

// backendMessage prefers the message of the failed backend call
func backendMessage(err error) string {
	var backendErr *domain.BackendError
	if errors.As(err, &backendErr) {
		return backendErr.Error()
	}
	return err.Error()
}

func respondUnavailable(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": message})
}
