package pharmapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/medcompare/backend/internal/domain"
	"github.com/medcompare/backend/internal/infrastructure/metrics"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	searchPath = "/api/apollo-search"
	ocrPath    = "/api/ocr-prescription"

	defaultUserAgent = "MedCompare/1.0"
	defaultMimeType  = "application/octet-stream"

	// maxBodyBytes bounds how much of a backend response is read
	maxBodyBytes = 32 << 20
)

// ClientConfig configures the backend client
type ClientConfig struct {
	// BaseURLs are tried in order; the first is also used for OCR
	BaseURLs          []string
	Timeout           time.Duration
	UserAgent         string
	RequestsPerMinute int
	Logger            *logrus.Logger
}

// Client handles communication with the pharmacy search backend
type Client struct {
	httpClient  *http.Client
	baseURLs    []string
	userAgent   string
	rateLimiter *rate.Limiter
	logger      *logrus.Logger
	debug       bool
}

// NewClient creates a new backend client
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}

	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(cfg.RequestsPerMinute) / 60)
		burst = max(1, cfg.RequestsPerMinute/6)
	}

	baseURLs := make([]string, 0, len(cfg.BaseURLs))
	for _, u := range cfg.BaseURLs {
		if u = strings.TrimRight(strings.TrimSpace(u), "/"); u != "" {
			baseURLs = append(baseURLs, u)
		}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURLs:    baseURLs,
		userAgent:   cfg.UserAgent,
		rateLimiter: rate.NewLimiter(limit, burst),
		logger:      cfg.Logger,
	}
}

// SetDebug enables logging of raw backend responses
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// Search posts the query to each backend target in order and returns the
// first successful payload. When every target fails, the error wraps
// domain.ErrBackendUnavailable and the last target's *domain.BackendError.
func (c *Client) Search(ctx context.Context, request domain.SearchRequest) (*domain.SearchPayload, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to encode search request: %w", err)
	}

	log := c.logger.WithField("keyword", request.Keyword)
	if len(c.baseURLs) == 0 {
		return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, &domain.BackendError{})
	}

	var lastErr error
	for _, target := range c.baseURLs {
		root, err := c.post(ctx, target, searchPath, body)
		if err != nil {
			metrics.BackendAttempts.WithLabelValues("search", target, "error").Inc()
			log.WithFields(logrus.Fields{"target": target, "error": err}).Warn("backend search attempt failed")
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}

		metrics.BackendAttempts.WithLabelValues("search", target, "ok").Inc()
		log.WithField("target", target).Debug("backend search succeeded")
		return &domain.SearchPayload{
			Sources: parseSearchPayload(root),
			Target:  target,
		}, nil
	}

	return nil, fmt.Errorf("%w: %w", domain.ErrBackendUnavailable, lastErr)
}

// ExtractMedicines sends an image to the OCR endpoint of the primary target
// and returns the medicine names it recognised.
func (c *Client) ExtractMedicines(ctx context.Context, image []byte, mimeType string) ([]string, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidRequest)
	}
	if mimeType == "" {
		mimeType = defaultMimeType
	}
	if len(c.baseURLs) == 0 {
		return nil, fmt.Errorf("%w: no backend configured", domain.ErrOCRFailure)
	}
	target := c.baseURLs[0]

	body, err := json.Marshal(domain.OCRRequest{
		ImageBase64: "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(image),
		MimeType:    mimeType,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode OCR request: %w", err)
	}

	root, err := c.post(ctx, target, ocrPath, body)
	if err != nil {
		metrics.BackendAttempts.WithLabelValues("ocr", target, "error").Inc()
		var backendErr *domain.BackendError
		if errors.As(err, &backendErr) && backendErr.Message == "" {
			backendErr.Message = "OCR failed"
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrOCRFailure, err)
	}

	metrics.BackendAttempts.WithLabelValues("ocr", target, "ok").Inc()
	names := parseMedicines(root)
	c.logger.WithFields(logrus.Fields{"target": target, "medicines": len(names)}).Info("prescription processed")
	return names, nil
}

// post sends a JSON body to one target and returns the parsed response.
// Anything other than a 2xx answer with "success": true is a *domain.BackendError.
func (c *Client) post(ctx context.Context, target, path string, body []byte) (gjson.Result, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return gjson.Result{}, &domain.BackendError{Target: target, Message: fmt.Sprintf("rate limiter: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target+path, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, &domain.BackendError{Target: target, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, &domain.BackendError{Target: target, Message: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return gjson.Result{}, &domain.BackendError{Target: target, StatusCode: resp.StatusCode, Message: err.Error()}
	}
	if c.debug {
		c.logger.WithFields(logrus.Fields{"target": target, "path": path, "status": resp.StatusCode}).Debugf("backend response: %s", raw)
	}

	// an unparseable body counts as an empty object
	root := gjson.Result{}
	if gjson.ValidBytes(raw) {
		root = gjson.ParseBytes(raw)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 || root.Get("success").Type != gjson.True {
		return gjson.Result{}, &domain.BackendError{
			Target:     target,
			StatusCode: resp.StatusCode,
			Message:    root.Get("error").String(),
		}
	}
	return root, nil
}
