package topic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// CollectionPath is the path of the topic collection below the base URL.
const CollectionPath = "/api/topic"

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 8 << 20

// Collection is the remote topic collection. Implementations perform exactly
// one remote call per method and never retry.
type Collection interface {
	// List returns the full collection.
	List(ctx context.Context) ([]Topic, error)

	// Upsert creates drafts without an id and updates drafts with one, as a
	// single batch.
	Upsert(ctx context.Context, drafts []Draft) error

	// Delete removes the records with the given ids, as a single batch.
	Delete(ctx context.Context, ids []int64) error
}

// HTTPConfig configures an HTTPCollection.
type HTTPConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client       // optional; overrides Timeout
	RequestIDs RequestIDGenerator // optional; defaults to UUIDv7Generator
	Logger     *slog.Logger       // optional; nil discards
}

// HTTPCollection talks to a remote collection over JSON/HTTP:
//
//	GET    /api/topic  -> JSON array of topics
//	POST   /api/topic  <- JSON array of drafts
//	DELETE /api/topic  <- JSON array of ids
//
// A non-2xx response becomes a *StatusError carrying the body's "message".
type HTTPCollection struct {
	baseURL    string
	httpClient *http.Client
	requestIDs RequestIDGenerator
	logger     *slog.Logger
}

// NewHTTPCollection creates an HTTP-backed collection.
func NewHTTPCollection(cfg HTTPConfig) *HTTPCollection {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	requestIDs := cfg.RequestIDs
	if requestIDs == nil {
		requestIDs = UUIDv7Generator{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &HTTPCollection{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		requestIDs: requestIDs,
		logger:     logger,
	}
}

// List fetches and validates the full collection.
func (c *HTTPCollection) List(ctx context.Context) ([]Topic, error) {
	body, err := c.do(ctx, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	topics, err := DecodeTopics(body)
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// Upsert posts drafts as one JSON array.
func (c *HTTPCollection) Upsert(ctx context.Context, drafts []Draft) error {
	if drafts == nil {
		drafts = []Draft{}
	}
	_, err := c.do(ctx, http.MethodPost, drafts)
	return err
}

// Delete sends ids as one JSON array in a DELETE body.
func (c *HTTPCollection) Delete(ctx context.Context, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	_, err := c.do(ctx, http.MethodDelete, ids)
	return err
}

// do performs one request and returns the response body of a 2xx response.
func (c *HTTPCollection) do(ctx context.Context, method string, payload interface{}) ([]byte, error) {
	requestID := c.requestIDs.Generate()
	url := c.baseURL + CollectionPath

	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("topic request failed", "request_id", requestID, "method", method, "error", err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := readLimited(resp.Body, maxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.logger.Debug("topic request",
		"request_id", requestID,
		"method", method,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

// readLimited reads r fully, failing if it holds more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("response body exceeds %d bytes", limit)
	}
	return data, nil
}
