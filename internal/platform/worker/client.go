package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/artxeweb/comparaelprecio-api/internal/platform/cache"
	"github.com/artxeweb/comparaelprecio-api/pkg/model"
	"github.com/artxeweb/comparaelprecio-api/pkg/util"
)

// DefaultBaseURL is the production aggregation worker.
const DefaultBaseURL = "https://amazon-worker.artxeweb.workers.dev"

// Operation names double as URL paths and cache partitions.
const (
	opVerifier = "verificador"
	opDetail   = "amazon"
	opAnalyze  = "analyze"
)

// HTTPClient matches net/http.Client Do signature for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError is returned for non-2xx worker responses. Body carries the
// response text so callers can surface it to users.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("worker %s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client wraps the three worker operations with caching and retry support.
type Client struct {
	baseURL    string
	httpClient HTTPClient
	cache      *cache.Cache
	maxRetries int
}

// Config defines settings for the worker client.
type Config struct {
	BaseURL    string
	Cache      *cache.Cache
	MaxRetries int
}

// New creates a worker client. A nil httpClient gets a sensible default.
func New(httpClient HTTPClient, cfg Config) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &Client{
		baseURL:    base,
		httpClient: httpClient,
		cache:      cfg.Cache,
		maxRetries: maxRetries,
	}
}

// Verifier fetches the store-agnostic summary and price history for a
// product URL. Responses are cached per normalized URL.
func (c *Client) Verifier(ctx context.Context, productURL string) (model.VerifierRecord, error) {
	var rec model.VerifierRecord
	if err := c.getJSON(ctx, opVerifier, productURL, &rec); err != nil {
		return model.VerifierRecord{}, err
	}
	return rec, nil
}

// Detail fetches the Amazon-specific attribute record for a product URL.
// Responses are cached per normalized URL.
func (c *Client) Detail(ctx context.Context, productURL string) (model.DetailResponse, error) {
	var resp model.DetailResponse
	if err := c.getJSON(ctx, opDetail, productURL, &resp); err != nil {
		return model.DetailResponse{}, err
	}
	return resp, nil
}

// Analyze submits product and verifier data for AI analysis. Analysis is
// never cached and never retried; retry is always an explicit user action.
func (c *Client) Analyze(ctx context.Context, req model.AnalyzeRequest) (model.AnalysisResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return model.AnalysisResponse{}, fmt.Errorf("encode analyze request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+opAnalyze, bytes.NewReader(body))
	if err != nil {
		return model.AnalysisResponse{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.AnalysisResponse{}, fmt.Errorf("analyze request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.AnalysisResponse{}, fmt.Errorf("read analyze response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.AnalysisResponse{}, &StatusError{Op: opAnalyze, StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(raw))}
	}

	var out model.AnalysisResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return model.AnalysisResponse{}, fmt.Errorf("decode analyze response: %w", err)
	}
	return out, nil
}

// getJSON performs a cached GET against one of the worker's read operations.
func (c *Client) getJSON(ctx context.Context, op, productURL string, out any) error {
	key := util.NormalizeURL(productURL)

	if payload, ok := c.cache.Get(ctx, op, key); ok {
		if err := json.Unmarshal(payload, out); err == nil {
			return nil
		}
		// A corrupt cache entry falls through to a fresh fetch.
	}

	endpoint := fmt.Sprintf("%s/%s?url=%s", c.baseURL, op, url.QueryEscape(productURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%s request: %w", op, err)
			continue
		}

		raw, status, err := drainBody(resp)
		if err != nil {
			lastErr = fmt.Errorf("read %s response: %w", op, err)
			continue
		}
		if status < 200 || status > 299 {
			return &StatusError{Op: op, StatusCode: status, Body: string(bytes.TrimSpace(raw))}
		}

		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s response: %w", op, err)
		}
		c.cache.Set(ctx, op, key, raw)
		return nil
	}
	return lastErr
}

func drainBody(resp *http.Response) ([]byte, int, error) {
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return raw, resp.StatusCode, err
}
