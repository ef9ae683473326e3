// Package backend is the HTTP client for the OpenFlow workflow service. It
// binds the fixed REST contract (catalogs, config, workflow CRUD, run) and
// nothing else; all state lives in the canvas and session packages.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	// BaseURL is the backend root, e.g. "http://127.0.0.1:8000".
	BaseURL string
	// Timeout is the per-request timeout.
	Timeout time.Duration
	// Headers are additional headers added to every request.
	Headers map[string]string
}

// DefaultClientConfig returns a ClientConfig with sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: "http://127.0.0.1:8000",
		Timeout: 30 * time.Second,
		Headers: make(map[string]string),
	}
}

// Client talks to one backend deployment.
type Client struct {
	cfg        *ClientConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client. A nil config uses defaults; a nil
// logger is replaced with a no-op logger.
func NewClient(cfg *ClientConfig, logger *zap.Logger) *Client {
	if cfg == nil {
		cfg = DefaultClientConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With(zap.String("component", "backend")),
	}
}

// BaseURL reports the configured backend root.
func (c *Client) BaseURL() string { return c.cfg.BaseURL }

// do issues one JSON request. A non-nil in is encoded as the body; a non-nil
// out receives the decoded 2xx body. Non-2xx responses become *APIError with
// the raw body preserved; decode failures wrap ErrBadResponse.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	url := strings.TrimRight(c.cfg.BaseURL, "/") + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.cfg.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		c.logger.Debug("backend error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrBadResponse, method, path, err)
	}
	return nil
}

// Health checks the backend liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// NodeCatalog fetches the installable node types.
func (c *Client) NodeCatalog(ctx context.Context) ([]NodeCatalogItem, error) {
	var items []NodeCatalogItem
	if err := c.do(ctx, http.MethodGet, "/node-catalog", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ToolCatalog fetches the tools an agent step may be granted.
func (c *Client) ToolCatalog(ctx context.Context) ([]ToolCatalogItem, error) {
	var items []ToolCatalogItem
	if err := c.do(ctx, http.MethodGet, "/tool-catalog", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Config fetches the backend's default agent configuration.
func (c *Client) Config(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := c.do(ctx, http.MethodGet, "/config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// CreateWorkflow persists a new workflow. When the id is already taken the
// backend answers 409 and the error wraps ErrWorkflowExists so callers can
// fall back to UpdateWorkflow.
func (c *Client) CreateWorkflow(ctx context.Context, wf *Workflow) (*Workflow, error) {
	var created Workflow
	err := c.do(ctx, http.MethodPost, "/workflows", wf, &created)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
			return nil, fmt.Errorf("%w: %s", ErrWorkflowExists, apiErr.Body)
		}
		return nil, err
	}
	return &created, nil
}

// UpdateWorkflow replaces an existing workflow.
func (c *Client) UpdateWorkflow(ctx context.Context, wf *Workflow) (*Workflow, error) {
	var updated Workflow
	if err := c.do(ctx, http.MethodPut, "/workflows/"+wf.ID, wf, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetWorkflow fetches one persisted workflow by id.
func (c *Client) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	var wf Workflow
	if err := c.do(ctx, http.MethodGet, "/workflows/"+id, nil, &wf); err != nil {
		return nil, err
	}
	return &wf, nil
}

// ListWorkflows fetches every persisted workflow.
func (c *Client) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var wfs []Workflow
	if err := c.do(ctx, http.MethodGet, "/workflows", nil, &wfs); err != nil {
		return nil, err
	}
	return wfs, nil
}

// RunWorkflow executes a persisted workflow with the given input payload and
// returns the finished execution record.
func (c *Client) RunWorkflow(ctx context.Context, id string, input map[string]any) (*ExecutionRecord, error) {
	var rec ExecutionRecord
	req := &RunRequest{InputData: input}
	if err := c.do(ctx, http.MethodPost, "/workflows/"+id+"/run", req, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetExecution fetches one execution record by id.
func (c *Client) GetExecution(ctx context.Context, id string) (*ExecutionRecord, error) {
	var rec ExecutionRecord
	if err := c.do(ctx, http.MethodGet, "/executions/"+id, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
