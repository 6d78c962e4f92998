// Package executor provides ToolExecutor implementations.
package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/waqaskhan137/fintips/core"
)

// HTTPExecutor implements ToolExecutor by calling a budget analysis service over HTTP.
type HTTPExecutor struct {
	baseURL    string
	apiKey     string
	endpoints  map[string]string
	httpClient *http.Client
}

// HTTPExecutorConfig configures the HTTP executor.
type HTTPExecutorConfig struct {
	// BaseURL is the analysis service URL (e.g., "https://budget.example.com").
	BaseURL string

	// APIKey is sent in the X-API-Key header when set.
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Endpoints overrides the path used for a tool.
	Endpoints map[string]string
}

// DefaultEndpoints maps tool names to service paths.
var DefaultEndpoints = map[string]string{
	"checkBudget": "/api/v1/budget/check",
}

// NewHTTPExecutor creates a new HTTP-based tool executor.
func NewHTTPExecutor(cfg HTTPExecutorConfig) *HTTPExecutor {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	endpoints := make(map[string]string, len(DefaultEndpoints)+len(cfg.Endpoints))
	for tool, path := range DefaultEndpoints {
		endpoints[tool] = path
	}
	for tool, path := range cfg.Endpoints {
		endpoints[tool] = path
	}

	return &HTTPExecutor{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		endpoints: endpoints,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Execute posts the tool input to the tool's endpoint.
func (e *HTTPExecutor) Execute(ctx context.Context, req *core.ExecuteRequest) (*core.ExecuteResponse, error) {
	return e.doRequest(ctx, http.MethodPost, e.endpointForTool(req.Tool), req)
}

// endpointForTool maps tool names to HTTP endpoints.
func (e *HTTPExecutor) endpointForTool(tool string) string {
	if endpoint, ok := e.endpoints[tool]; ok {
		return endpoint
	}
	// Default: use tool name as endpoint
	return fmt.Sprintf("/api/v1/tools/%s", tool)
}

// envelope is the optional {success, data, error} wrapper of a response.
type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (e *HTTPExecutor) doRequest(ctx context.Context, method, endpoint string, body *core.ExecuteRequest) (*core.ExecuteResponse, error) {
	url := e.baseURL + endpoint

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("X-API-Key", e.apiKey)
	}
	if body.RequestID != "" {
		req.Header.Set("X-Request-ID", body.RequestID)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return &core.ExecuteResponse{
			Success: false,
			Error:   fmt.Sprintf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))),
		}, nil
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil || env.Success == nil {
		// Not wrapped: the body is the tool output itself.
		return &core.ExecuteResponse{Success: true, Data: respBody}, nil
	}
	return &core.ExecuteResponse{
		Success: *env.Success,
		Data:    env.Data,
		Error:   env.Error,
	}, nil
}
