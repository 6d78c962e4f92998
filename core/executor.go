package core

import (
	"context"
	"encoding/json"
)

// ToolExecutor runs tools on a remote service.
type ToolExecutor interface {
	Execute(ctx context.Context, req *ExecuteRequest) (*ExecuteResponse, error)
}

// ExecuteRequest is sent to a ToolExecutor.
type ExecuteRequest struct {
	UserID    string          `json:"user_id,omitempty"`
	Tool      string          `json:"tool"`
	Input     json.RawMessage `json:"input"`
	RequestID string          `json:"request_id,omitempty"`
}

// ExecuteResponse is returned by a ToolExecutor.
type ExecuteResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}
