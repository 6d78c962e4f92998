// Package tools provides a builder for core.Tool values and the budgeting tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/waqaskhan137/fintips/core"
)

// HandlerFunc receives the decoded tool params and returns a result.
type HandlerFunc func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error)

// SimpleHandlerFunc receives only the raw input. A returned error becomes a
// failed tool result.
type SimpleHandlerFunc func(ctx context.Context, input json.RawMessage) (interface{}, error)

// Builder assembles a tool.
type Builder struct {
	name        string
	description string
	schema      map[string]interface{}
	handler     HandlerFunc
}

// New starts building a tool with the given name.
func New(name string) *Builder {
	return &Builder{name: name, schema: ObjectSchema(map[string]interface{}{})}
}

// Description sets the tool description shown to the model.
func (b *Builder) Description(desc string) *Builder {
	b.description = desc
	return b
}

// Schema sets the input schema.
func (b *Builder) Schema(schema map[string]interface{}) *Builder {
	b.schema = schema
	return b
}

// Handler sets the full handler.
func (b *Builder) Handler(h HandlerFunc) *Builder {
	b.handler = h
	return b
}

// HandlerFunc sets a handler that only needs the raw input.
func (b *Builder) HandlerFunc(h SimpleHandlerFunc) *Builder {
	b.handler = func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		data, err := h(ctx, params.Input)
		if err != nil {
			return &core.ToolResult{Success: false, Error: err.Error()}, nil
		}
		return &core.ToolResult{Success: true, Data: data}, nil
	}
	return b
}

// Build returns the tool. It panics if no handler was set.
func (b *Builder) Build() core.Tool {
	if b.handler == nil {
		panic(fmt.Sprintf("tools: %s has no handler", b.name))
	}
	return &builtTool{
		name:        b.name,
		description: b.description,
		schema:      b.schema,
		handler:     b.handler,
	}
}

type builtTool struct {
	name        string
	description string
	schema      map[string]interface{}
	handler     HandlerFunc
}

func (t *builtTool) Name() string                   { return t.name }
func (t *builtTool) Description() string            { return t.description }
func (t *builtTool) Schema() map[string]interface{} { return t.schema }

func (t *builtTool) Execute(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
	return t.handler(ctx, params)
}
