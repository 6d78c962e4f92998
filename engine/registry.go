// Package engine runs a model against a set of tools until it produces an answer.
package engine

import (
	"sort"
	"sync"

	"github.com/waqaskhan137/fintips/core"
)

// ToolRegistry manages the tools available to a run.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]core.Tool
}

// NewToolRegistry creates a new tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]core.Tool),
	}
}

// Register adds a tool, replacing any tool with the same name.
func (r *ToolRegistry) Register(tool core.Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// RegisterAll adds multiple tools to the registry.
func (r *ToolRegistry) RegisterAll(tools ...core.Tool) {
	for _, tool := range tools {
		r.Register(tool)
	}
}

// Get retrieves a tool by name.
func (r *ToolRegistry) Get(name string) (core.Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// List returns all registered tool names, sorted.
func (r *ToolRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the definitions of all tools, sorted by name.
func (r *ToolRegistry) Definitions() []core.ToolDefinition {
	return r.DefinitionsFiltered(func(core.Tool) bool { return true })
}

// DefinitionsFiltered returns the definitions of tools matching the filter,
// sorted by name.
func (r *ToolRegistry) DefinitionsFiltered(filter func(core.Tool) bool) []core.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var defs []core.ToolDefinition
	for _, tool := range r.tools {
		if filter(tool) {
			defs = append(defs, core.Definition(tool))
		}
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].ToolName < defs[j].ToolName })
	return defs
}

// FilterByNames returns a filter that matches tools by name.
func FilterByNames(names ...string) func(core.Tool) bool {
	nameSet := make(map[string]bool)
	for _, name := range names {
		nameSet[name] = true
	}
	return func(t core.Tool) bool {
		return nameSet[t.Name()]
	}
}
