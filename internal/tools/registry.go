// Package tools holds the registry of remotely callable tools.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// ExecutorFunc runs a tool call and returns its text output.
type ExecutorFunc func(ctx context.Context, args json.RawMessage) (string, error)

// Tool describes one callable tool.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

type entry struct {
	tool Tool
	exec ExecutorFunc
}

// Registry stores tools keyed by name.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a tool and its executor.
func (r *Registry) Register(tool Tool, exec ExecutorFunc) error {
	if tool.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if exec == nil {
		return fmt.Errorf("executor is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[tool.Name]; exists {
		return fmt.Errorf("executor already registered for %s", tool.Name)
	}
	r.entries[tool.Name] = entry{tool: tool, exec: exec}
	return nil
}

// MustRegister adds a tool or panics. Intended for startup wiring.
func (r *Registry) MustRegister(tool Tool, exec ExecutorFunc) {
	if err := r.Register(tool, exec); err != nil {
		panic(err)
	}
}

// List returns all registered tools sorted by name.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.tool)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Has reports whether a tool is registered.
func (r *Registry) Has(toolName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[toolName]
	return ok
}

// Execute runs the executor for the tool name.
func (r *Registry) Execute(ctx context.Context, toolName string, args json.RawMessage) (string, error) {
	if toolName == "" {
		return "", fmt.Errorf("tool name is required")
	}
	r.mu.RLock()
	e, ok := r.entries[toolName]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no executor registered for %s", toolName)
	}
	return e.exec(ctx, args)
}
