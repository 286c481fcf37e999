package tools

import (
	"context"
	"fmt"
	"sync"
)

// InvokeFunc is the uniform invocation signature: every tool takes a single
// free-form argument string and returns text for the model to read.
type InvokeFunc func(ctx context.Context, args string) (string, error)

// Tool is a callable external capability registered under a stable name.
type Tool struct {
	Name        string
	Description string
	Invoke      InvokeFunc
}

// Registry maps tool names to tools. It is constructed at bootstrap and
// injected into the router; there is no package-level instance.
type Registry struct {
	tools map[string]*Tool
	order []string // registration order, used for router prompts
	mutex sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*Tool)}
}

// Register adds a new tool to the registry.
func (r *Registry) Register(tool *Tool) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if tool.Name == "" {
		return fmt.Errorf("tool name cannot be empty")
	}
	if tool.Invoke == nil {
		return fmt.Errorf("tool %s must have an Invoke function", tool.Name)
	}
	if _, exists := r.tools[tool.Name]; exists {
		return fmt.Errorf("tool %s is already registered", tool.Name)
	}

	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
	return nil
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (*Tool, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	tool, exists := r.tools[name]
	return tool, exists
}

// Invoke runs a tool by name with the given argument string.
func (r *Registry) Invoke(ctx context.Context, name, args string) (string, error) {
	tool, exists := r.Get(name)
	if !exists {
		return "", fmt.Errorf("tool %s not found", name)
	}
	return tool.Invoke(ctx, args)
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.tools)
}
