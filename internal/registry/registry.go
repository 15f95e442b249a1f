// Package registry holds the tool, prompt and resource descriptors exposed by
// the server. It is filled once at startup and sealed before serving.
package registry

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"toolbox-mcp/internal/envelope"
	"toolbox-mcp/internal/schema"
)

var (
	ErrDuplicate = errors.New("descriptor already registered")
	ErrNotFound  = errors.New("descriptor not registered")
	ErrInvalid   = errors.New("descriptor is missing a name or handler")
	ErrSealed    = errors.New("registry is sealed")
)

// Handler runs one validated tool call.
type Handler func(ctx context.Context, args schema.Args) (envelope.Result, error)

// ToolDescriptor is the static registration record of a tool.
type ToolDescriptor struct {
	Name        string
	Title       string
	Description string
	Input       schema.Schema
	// Output is the content kind the tool produces on success.
	Output  envelope.Kind
	Handler Handler
}

// PromptMessage is one rendered prompt message.
type PromptMessage struct {
	Role    string        `json:"role"`
	Content envelope.Item `json:"content"`
}

// PromptResult is what a prompt renders to.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// PromptDescriptor is the static registration record of a prompt template.
type PromptDescriptor struct {
	Name        string
	Title       string
	Description string
	Args        schema.Schema
	Render      func(args schema.Args) (PromptResult, error)
}

// ResourceDescriptor is the static registration record of a read-only resource.
type ResourceDescriptor struct {
	URI         string
	Name        string
	Title       string
	Description string
	MIMEType    string
	Read        func(ctx context.Context) (string, error)
}

// Registry maps names to descriptors. Entries keep registration order.
type Registry struct {
	sealed bool

	tools     []*ToolDescriptor
	toolIndex map[string]*ToolDescriptor

	prompts     []*PromptDescriptor
	promptIndex map[string]*PromptDescriptor

	resources     []*ResourceDescriptor
	resourceIndex map[string]*ResourceDescriptor
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		toolIndex:     make(map[string]*ToolDescriptor),
		promptIndex:   make(map[string]*PromptDescriptor),
		resourceIndex: make(map[string]*ResourceDescriptor),
	}
}

// RegisterTool adds a tool. Names are unique.
func (r *Registry) RegisterTool(d ToolDescriptor) error {
	name := strings.TrimSpace(d.Name)
	if name == "" || d.Handler == nil {
		return ErrInvalid
	}
	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.toolIndex[name]; exists {
		return fmt.Errorf("tool %q: %w", name, ErrDuplicate)
	}
	if d.Output == "" {
		d.Output = envelope.KindText
	}
	d.Name = name
	r.tools = append(r.tools, &d)
	r.toolIndex[name] = &d
	return nil
}

// RegisterPrompt adds a prompt template. Names are unique.
func (r *Registry) RegisterPrompt(d PromptDescriptor) error {
	name := strings.TrimSpace(d.Name)
	if name == "" || d.Render == nil {
		return ErrInvalid
	}
	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.promptIndex[name]; exists {
		return fmt.Errorf("prompt %q: %w", name, ErrDuplicate)
	}
	d.Name = name
	r.prompts = append(r.prompts, &d)
	r.promptIndex[name] = &d
	return nil
}

// RegisterResource adds a resource keyed by URI.
func (r *Registry) RegisterResource(d ResourceDescriptor) error {
	uri := strings.TrimSpace(d.URI)
	if uri == "" || d.Read == nil {
		return ErrInvalid
	}
	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.resourceIndex[uri]; exists {
		return fmt.Errorf("resource %q: %w", uri, ErrDuplicate)
	}
	d.URI = uri
	r.resources = append(r.resources, &d)
	r.resourceIndex[uri] = &d
	return nil
}

// Seal makes the registry read-only. Safe for concurrent readers afterwards.
func (r *Registry) Seal() { r.sealed = true }

// Tool looks up a tool by name.
func (r *Registry) Tool(name string) (*ToolDescriptor, error) {
	d, ok := r.toolIndex[name]
	if !ok {
		return nil, fmt.Errorf("tool %q: %w", name, ErrNotFound)
	}
	return d, nil
}

// Prompt looks up a prompt by name.
func (r *Registry) Prompt(name string) (*PromptDescriptor, error) {
	d, ok := r.promptIndex[name]
	if !ok {
		return nil, fmt.Errorf("prompt %q: %w", name, ErrNotFound)
	}
	return d, nil
}

// Resource looks up a resource by URI.
func (r *Registry) Resource(uri string) (*ResourceDescriptor, error) {
	d, ok := r.resourceIndex[uri]
	if !ok {
		return nil, fmt.Errorf("resource %q: %w", uri, ErrNotFound)
	}
	return d, nil
}

// Tools yields every tool in registration order. The sequence can be ranged
// over any number of times.
func (r *Registry) Tools() iter.Seq[*ToolDescriptor] { return seq(r.tools) }

// Prompts yields every prompt in registration order.
func (r *Registry) Prompts() iter.Seq[*PromptDescriptor] { return seq(r.prompts) }

// Resources yields every resource in registration order.
func (r *Registry) Resources() iter.Seq[*ResourceDescriptor] { return seq(r.resources) }

func seq[T any](items []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, it := range items {
			if !yield(it) {
				return
			}
		}
	}
}
