package harness

import (
	"fmt"
	"strings"

	"github.com/bridle-dev/bridle/internal/messages"
)

// aliased is implemented by harnesses with short command-line names.
type aliased interface {
	Aliases() []string
}

// Registry holds harnesses keyed by id, with alias lookup.
type Registry struct {
	harnesses map[string]Harness
	aliases   map[string]string
	order     []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		harnesses: map[string]Harness{},
		aliases:   map[string]string{},
	}
}

// NewBuiltinRegistry registers every built-in harness resolved against env.
func NewBuiltinRegistry(env Env) *Registry {
	r := NewRegistry()
	r.Register(ClaudeCode(env))
	r.Register(OpenCode(env))
	r.Register(Goose(env))
	r.Register(AmpCode(env))
	r.Register(CopilotCLI(env))
	return r
}

// Register adds h. Re-registering an id replaces the harness but keeps its position.
func (r *Registry) Register(h Harness) {
	id := h.ID()
	if _, exists := r.harnesses[id]; !exists {
		r.order = append(r.order, id)
	}
	r.harnesses[id] = h
	if a, ok := h.(aliased); ok {
		for _, alias := range a.Aliases() {
			r.aliases[alias] = id
		}
	}
}

// Get returns the harness registered under id.
func (r *Registry) Get(id string) (Harness, bool) {
	h, ok := r.harnesses[id]
	return h, ok
}

// Resolve accepts an id or alias, case-insensitively.
func (r *Registry) Resolve(name string) (Harness, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if h, ok := r.harnesses[key]; ok {
		return h, nil
	}
	if id, ok := r.aliases[key]; ok {
		return r.harnesses[id], nil
	}
	return nil, fmt.Errorf(messages.HarnessUnknownFmt, ErrUnknownHarness, name, strings.Join(r.order, ", "))
}

// All returns registered harnesses in registration order.
func (r *Registry) All() []Harness {
	out := make([]Harness, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.harnesses[id])
	}
	return out
}

// IDs returns registered ids in registration order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
