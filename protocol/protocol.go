package protocol

import (
	"context"
	"sort"

	"github.com/kbukum/liquidkit/deck"
	"github.com/kbukum/liquidkit/errors"
	"github.com/kbukum/liquidkit/validation"
)

// Protocol is a bundled procedure.
type Protocol interface {
	Name() string
	// Layout is the deck the protocol needs.
	Layout() deck.Layout
	// Parameters are the values the run was configured with, for the journal.
	Parameters() any
	// Plan binds the protocol to a loaded deck and returns its phases.
	Plan(d *deck.Deck) ([]Phase, error)
}

// Phase is one named step of a protocol.
type Phase struct {
	Name string
	Run  func(ctx context.Context, s *Session) error
}

// Decoder fills a protocol's parameter struct, typically from a config
// section.
type Decoder func(into any) error

// NoParameters leaves the defaults untouched.
func NoParameters(any) error { return nil }

// Factory builds a protocol from decoded parameters.
type Factory func(decode Decoder) (Protocol, error)

type entry struct {
	description string
	factory     Factory
}

// Registry maps protocol names to factories.
type Registry struct {
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a protocol. Registering a name twice replaces the first.
func (r *Registry) Register(name, description string, f Factory) {
	r.entries[name] = entry{description: description, factory: f}
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Description returns the one-line description of name.
func (r *Registry) Description(name string) string {
	return r.entries[name].description
}

// New builds the protocol registered under name.
func (r *Registry) New(name string, decode Decoder) (Protocol, error) {
	e, ok := r.entries[name]
	if !ok {
		return nil, errors.Lookup("protocol", name, "registry")
	}
	if decode == nil {
		decode = NoParameters
	}
	return e.factory(decode)
}

// Configure decodes into cfg, fills what was left zero with defaults and
// validates the result. cfg must be a pointer to a struct.
func Configure[C interface{ ApplyDefaults() }](cfg C, decode Decoder) error {
	if err := decode(cfg); err != nil {
		return errors.Config("protocol parameters", err)
	}
	cfg.ApplyDefaults()
	return validation.Validate(cfg)
}
