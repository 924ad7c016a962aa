package labware

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/kbukum/liquidkit/errors"
)

// Registry maps load names to definitions.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]Definition
}

// NewRegistry returns a registry holding the built-in definitions.
func NewRegistry() *Registry {
	r := &Registry{defs: make(map[string]Definition, len(builtin))}
	for _, d := range builtin {
		r.defs[d.LoadName] = d
	}
	return r
}

// Register adds or replaces a definition after validating it.
func (r *Registry) Register(def Definition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defs[def.LoadName] = def
	return nil
}

// Lookup returns the definition for loadName.
func (r *Registry) Lookup(loadName string) (Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.defs[loadName]
	if !ok {
		return Definition{}, errors.Lookup("labware definition", loadName, "registry")
	}
	return d, nil
}

// Names returns every registered load name in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.defs))
	for n := range r.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

type definitionFile struct {
	Definitions []Definition `yaml:"definitions"`
}

// LoadYAML registers every definition in a YAML document.
// Nothing is registered if any definition is invalid.
func (r *Registry) LoadYAML(data []byte) (int, error) {
	var f definitionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return 0, errors.Config("labware", err)
	}
	for _, d := range f.Definitions {
		if err := d.Validate(); err != nil {
			return 0, errors.Config("labware", err)
		}
	}
	for _, d := range f.Definitions {
		if err := r.Register(d); err != nil {
			return 0, err
		}
	}
	return len(f.Definitions), nil
}

// LoadFile registers the definitions in a YAML file.
func (r *Registry) LoadFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Config("labware", fmt.Errorf("read %s: %w", path, err))
	}
	return r.LoadYAML(data)
}
