package loader

import (
	"fmt"
	"sync"

	"github.com/kiosk404/symbiont/internal/engine"
)

// Factory creates the register entry point for a plugin. It is called once
// per discovery pass, when the record is produced.
type Factory func() engine.Registrant

// Entry is the static declaration of one in-tree plugin.
type Entry struct {
	Name            string
	Description     string
	Depends         []string
	OptionalDepends []string
	Factory         Factory
}

// InTree is a thread-safe registry of in-tree plugin declarations. Host
// binaries register their built-in plugins here at startup; Discover turns
// the declarations into engine records.
type InTree struct {
	mu      sync.RWMutex
	entries map[string]Entry
	order   []string
}

// NewInTree creates an empty in-tree registry.
func NewInTree() *InTree {
	return &InTree{entries: make(map[string]Entry)}
}

// Register adds a plugin declaration to the registry.
// Returns an error if the name is empty or already registered.
func (r *InTree) Register(e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e.Name == "" {
		return fmt.Errorf("in-tree plugin declaration has no name")
	}
	if _, ok := r.entries[e.Name]; ok {
		return fmt.Errorf("plugin %s is already registered", e.Name)
	}
	r.entries[e.Name] = e
	r.order = append(r.order, e.Name)
	return nil
}

// MustRegister adds a plugin declaration to the registry.
// Panics if the declaration is invalid or already registered.
func (r *InTree) MustRegister(e Entry) {
	if err := r.Register(e); err != nil {
		panic(err)
	}
}

// Lookup returns the declaration for the given name.
func (r *InTree) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e, ok
}

// Names returns all registered plugin names in registration order.
func (r *InTree) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Len returns the number of registered declarations.
func (r *InTree) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Discover produces one record per declaration, in registration order. A
// declaration without a factory yields a record with no entry point, which
// the engine reports as a contract violation rather than being dropped here.
func (r *InTree) Discover() ([]*engine.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*engine.Record, 0, len(r.order))
	for _, name := range r.order {
		e := r.entries[name]
		var registrant engine.Registrant
		if e.Factory != nil {
			registrant = e.Factory()
		}
		records = append(records, engine.NewRecord(e.Name, e.Depends, e.OptionalDepends, registrant))
	}
	return records, nil
}
