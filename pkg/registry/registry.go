// Package registry holds the table metadata for a fixed set of models.
//
// A Registry is built once at start-up and handed to every component that
// needs schema information; there is no package-level instance.
package registry

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"sync"

	"github.com/marshallshelly/booksales/pkg/runtime"
	"github.com/marshallshelly/booksales/pkg/schema"
)

// Registry maps model types and table names to parsed metadata. It is safe
// for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	parser *schema.Parser
	byType map[reflect.Type]*schema.TableMetadata
	byName map[string]*schema.TableMetadata
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		parser: schema.NewParser(),
		byType: map[reflect.Type]*schema.TableMetadata{},
		byName: map[string]*schema.TableMetadata{},
	}
}

// Register parses and adds models, given as values or pointers. Registering
// a type twice is a no-op. Every model needs a primary key and a table name
// no other model uses.
func (r *Registry) Register(models ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, model := range models {
		if model == nil {
			return fmt.Errorf("%w: nil model", runtime.ErrInvalidModel)
		}
		if err := r.add(structType(reflect.TypeOf(model))); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) add(t reflect.Type) error {
	if t.Kind() != reflect.Struct {
		return fmt.Errorf("%w: model must be a struct, got %s", runtime.ErrInvalidModel, t.Kind())
	}
	if _, ok := r.byType[t]; ok {
		return nil
	}

	table, err := r.parser.Parse(t)
	switch {
	case err != nil:
		return fmt.Errorf("model %s: %w", t.Name(), err)
	case table.PrimaryKey == nil:
		return fmt.Errorf("model %s: %w", t.Name(), runtime.ErrNoPrimaryKey)
	}
	if other, taken := r.byName[table.Name]; taken {
		return fmt.Errorf("table %s already registered by %s", table.Name, other.GoType.Name())
	}

	r.byType[t] = table
	r.byName[table.Name] = table
	return nil
}

// Get returns the table for a model type or pointer type.
func (r *Registry) Get(t reflect.Type) (*schema.TableMetadata, error) {
	t = structType(t)
	if table := r.lookupType(t); table != nil {
		return table, nil
	}
	return nil, fmt.Errorf("%w: %s", runtime.ErrNotRegistered, t.Name())
}

// Of returns the table for the dynamic type of model.
func (r *Registry) Of(model any) (*schema.TableMetadata, error) {
	if model == nil {
		return nil, fmt.Errorf("%w: nil model", runtime.ErrInvalidModel)
	}
	return r.Get(reflect.TypeOf(model))
}

// GetByName returns the table called name.
func (r *Registry) GetByName(name string) (*schema.TableMetadata, error) {
	if table := r.lookupName(name); table != nil {
		return table, nil
	}
	return nil, fmt.Errorf("%w: table %s", runtime.ErrNotRegistered, name)
}

// Has reports whether a model type is registered.
func (r *Registry) Has(t reflect.Type) bool {
	return r.lookupType(structType(t)) != nil
}

// HasTable reports whether a table name is registered.
func (r *Registry) HasTable(name string) bool {
	return r.lookupName(name) != nil
}

func (r *Registry) lookupType(t reflect.Type) *schema.TableMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byType[t]
}

func (r *Registry) lookupName(name string) *schema.TableMetadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName[name]
}

// Names returns the registered table names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byName))
}

// Tables returns every registered table after the tables its foreign keys
// reference. Among tables that are ready at the same time the smallest name
// goes first. References to unregistered tables are ignored.
func (r *Registry) Tables() ([]*schema.TableMetadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	waiting := make(map[string]int, len(r.byName))
	children := make(map[string][]string, len(r.byName))
	for name, table := range r.byName {
		for _, ref := range table.References() {
			if _, ok := r.byName[ref]; ok && ref != name {
				waiting[name]++
				children[ref] = append(children[ref], name)
			}
		}
	}

	var ready []string
	for name := range r.byName {
		if waiting[name] == 0 {
			ready = append(ready, name)
		}
	}

	ordered := make([]*schema.TableMetadata, 0, len(r.byName))
	for len(ready) > 0 {
		slices.Sort(ready)
		name := ready[0]
		ready = ready[1:]
		ordered = append(ordered, r.byName[name])
		for _, child := range children[name] {
			if waiting[child]--; waiting[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if len(ordered) < len(r.byName) {
		var stuck []string
		for name, n := range waiting {
			if n > 0 {
				stuck = append(stuck, name)
			}
		}
		slices.Sort(stuck)
		return nil, fmt.Errorf("foreign key cycle among tables %v", stuck)
	}
	return ordered, nil
}

func structType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}
