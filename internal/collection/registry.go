package collection

import "fmt"

// Registry holds the schema for every registered collection. It is populated
// once at startup and safe for concurrent read access afterward; schemas are
// never mutated by the UI layer.
type Registry struct {
	schemas map[string]*Schema
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*Schema)}
}

// Register validates and adds a schema. Registering a duplicate ID is a
// configuration error.
func (r *Registry) Register(s *Schema) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if _, dup := r.schemas[s.ID]; dup {
		return fmt.Errorf("collection %q registered twice", s.ID)
	}
	r.schemas[s.ID] = s
	r.order = append(r.order, s.ID)
	return nil
}

// Get returns the schema for a collection ID, or nil if not registered.
func (r *Registry) Get(id string) *Schema {
	return r.schemas[id]
}

// IDs returns all registered collection IDs in registration order.
func (r *Registry) IDs() []string {
	return r.order
}

// All returns all schemas in registration order.
func (r *Registry) All() []*Schema {
	out := make([]*Schema, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.schemas[id])
	}
	return out
}
