package enemy

import "fmt"

// Registry holds all known enemy templates, keyed by ID and grouped by tier
// in registration order. The boss pool's order defines boss progression, so
// content files are loaded lexically and boss files carry ordering prefixes.
type Registry struct {
	byID   map[string]*Template
	byTier map[string][]*Template
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Template),
		byTier: make(map[string][]*Template),
	}
}

// Register adds a validated template to the registry.
//
// Precondition: tmpl must not be nil and must have passed Validate.
// Postcondition: Returns an error if a template with the same ID is already
// registered; on error the registry is unchanged.
func (r *Registry) Register(tmpl *Template) error {
	if tmpl == nil {
		return fmt.Errorf("enemy registry: template must not be nil")
	}
	if _, exists := r.byID[tmpl.ID]; exists {
		return fmt.Errorf("enemy registry: duplicate template ID %q", tmpl.ID)
	}
	r.byID[tmpl.ID] = tmpl
	r.byTier[tmpl.Tier] = append(r.byTier[tmpl.Tier], tmpl)
	return nil
}

// Get returns the template with the given ID, or (nil, false) if unknown.
func (r *Registry) Get(id string) (*Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}

// ByTier returns the templates of one tier in registration order. The
// returned slice is shared; callers must not modify it.
func (r *Registry) ByTier(tier string) []*Template {
	return r.byTier[tier]
}

// Bosses returns the boss pool in progression order.
func (r *Registry) Bosses() []*Template {
	return r.byTier[TierBoss]
}

// Len returns the number of registered templates.
func (r *Registry) Len() int {
	return len(r.byID)
}

// LoadRegistry loads every template under dir into a fresh Registry.
//
// Postcondition: Returns a registry containing all templates, or an error on
// the first load or duplicate-ID failure.
func LoadRegistry(dir string) (*Registry, error) {
	templates, err := LoadTemplates(dir)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, tmpl := range templates {
		if err := reg.Register(tmpl); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
