package item

import "fmt"

// Registry holds all loaded item definitions indexed by ID, with per-kind
// pools in load order for loot generation.
type Registry struct {
	items  map[string]*ItemDef
	byKind map[string][]*ItemDef
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		items:  make(map[string]*ItemDef),
		byKind: make(map[string][]*ItemDef),
	}
}

// Register adds d to the registry.
//
// Precondition:  d must not be nil and should be validated.
// Postcondition: Get(d.ID) returns (d, true); returns error if d.ID already registered.
func (r *Registry) Register(d *ItemDef) error {
	if _, exists := r.items[d.ID]; exists {
		return fmt.Errorf("item: Registry.Register: item ID %q already registered", d.ID)
	}
	r.items[d.ID] = d
	r.byKind[d.Kind] = append(r.byKind[d.Kind], d)
	return nil
}

// Get returns the ItemDef for the given id, or (nil, false) if not found.
func (r *Registry) Get(id string) (*ItemDef, bool) {
	d, ok := r.items[id]
	return d, ok
}

// ByKind returns the pool of items of the given kind, in registration order.
// The slice is shared; callers must not modify it.
func (r *Registry) ByKind(kind string) []*ItemDef {
	return r.byKind[kind]
}

// All returns a snapshot slice of every registered ItemDef.
func (r *Registry) All() []*ItemDef {
	out := make([]*ItemDef, 0, len(r.items))
	for _, kind := range []string{KindWeapon, KindArmor, KindConsumable} {
		out = append(out, r.byKind[kind]...)
	}
	return out
}

// Len returns the number of registered items.
func (r *Registry) Len() int {
	return len(r.items)
}

// LoadRegistry loads every item definition from dir into a fresh Registry.
//
// Postcondition: Returns a non-nil Registry, or an error on unreadable,
// unparseable, invalid, or duplicate definitions.
func LoadRegistry(dir string) (*Registry, error) {
	defs, err := LoadItems(dir)
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, d := range defs {
		if err := reg.Register(d); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
