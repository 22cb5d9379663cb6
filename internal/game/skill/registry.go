package skill

import "fmt"

// Registry holds every loaded class and provides a flat skill lookup across
// all of them. Skill use is not gated by class ownership; any registered
// skill id resolves for any hero.
type Registry struct {
	classes map[string]*Class
	ordered []*Class
	skills  map[string]*SkillDef
}

// NewRegistry returns a Registry pre-seeded with the built-in basic attack.
//
// Postcondition: Returns a non-nil Registry where Skill(BasicAttackID)
// succeeds.
func NewRegistry() *Registry {
	r := &Registry{
		classes: make(map[string]*Class),
		skills:  make(map[string]*SkillDef),
	}
	r.skills[BasicAttackID] = BasicAttack()
	return r
}

// RegisterClass adds a class and indexes its skills for global lookup.
//
// Precondition: c must be non-nil and validated.
// Postcondition: c is retrievable via Class(c.ID) and each of its skills
// via Skill. Returns an error on a duplicate class or skill id without
// registering anything from c.
func (r *Registry) RegisterClass(c *Class) error {
	if c == nil {
		return fmt.Errorf("cannot register nil class")
	}
	if _, exists := r.classes[c.ID]; exists {
		return fmt.Errorf("duplicate class id %q", c.ID)
	}
	for i := range c.Skills {
		if _, exists := r.skills[c.Skills[i].ID]; exists {
			return fmt.Errorf("class %q: duplicate skill id %q", c.ID, c.Skills[i].ID)
		}
	}
	r.classes[c.ID] = c
	r.ordered = append(r.ordered, c)
	for i := range c.Skills {
		r.skills[c.Skills[i].ID] = &c.Skills[i]
	}
	return nil
}

// Class returns the class registered under id.
func (r *Registry) Class(id string) (*Class, bool) {
	c, ok := r.classes[id]
	return c, ok
}

// Classes returns all registered classes in registration order. The slice
// is shared; callers must not mutate it.
func (r *Registry) Classes() []*Class {
	return r.ordered
}

// Skill returns the skill registered under id, searching across every
// class plus the built-in basic attack.
func (r *Registry) Skill(id string) (*SkillDef, bool) {
	s, ok := r.skills[id]
	return s, ok
}

// LoadRegistry loads every class definition in dir into a fresh Registry.
//
// Precondition: dir must be a readable directory of class YAML files.
// Postcondition: Returns a Registry containing every class in dir, or a
// non-nil error if any file fails to parse, validate, or register.
func LoadRegistry(dir string) (*Registry, error) {
	classes, err := LoadClasses(dir)
	if err != nil {
		return nil, err
	}
	r := NewRegistry()
	for _, c := range classes {
		if err := r.RegisterClass(c); err != nil {
			return nil, fmt.Errorf("loading classes from %s: %w", dir, err)
		}
	}
	return r, nil
}
