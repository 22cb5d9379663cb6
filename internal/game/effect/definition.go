// Package effect manages timed status modifiers on a hero: application with
// refresh-to-longer semantics, per-turn expiry, and the aggregate damage,
// cost, armor, and action-gate queries combat resolution depends on.
package effect

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// EffectDef is the static definition of a status effect type, loaded from YAML.
// Modifiers compose multiplicatively across simultaneous active effects.
type EffectDef struct {
	Type           string  `yaml:"type"`            // effect type tag, e.g. "auth_expired"
	Description    string  `yaml:"description"`     // default description when none supplied
	DamageModifier float64 `yaml:"damage_modifier"` // outgoing damage multiplier; 0 normalizes to 1
	CostModifier   float64 `yaml:"cost_modifier"`   // skill resource-cost multiplier; 0 normalizes to 1
	ArmorBonus     int     `yaml:"armor_bonus"`     // flat armor granted while active
	BlocksAction   bool    `yaml:"blocks_action"`   // true if the hero must skip the turn
	BlockMessage   string  `yaml:"block_message"`   // narration shown when the gate fires
}

// Validate checks the definition for internal consistency.
//
// Postcondition: Returns nil only if Type is non-empty and all modifiers are
// non-negative.
func (d *EffectDef) Validate() error {
	var errs []string
	if d.Type == "" {
		errs = append(errs, "type must not be empty")
	}
	if d.DamageModifier < 0 {
		errs = append(errs, fmt.Sprintf("damage_modifier must be >= 0, got %v", d.DamageModifier))
	}
	if d.CostModifier < 0 {
		errs = append(errs, fmt.Sprintf("cost_modifier must be >= 0, got %v", d.CostModifier))
	}
	if d.ArmorBonus < 0 {
		errs = append(errs, fmt.Sprintf("armor_bonus must be >= 0, got %d", d.ArmorBonus))
	}
	if len(errs) > 0 {
		return fmt.Errorf("effect %q invalid: %s", d.Type, strings.Join(errs, "; "))
	}
	return nil
}

// Registry holds all known EffectDefs keyed by type tag.
type Registry struct {
	defs map[string]*EffectDef
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*EffectDef)}
}

// Register adds def to the registry, overwriting any existing entry with the
// same type. Zero-valued modifiers are normalized to 1 (no change) so a YAML
// definition may omit the fields it does not alter.
//
// Precondition: def must not be nil and def.Type must not be empty.
func (r *Registry) Register(def *EffectDef) {
	if def.DamageModifier == 0 {
		def.DamageModifier = 1
	}
	if def.CostModifier == 0 {
		def.CostModifier = 1
	}
	r.defs[def.Type] = def
}

// Get returns the EffectDef for the given type tag, or (nil, false) if the
// type is unknown. Unknown types are legal at runtime: they apply as inert
// narrative effects with no modifiers.
func (r *Registry) Get(effectType string) (*EffectDef, bool) {
	d, ok := r.defs[effectType]
	return d, ok
}

// All returns a snapshot slice of all registered EffectDefs.
func (r *Registry) All() []*EffectDef {
	out := make([]*EffectDef, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	return out
}

// LoadDirectory reads every *.yaml file in dir, parses each as an EffectDef,
// validates it, and returns a populated Registry.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a non-nil Registry, or an error if any file fails to
// parse or validate.
func LoadDirectory(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading effect dir %q: %w", dir, err)
	}
	reg := NewRegistry()
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		var def EffectDef
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&def); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := def.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		reg.Register(&def)
	}
	return reg, nil
}
