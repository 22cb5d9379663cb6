// Package skill defines the playable classes of Integration Quest and the
// combat skills each class unlocks. Classes are loaded from YAML content
// files at startup and injected into character creation, progression, and
// combat; nothing in this package touches the filesystem after load.
package skill

import (
	"fmt"
	"strings"
)

// BasicAttackID identifies the built-in no-cost attack every hero can use
// regardless of class. It is seeded into every Registry and never loaded
// from content.
const BasicAttackID = "basic_attack"

// SkillDef describes a single usable combat skill.
//
// Cost is the API-credit price before status-effect cost modifiers.
// DamageMultiplier scales hero damage (1.0 = unmodified) and IgnoreArmor
// skips the target's armor subtraction entirely.
type SkillDef struct {
	ID               string  `yaml:"id"`
	Name             string  `yaml:"name"`
	Description      string  `yaml:"description"`
	Cost             int     `yaml:"cost"`
	DamageMultiplier float64 `yaml:"damage_multiplier"`
	IgnoreArmor      bool    `yaml:"ignore_armor"`
}

// Validate checks that the skill definition is internally consistent.
//
// Precondition: s must be non-nil.
// Postcondition: Returns nil if the definition is usable, or an error
// naming every violated field.
func (s *SkillDef) Validate() error {
	var problems []string
	if s.ID == "" {
		problems = append(problems, "id must be non-empty")
	}
	if s.Name == "" {
		problems = append(problems, "name must be non-empty")
	}
	if s.Cost < 0 {
		problems = append(problems, fmt.Sprintf("cost must be >= 0, got %d", s.Cost))
	}
	if s.DamageMultiplier <= 0 {
		problems = append(problems, fmt.Sprintf("damage_multiplier must be > 0, got %g", s.DamageMultiplier))
	}
	if len(problems) > 0 {
		return fmt.Errorf("skill %q invalid: %s", s.ID, strings.Join(problems, "; "))
	}
	return nil
}

// BasicAttack returns the built-in fallback skill: free, unmodified damage,
// respects armor.
func BasicAttack() *SkillDef {
	return &SkillDef{
		ID:               BasicAttackID,
		Name:             "Basic Attack",
		Description:      "A plain request with no special handling.",
		Cost:             0,
		DamageMultiplier: 1.0,
	}
}
