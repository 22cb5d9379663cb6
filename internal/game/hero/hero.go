// Package hero defines the Integration Hero: the player character's stats,
// resource pools, carried gear, and active status effects. Derived maxima
// depend on the hero's class definition, which is injected at every
// recalculation rather than stored on the hero.
package hero

import (
	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/inventory"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
)

// Base resource pools before class modifiers and stat bonuses.
const (
	BaseUptime     = 100
	BaseAPICredits = 50
)

// Per-point bonuses in the derived-maximum formulas.
const (
	uptimePerResilience = 5
	creditsPerFormula   = 3
)

// FragmentSetSize is how many recipe fragments convert into one permanent
// max-uptime bonus.
const FragmentSetSize = 3

// FragmentBonus is the max-uptime gain per completed fragment set.
const FragmentBonus = 5

// Hero is the player character. JSON tags define the save-file shape.
type Hero struct {
	Name  string `json:"name"`
	Role  string `json:"role"`
	Level int    `json:"level"`
	XP    int    `json:"xp"`

	Uptime        int `json:"uptime"`
	MaxUptime     int `json:"max_uptime"`
	APICredits    int `json:"api_credits"`
	MaxAPICredits int `json:"max_api_credits"`

	Throughput      int `json:"throughput"`
	FormulaPower    int `json:"formula_power"`
	RateAgility     int `json:"rate_agility"`
	ErrorResilience int `json:"error_resilience"`

	Inventory inventory.Inventory `json:"inventory"`
	Equipped  inventory.Equipment `json:"equipped"`

	StatusEffects effect.Set `json:"status_effects"`
	Gold          int        `json:"gold"`
	Skills        []string   `json:"skills"`

	RecipeFragments int `json:"recipe_fragments"`

	GodModeActive bool        `json:"god_mode_active,omitempty"`
	SavedStats    *SavedStats `json:"saved_stats,omitempty"`
}

// DerivedMaxUptime computes the hero's maximum uptime from the base pool,
// the class modifier, error resilience, and banked fragment sets.
//
// Precondition: c must be non-nil.
func (h *Hero) DerivedMaxUptime(c *skill.Class) int {
	fragmentBonus := (h.RecipeFragments / FragmentSetSize) * FragmentBonus
	return BaseUptime + c.UptimeMod + h.ErrorResilience*uptimePerResilience + fragmentBonus
}

// DerivedMaxAPICredits computes the hero's maximum API credits from the base
// pool, the class modifier, and formula power.
//
// Precondition: c must be non-nil.
func (h *Hero) DerivedMaxAPICredits(c *skill.Class) int {
	return BaseAPICredits + c.CreditsMod + h.FormulaPower*creditsPerFormula
}

// ApplyDamage reduces uptime by n, clamping at zero.
//
// Postcondition: Uptime >= 0.
func (h *Hero) ApplyDamage(n int) {
	h.Uptime -= n
	if h.Uptime < 0 {
		h.Uptime = 0
	}
}

// Heal restores up to n uptime, capped at the maximum. Returns the amount
// actually restored.
func (h *Hero) Heal(n int) int {
	missing := h.MaxUptime - h.Uptime
	if n > missing {
		n = missing
	}
	if n < 0 {
		n = 0
	}
	h.Uptime += n
	return n
}

// RestoreCredits restores up to n API credits, capped at the maximum.
// Returns the amount actually restored.
func (h *Hero) RestoreCredits(n int) int {
	missing := h.MaxAPICredits - h.APICredits
	if n > missing {
		n = missing
	}
	if n < 0 {
		n = 0
	}
	h.APICredits += n
	return n
}

// SpendCredits deducts n API credits if the hero can afford them.
//
// Postcondition: Returns true and APICredits decreases by n, or returns
// false with no change.
func (h *Hero) SpendCredits(n int) bool {
	if h.APICredits < n {
		return false
	}
	h.APICredits -= n
	return true
}

// IsAlive reports whether the hero has any uptime left.
func (h *Hero) IsAlive() bool {
	return h.Uptime > 0
}

// ArmorValue is the hero's total flat damage reduction: equipped armor
// protection plus any bonus from active status effects.
func (h *Hero) ArmorValue(items *item.Registry, effects *effect.Registry) int {
	return h.Equipped.Protection(items) + effect.ArmorBonus(h.StatusEffects, effects)
}
