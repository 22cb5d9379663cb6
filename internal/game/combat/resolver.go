package combat

import (
	"fmt"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
)

// DefenseDamageReduction is the fraction of incoming damage absorbed by a
// defensive stance.
const DefenseDamageReduction = 0.50

// throughputPerBonus grants +1 hero damage per this many points of
// throughput.
const throughputPerBonus = 5

// minArmoredDamage is the floor applied when armor reduces an attack: armor
// weakens a hit but never fully negates it.
const minArmoredDamage = 1

// HeroAttackResult records one resolved hero attack. It is returned to the
// caller verbatim as the combat log of the action.
type HeroAttackResult struct {
	// Success is false when the attack was blocked outright by the
	// examine-gate; no damage was dealt and no turn effects applied.
	Success       bool     `json:"success"`
	Messages      []string `json:"messages"`
	DamageDealt   int      `json:"damage_dealt"`
	Critical      bool     `json:"critical,omitempty"`
	EnemyDefeated bool     `json:"enemy_defeated"`
	XPGained      int      `json:"xp_gained"`
	GoldGained    int      `json:"gold_gained"`
}

// EnemyAttackResult records one resolved enemy attack against the hero.
type EnemyAttackResult struct {
	Messages     []string `json:"messages"`
	DamageDealt  int      `json:"damage_dealt"`
	HeroDefeated bool     `json:"hero_defeated"`
}

// RollHeroDamage computes the hero's attack damage before status-effect
// scaling: weapon dice (or a flat 1 unarmed), +1 per 5 throughput, the
// skill multiplier truncated to integer, an independent critical check that
// doubles the result, then the target's armor subtraction floored at 1
// unless the skill ignores armor.
//
// Precondition: src must be non-nil; weapon may be nil (unarmed).
// Postcondition: damage >= minArmoredDamage when armor applies.
func RollHeroDamage(throughput int, weapon *item.ItemDef, targetArmor int, skillMultiplier float64, ignoreArmor bool, src dice.Source) (damage int, critical bool, messages []string) {
	var base int
	if weapon != nil {
		res := dice.RollNotation(weapon.DamageDice, src)
		base = res.Total()
		messages = append(messages, fmt.Sprintf("🎲 Rolled %s: %v = %d", weapon.DamageDice, res.Dice, base))
	} else {
		base = 1
		messages = append(messages, "🎲 Basic attack: 1 damage")
	}

	base += throughput / throughputPerBonus
	base = int(float64(base) * skillMultiplier)

	critical = dice.CriticalHit(src)
	if critical {
		base *= 2
		messages = append(messages, "💥 CRITICAL HIT!")
	}

	damage = base
	if !ignoreArmor {
		damage = base - targetArmor
		if damage < minArmoredDamage {
			damage = minArmoredDamage
		}
		if targetArmor > 0 {
			messages = append(messages, fmt.Sprintf("🛡️ Armor reduced damage by %d", targetArmor))
		}
	}
	return damage, critical, messages
}

// ResolveHeroAttack runs the hero's attack against one enemy: the
// examine-gate first, then the damage pipeline, then the hero's active
// status damage multiplier as a final truncating scale, then the enemy HP
// clamp and defeat bookkeeping.
//
// Precondition: target must be alive; st, items, effects, and src must be
// non-nil. The skill's resource cost has already been paid.
// Postcondition: target.HP >= 0; st.EnemiesDefeated increments on a kill.
func ResolveHeroAttack(h *hero.Hero, target *enemy.Instance, st *State, def *skill.SkillDef, items *item.Registry, effects *effect.Registry, src dice.Source) *HeroAttackResult {
	result := &HeroAttackResult{Success: true}

	if target.IsImmune() {
		result.Success = false
		result.Messages = append(result.Messages, fmt.Sprintf(
			"🛡️ The %s is IMMUNE! Its defenses are impenetrable. Try using 'examine' to find its weakness.",
			target.Name))
		return result
	}

	weapon, _ := h.Equipped.Weapon(items)
	damage, critical, messages := RollHeroDamage(
		h.Throughput, weapon, target.Armor, def.DamageMultiplier, def.IgnoreArmor, src)

	damage = int(float64(damage) * effect.DamageModifier(h.StatusEffects, effects))

	result.DamageDealt = damage
	result.Critical = critical
	result.Messages = append(result.Messages, messages...)

	target.ApplyDamage(damage)
	result.Messages = append(result.Messages, fmt.Sprintf(
		"⚔️ You hit %s for %d damage! (%d/%d HP remaining)",
		target.Name, damage, target.HP, target.MaxHP))

	if !target.IsAlive() {
		result.EnemyDefeated = true
		result.XPGained = target.XPReward
		result.GoldGained = target.GoldReward
		st.EnemiesDefeated++
		result.Messages = append(result.Messages, fmt.Sprintf(
			"✅ %s defeated! +%d XP, +%d gold",
			target.Name, target.XPReward, target.GoldReward))
	}
	return result
}

// ResolveEnemyAttack runs one enemy attack against the hero: damage dice,
// the defensive-stance discount, the hero's total armor subtraction floored
// at 1, then the uptime clamp and defeat check.
//
// Precondition: e must be alive; st, items, effects, and src must be
// non-nil.
// Postcondition: h.Uptime >= 0.
func ResolveEnemyAttack(e *enemy.Instance, h *hero.Hero, st *State, items *item.Registry, effects *effect.Registry, src dice.Source) *EnemyAttackResult {
	result := &EnemyAttackResult{}

	res := dice.RollNotation(e.DamageDice, src)
	damage := res.Total()
	result.Messages = append(result.Messages, fmt.Sprintf(
		"%s %s attacks! Rolled %s: %v = %d",
		e.Emoji, e.Name, e.DamageDice, res.Dice, damage))

	if st.HeroDefending {
		damage = int(float64(damage) * (1 - DefenseDamageReduction))
		result.Messages = append(result.Messages, "🛡️ Defensive stance reduced damage by 50%!")
	}

	armor := h.ArmorValue(items, effects)
	if armor > 0 {
		damage -= armor
		if damage < minArmoredDamage {
			damage = minArmoredDamage
		}
		result.Messages = append(result.Messages, fmt.Sprintf("🛡️ Your armor blocked %d damage", armor))
	}

	result.DamageDealt = damage
	h.ApplyDamage(damage)
	result.Messages = append(result.Messages, fmt.Sprintf(
		"💔 You took %d damage! Uptime: %d/%d", damage, h.Uptime, h.MaxUptime))

	if !h.IsAlive() {
		result.HeroDefeated = true
		result.Messages = append(result.Messages, "💀 Your uptime has reached 0...")
	}
	return result
}

// SkillCost is the API-credit price of a skill after the hero's active
// status cost modifiers, truncated to integer.
func SkillCost(def *skill.SkillDef, s effect.Set, reg *effect.Registry) int {
	return int(float64(def.Cost) * effect.CostModifier(s, reg))
}
