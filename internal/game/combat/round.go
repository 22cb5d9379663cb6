package combat

import (
	"fmt"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
)

// Flee check tuning: base chance plus a per-point rate-agility bonus,
// capped so escape is never guaranteed.
const (
	FleeBaseChance   = 0.50
	FleeAgilityBonus = 0.02
	FleeMaxChance    = 0.95
)

// PhaseResult aggregates the enemy half of one combat round.
type PhaseResult struct {
	Messages     []string `json:"messages"`
	HeroDefeated bool     `json:"hero_defeated"`
	// Inflicted lists the status effect types enemies applied to the hero
	// during this phase.
	Inflicted []string `json:"inflicted,omitempty"`
}

// BeginHeroTurn advances the hero's status effects one turn and checks the
// action gate. Expired effects are reported as worn-off notices. When the
// gate blocks, the hero's action is forfeit but the enemies still take
// their phase.
//
// Precondition: effects must be non-nil.
func BeginHeroTurn(h *hero.Hero, effects *effect.Registry) (canAct bool, messages []string) {
	for _, name := range h.StatusEffects.Tick() {
		messages = append(messages, fmt.Sprintf("✨ %s has worn off!", name))
	}
	canAct, blocked := effect.CanAct(h.StatusEffects, effects)
	if !canAct {
		messages = append(messages, blocked)
	}
	return canAct, messages
}

// ResolveEnemyPhase walks the turn order once and resolves every living
// participant's turn against the hero. A boss with a loaded ability script
// spends its whole turn on the script; everyone else rolls the
// special-ability check first, then the attack resolutions it dictates.
// The hero slot is passed over (the hero's action opened the round) and
// the walk wraps the pointer, closing the round.
//
// The phase ends early when the hero falls; a survive-lethal armor special
// rescues a defending hero at 1 uptime instead, once per lethal hit.
//
// Precondition: st, items, effects, and src must be non-nil. abilities may
// be nil, in which case ability scripts are ignored.
// Postcondition: result.HeroDefeated implies h.Uptime == 0.
func ResolveEnemyPhase(enemies []*enemy.Instance, h *hero.Hero, st *State, items *item.Registry, effects *effect.Registry, src dice.Source, abilities AbilityRunner) *PhaseResult {
	result := &PhaseResult{}

	for range st.TurnOrder {
		slot := st.CurrentSlot()
		st.AdvanceTurn()
		if slot == HeroSlot {
			continue
		}
		e := findAlive(enemies, slot)
		if e == nil {
			continue
		}

		if e.AbilityScript != "" && abilities != nil {
			if ability, ok := abilities.RunBossAbility(e, h); ok {
				if applyBossAbility(e, h, st, items, effects, ability, result) {
					return result
				}
				continue
			}
		}

		attacks := 1
		if special, ok := e.RollSpecial(src); ok {
			result.Messages = append(result.Messages, special.Message)
			switch special.Kind {
			case enemy.SpecialKindSkip:
				continue
			case enemy.SpecialKindExtraAttack:
				attacks = 2
			case enemy.SpecialKindInflict:
				applyInflicted(h, special.EffectType, special.EffectTurns, effects)
				result.Inflicted = append(result.Inflicted, special.EffectType)
			}
		}

		for i := 0; i < attacks; i++ {
			atk := ResolveEnemyAttack(e, h, st, items, effects, src)
			result.Messages = append(result.Messages, atk.Messages...)
			if !atk.HeroDefeated {
				continue
			}
			if st.HeroDefending && hasSurviveLethal(h, items) {
				h.Uptime = 1
				result.Messages = append(result.Messages, "💚 Try/Catch Vest activated! You survive with 1 Uptime!")
				continue
			}
			result.HeroDefeated = true
			return result
		}
	}
	return result
}

// ResolveDefend runs the defensive exchange: the stance discounts every
// attack of the following enemy phase, then resets for the next round.
//
// Postcondition: st.HeroDefending is false.
func ResolveDefend(enemies []*enemy.Instance, h *hero.Hero, st *State, items *item.Registry, effects *effect.Registry, src dice.Source, abilities AbilityRunner) *PhaseResult {
	st.HeroDefending = true
	result := ResolveEnemyPhase(enemies, h, st, items, effects, src, abilities)
	st.HeroDefending = false
	return result
}

// FleeChance is the escape probability for the given rate agility.
//
// Postcondition: FleeBaseChance <= chance <= FleeMaxChance.
func FleeChance(agility int) float64 {
	chance := FleeBaseChance + float64(agility)*FleeAgilityBonus
	if chance > FleeMaxChance {
		chance = FleeMaxChance
	}
	return chance
}

// AttemptFlee rolls the graceful-degradation check. Success deactivates the
// encounter; on failure it stays active and the caller owes the enemies
// their free attacks.
//
// Precondition: src must be non-nil.
func AttemptFlee(h *hero.Hero, st *State, src dice.Source) bool {
	if !dice.Chance(src, FleeChance(h.RateAgility)) {
		return false
	}
	st.Active = false
	return true
}

// findAlive returns the living enemy with the given instance ID, or nil.
func findAlive(enemies []*enemy.Instance, id string) *enemy.Instance {
	for _, e := range enemies {
		if e.ID == id && e.IsAlive() {
			return e
		}
	}
	return nil
}

// applyInflicted attaches an enemy-inflicted status effect to the hero,
// carrying the registry description when the type is known.
func applyInflicted(h *hero.Hero, effectType string, turns int, effects *effect.Registry) {
	description := ""
	if def, ok := effects.Get(effectType); ok {
		description = def.Description
	}
	h.StatusEffects.Apply(effectType, turns, description)
}

// hasSurviveLethal reports whether the hero's equipped armor carries the
// survive-lethal special.
func hasSurviveLethal(h *hero.Hero, items *item.Registry) bool {
	def, ok := h.Equipped.Armor(items)
	return ok && def.SpecialEffect == item.SpecialSurviveLethal
}
