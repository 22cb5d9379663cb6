package combat

import (
	"fmt"

	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
)

// AbilityInflict is one status effect a scripted boss turn applies to the
// hero.
type AbilityInflict struct {
	EffectType string
	Turns      int
}

// BossAbility is the resolved outcome of one scripted boss turn.
type BossAbility struct {
	SelfHeal   int
	HeroDamage int
	Inflicts   []AbilityInflict
	Messages   []string
}

// AbilityRunner executes a boss's ability script for one turn. A false
// return means the script did not perform and the boss takes its ordinary
// turn instead.
type AbilityRunner interface {
	RunBossAbility(e *enemy.Instance, h *hero.Hero) (BossAbility, bool)
}

// applyBossAbility applies one scripted boss turn: the script's narration,
// then the self-heal, the inflicted effects, and the direct hero damage.
// Scripted damage bypasses armor and the defensive-stance discount.
//
// Returns true when the hero is defeated outright; a defending hero with
// survive-lethal armor is rescued at 1 uptime instead.
func applyBossAbility(e *enemy.Instance, h *hero.Hero, st *State, items *item.Registry, effects *effect.Registry, ability BossAbility, result *PhaseResult) bool {
	result.Messages = append(result.Messages, ability.Messages...)

	if healed := e.Heal(ability.SelfHeal); healed > 0 {
		result.Messages = append(result.Messages, fmt.Sprintf(
			"💚 %s recovers %d HP!", e.Name, healed))
	}

	for _, inf := range ability.Inflicts {
		applyInflicted(h, inf.EffectType, inf.Turns, effects)
		result.Inflicted = append(result.Inflicted, inf.EffectType)
		result.Messages = append(result.Messages, fmt.Sprintf(
			"🦠 You are now %s! (%d turns)", effect.DisplayName(inf.EffectType), inf.Turns))
	}

	if ability.HeroDamage > 0 {
		h.ApplyDamage(ability.HeroDamage)
		result.Messages = append(result.Messages, fmt.Sprintf(
			"💔 You took %d damage! Uptime: %d/%d", ability.HeroDamage, h.Uptime, h.MaxUptime))
		if !h.IsAlive() {
			result.Messages = append(result.Messages, "💀 Your uptime has reached 0...")
			if st.HeroDefending && hasSurviveLethal(h, items) {
				h.Uptime = 1
				result.Messages = append(result.Messages, "💚 Try/Catch Vest activated! You survive with 1 Uptime!")
				return false
			}
			result.HeroDefeated = true
			return true
		}
	}
	return false
}
