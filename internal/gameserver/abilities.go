package gameserver

import (
	"github.com/cory-johannsen/integration-quest/internal/game/combat"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
	"github.com/cory-johannsen/integration-quest/internal/scripting"
)

// ScriptedAbilities adapts the sandboxed Lua script manager to the combat
// engine's ability hook. The combat engine decides when a boss turn calls
// for a script; this adapter only translates views and outcomes.
type ScriptedAbilities struct {
	scripts *scripting.Manager
}

// NewScriptedAbilities wraps a script manager as a combat.AbilityRunner.
//
// Precondition: scripts must be non-nil.
func NewScriptedAbilities(scripts *scripting.Manager) *ScriptedAbilities {
	return &ScriptedAbilities{scripts: scripts}
}

// RunBossAbility executes the enemy's ability script for one turn. The
// false return covers missing scripts, missing hooks, and script failures;
// the boss then takes its ordinary turn.
func (a *ScriptedAbilities) RunBossAbility(e *enemy.Instance, h *hero.Hero) (combat.BossAbility, bool) {
	effects := make([]string, 0, len(h.StatusEffects))
	for _, active := range h.StatusEffects {
		effects = append(effects, active.Type)
	}

	out := a.scripts.CallAbility(e.AbilityScript,
		scripting.BossView{
			ID:    e.ID,
			Name:  e.Name,
			HP:    e.HP,
			MaxHP: e.MaxHP,
			Armor: e.Armor,
		},
		scripting.HeroView{
			Name:       h.Name,
			Level:      h.Level,
			Uptime:     h.Uptime,
			MaxUptime:  h.MaxUptime,
			APICredits: h.APICredits,
			Effects:    effects,
		},
	)
	if !out.Performed {
		return combat.BossAbility{}, false
	}

	ability := combat.BossAbility{
		SelfHeal:   out.BossHeal,
		HeroDamage: out.HeroDamage,
		Messages:   out.Lines,
	}
	for _, inf := range out.Inflicts {
		ability.Inflicts = append(ability.Inflicts, combat.AbilityInflict{
			EffectType: inf.EffectType,
			Turns:      inf.Turns,
		})
	}
	return ability, true
}
