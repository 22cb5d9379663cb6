package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// registerModules installs the engine.* API into L. Action functions write
// into the VM's outcome slot; outside a hook call (top-level script code)
// the slot is empty and actions are dropped with a warning.
//
//	engine.heal(n)                  boss restores up to n health
//	engine.damage_hero(n)           hero takes n damage directly
//	engine.apply_effect(type, turns) hero gains a status effect
//	engine.say(line)                narrative line for the combat log
//	engine.dice.roll(expr)          -> {expression, rolls, modifier, total}
//	engine.log.debug|info|warn|error(msg)
func (m *Manager) registerModules(L *lua.LState, script string, slot *outcomeSlot) {
	logger := m.logger.With(zap.String("script", script))

	action := func(name string, apply func(out *AbilityOutcome, L *lua.LState)) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			if slot.out == nil {
				logger.Warn("engine action called outside a hook", zap.String("action", name))
				return 0
			}
			apply(slot.out, L)
			return 0
		})
	}

	engine := L.NewTable()

	L.SetField(engine, "heal", action("heal", func(out *AbilityOutcome, L *lua.LState) {
		if n := int(L.CheckNumber(1)); n > 0 {
			out.BossHeal += n
		}
	}))

	L.SetField(engine, "damage_hero", action("damage_hero", func(out *AbilityOutcome, L *lua.LState) {
		if n := int(L.CheckNumber(1)); n > 0 {
			out.HeroDamage += n
		}
	}))

	L.SetField(engine, "apply_effect", action("apply_effect", func(out *AbilityOutcome, L *lua.LState) {
		effectType := L.CheckString(1)
		turns := int(L.CheckNumber(2))
		if effectType == "" || turns <= 0 {
			return
		}
		out.Inflicts = append(out.Inflicts, Inflict{EffectType: effectType, Turns: turns})
	}))

	L.SetField(engine, "say", action("say", func(out *AbilityOutcome, L *lua.LState) {
		out.Lines = append(out.Lines, L.CheckString(1))
	}))

	diceTbl := L.NewTable()
	L.SetField(diceTbl, "roll", L.NewFunction(func(L *lua.LState) int {
		res := m.roller.RollNotation(L.CheckString(1))
		t := L.NewTable()
		L.SetField(t, "expression", lua.LString(res.Expression))
		rolls := L.NewTable()
		for _, d := range res.Dice {
			rolls.Append(lua.LNumber(d))
		}
		L.SetField(t, "rolls", rolls)
		L.SetField(t, "modifier", lua.LNumber(res.Modifier))
		L.SetField(t, "total", lua.LNumber(res.Total()))
		L.Push(t)
		return 1
	}))
	L.SetField(engine, "dice", diceTbl)

	logTbl := L.NewTable()
	for name, fn := range map[string]func(string, ...zap.Field){
		"debug": logger.Debug,
		"info":  logger.Info,
		"warn":  logger.Warn,
		"error": logger.Error,
	} {
		emit := fn
		L.SetField(logTbl, name, L.NewFunction(func(L *lua.LState) int {
			emit(L.CheckString(1))
			return 0
		}))
	}
	L.SetField(engine, "log", logTbl)

	L.SetGlobal("engine", engine)
}
