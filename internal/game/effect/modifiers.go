package effect

// DamageModifier returns the outgoing-damage multiplier from all active
// effects. Multipliers compose multiplicatively; types unknown to the
// registry contribute nothing.
//
// Postcondition: Returns > 0 for any registry whose defs validate.
func DamageModifier(s Set, reg *Registry) float64 {
	modifier := 1.0
	for _, e := range s {
		if def, ok := reg.Get(e.Type); ok {
			modifier *= def.DamageModifier
		}
	}
	return modifier
}

// CostModifier returns the skill resource-cost multiplier from all active
// effects, composed multiplicatively.
func CostModifier(s Set, reg *Registry) float64 {
	modifier := 1.0
	for _, e := range s {
		if def, ok := reg.Get(e.Type); ok {
			modifier *= def.CostModifier
		}
	}
	return modifier
}

// ArmorBonus returns the total flat armor granted by active effects.
//
// Postcondition: Returns >= 0.
func ArmorBonus(s Set, reg *Registry) int {
	total := 0
	for _, e := range s {
		if def, ok := reg.Get(e.Type); ok {
			total += def.ArmorBonus
		}
	}
	return total
}

// CanAct reports whether the hero may act this turn. If any active effect
// blocks the action, it returns false and the effect's block message. This
// gate is checked before any action resolves.
func CanAct(s Set, reg *Registry) (bool, string) {
	for _, e := range s {
		def, ok := reg.Get(e.Type)
		if !ok || !def.BlocksAction {
			continue
		}
		msg := def.BlockMessage
		if msg == "" {
			msg = e.Name + "! You must skip this turn."
		}
		return false, msg
	}
	return true, ""
}
