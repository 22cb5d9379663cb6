package inventory

import "github.com/cory-johannsen/integration-quest/internal/game/item"

// Equipment holds the hero's two gear slots: one connector (weapon) and one
// error handler (armor). Slots store item definition ids; an empty string
// means the slot is open.
type Equipment struct {
	WeaponID string `json:"weapon,omitempty"`
	ArmorID  string `json:"armor,omitempty"`
}

// Weapon resolves the equipped weapon definition.
//
// Postcondition: Returns (def, true) when a weapon is equipped and its id
// resolves, (nil, false) otherwise.
func (e Equipment) Weapon(reg *item.Registry) (*item.ItemDef, bool) {
	if e.WeaponID == "" {
		return nil, false
	}
	return reg.Get(e.WeaponID)
}

// Armor resolves the equipped armor definition.
func (e Equipment) Armor(reg *item.Registry) (*item.ItemDef, bool) {
	if e.ArmorID == "" {
		return nil, false
	}
	return reg.Get(e.ArmorID)
}

// Protection returns the flat protection value of the equipped armor, zero
// when the slot is open or stale.
func (e Equipment) Protection(reg *item.Registry) int {
	if def, ok := e.Armor(reg); ok {
		return def.Protection
	}
	return 0
}

// DamageDice returns the equipped weapon's damage notation, "" when
// unarmed.
func (e Equipment) DamageDice(reg *item.Registry) string {
	if def, ok := e.Weapon(reg); ok {
		return def.DamageDice
	}
	return ""
}
