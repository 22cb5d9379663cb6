package item

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ConsumableGrant is an item+quantity pair for starting consumables.
type ConsumableGrant struct {
	ItemID   string `yaml:"item"`
	Quantity int    `yaml:"quantity"`
}

// StartingGear is the starting kit every new hero receives: an equipped
// connector weapon, an equipped error handler, and a stack of consumables.
//
// Postcondition: All ID fields reference content items once validated.
type StartingGear struct {
	WeaponID    string            `yaml:"weapon"`
	ArmorID     string            `yaml:"armor"`
	Consumables []ConsumableGrant `yaml:"consumables"`
}

// Validate checks that every referenced item exists in reg with the kind its
// slot requires.
func (g *StartingGear) Validate(reg *Registry) error {
	weapon, ok := reg.Get(g.WeaponID)
	if !ok || weapon.Kind != KindWeapon {
		return fmt.Errorf("starting gear: weapon %q is not a registered weapon", g.WeaponID)
	}
	armor, ok := reg.Get(g.ArmorID)
	if !ok || armor.Kind != KindArmor {
		return fmt.Errorf("starting gear: armor %q is not a registered armor", g.ArmorID)
	}
	for _, c := range g.Consumables {
		def, ok := reg.Get(c.ItemID)
		if !ok || def.Kind != KindConsumable {
			return fmt.Errorf("starting gear: consumable %q is not a registered consumable", c.ItemID)
		}
		if c.Quantity < 1 {
			return fmt.Errorf("starting gear: consumable %q quantity must be >= 1, got %d", c.ItemID, c.Quantity)
		}
	}
	return nil
}

// LoadStartingGear reads the starting gear definition from path and validates
// it against reg.
//
// Postcondition: Returns a non-nil StartingGear whose references all resolve,
// or an error.
func LoadStartingGear(path string, reg *Registry) (*StartingGear, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading starting gear %q: %w", path, err)
	}
	var gear StartingGear
	if err := yaml.Unmarshal(data, &gear); err != nil {
		return nil, fmt.Errorf("parsing starting gear %q: %w", path, err)
	}
	if err := gear.Validate(reg); err != nil {
		return nil, err
	}
	return &gear, nil
}
