package hero

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/integration-quest/internal/game/item"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
)

// Base value for each of the four primary stats before class bonuses.
const baseStat = 10

// New constructs a level-1 hero of the given class, equipped with the
// starting gear and granted every skill the class teaches. Starting weapon
// and armor go straight into the equipment slots, not the inventory;
// consumable grants are stacked into the inventory.
//
// Precondition: name must be non-empty; class, gear, and items must be
// non-nil; gear must validate against items.
// Postcondition: Returns a hero at full uptime and credits, or a non-nil
// error with nothing allocated.
func New(name string, class *skill.Class, gear *item.StartingGear, items *item.Registry, maxSlots int) (*Hero, error) {
	if name == "" {
		return nil, errors.New("hero name must not be empty")
	}
	if class == nil {
		return nil, errors.New("class must not be nil")
	}
	if gear == nil {
		return nil, errors.New("starting gear must not be nil")
	}
	if items == nil {
		return nil, errors.New("item registry must not be nil")
	}

	h := &Hero{
		Name:            name,
		Role:            class.ID,
		Level:           1,
		Throughput:      baseStat + class.Creation.Throughput,
		FormulaPower:    baseStat + class.Creation.FormulaPower,
		RateAgility:     baseStat + class.Creation.RateAgility,
		ErrorResilience: baseStat + class.Creation.ErrorResilience,
	}

	h.MaxUptime = h.DerivedMaxUptime(class)
	h.Uptime = h.MaxUptime
	h.MaxAPICredits = h.DerivedMaxAPICredits(class)
	h.APICredits = h.MaxAPICredits

	h.Equipped.WeaponID = gear.WeaponID
	h.Equipped.ArmorID = gear.ArmorID

	for _, grant := range gear.Consumables {
		if !h.Inventory.Add(grant.ItemID, grant.Quantity, maxSlots) {
			return nil, fmt.Errorf("starting gear overflows %d inventory slots", maxSlots)
		}
	}

	h.Skills = make([]string, 0, len(class.Skills))
	for i := range class.Skills {
		h.Skills = append(h.Skills, class.Skills[i].ID)
	}

	return h, nil
}
