// Package inventory provides the hero's carried-item list and equipment
// slots. Slots hold item definition ids plus quantities; definitions
// themselves live in the item registry and are resolved at lookup time, so
// persisted state stays a flat id/quantity list.
package inventory

import (
	"strings"

	"github.com/cory-johannsen/integration-quest/internal/game/item"
)

// Slot is one inventory line: an item definition id and how many are held.
type Slot struct {
	ItemID   string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Inventory is an ordered list of slots, unique by item id. The zero value
// is an empty, usable inventory.
type Inventory []Slot

// Add places quantity units of itemID into the inventory. Existing stacks
// grow without consuming a new slot; a new item only fits while the slot
// count is below maxSlots.
//
// Precondition: quantity > 0 and maxSlots > 0.
// Postcondition: Returns true and the inventory contains the units, or
// returns false with the inventory unchanged (full).
func (inv *Inventory) Add(itemID string, quantity, maxSlots int) bool {
	for i := range *inv {
		if (*inv)[i].ItemID == itemID {
			(*inv)[i].Quantity += quantity
			return true
		}
	}
	if len(*inv) >= maxSlots {
		return false
	}
	*inv = append(*inv, Slot{ItemID: itemID, Quantity: quantity})
	return true
}

// Remove takes quantity units of itemID out of the inventory. A slot that
// reaches zero (or below) is dropped entirely.
//
// Postcondition: Returns true if the item was present, false otherwise
// (inventory unchanged).
func (inv *Inventory) Remove(itemID string, quantity int) bool {
	for i := range *inv {
		if (*inv)[i].ItemID == itemID {
			(*inv)[i].Quantity -= quantity
			if (*inv)[i].Quantity <= 0 {
				*inv = append((*inv)[:i], (*inv)[i+1:]...)
			}
			return true
		}
	}
	return false
}

// Quantity returns how many units of itemID are held, zero if none.
func (inv Inventory) Quantity(itemID string) int {
	for i := range inv {
		if inv[i].ItemID == itemID {
			return inv[i].Quantity
		}
	}
	return 0
}

// Has reports whether at least one unit of itemID is held.
func (inv Inventory) Has(itemID string) bool {
	return inv.Quantity(itemID) > 0
}

// Find returns the definition of the first held item whose display name
// contains query, case-insensitively. kind narrows the match to a single
// item kind; pass "" to match any kind. Slots whose id no longer resolves
// in the registry are skipped.
func Find(inv Inventory, reg *item.Registry, query, kind string) (*item.ItemDef, bool) {
	q := strings.ToLower(query)
	for i := range inv {
		def, ok := reg.Get(inv[i].ItemID)
		if !ok {
			continue
		}
		if kind != "" && def.Kind != kind {
			continue
		}
		if strings.Contains(strings.ToLower(def.Name), q) {
			return def, true
		}
	}
	return nil, false
}

// Resolve maps every slot to its definition, skipping slots whose id is
// unknown to the registry. The returned slices are parallel.
func Resolve(inv Inventory, reg *item.Registry) ([]*item.ItemDef, []int) {
	defs := make([]*item.ItemDef, 0, len(inv))
	counts := make([]int, 0, len(inv))
	for i := range inv {
		def, ok := reg.Get(inv[i].ItemID)
		if !ok {
			continue
		}
		defs = append(defs, def)
		counts = append(counts, inv[i].Quantity)
	}
	return defs, counts
}
