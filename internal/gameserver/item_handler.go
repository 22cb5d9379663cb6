package gameserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/inventory"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
	"github.com/cory-johannsen/integration-quest/internal/game/progress"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// UseItemInput names the consumable to use, matched as a substring.
type UseItemInput struct {
	Item string `json:"item" jsonschema:"consumable name from inventory, matched as a substring"`
}

// PickupInput names the room item to take, matched as a substring.
type PickupInput struct {
	Item string `json:"item" jsonschema:"item name in the current room, matched as a substring"`
}

// EquipInput names the weapon or armor to equip, matched as a substring.
type EquipInput struct {
	Item string `json:"item" jsonschema:"weapon or armor name from inventory, matched as a substring"`
}

// handleUseItem consumes one unit of a held consumable and applies its
// effect. The unit is spent even when the effect is a no-op, matching the
// escape rope used outside combat.
func (s *Server) handleUseItem(ctx context.Context, req *mcp.CallToolRequest, input UseItemInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero

	def, ok := inventory.Find(h.Inventory, s.items, input.Item, item.KindConsumable)
	if !ok {
		return nil, fail(msgItemNotFound(input.Item), gameerr.ItemNotFound(input.Item)), nil
	}

	messages := []string{fmt.Sprintf("🧪 You use %s!", def.Name)}

	switch def.EffectType {
	case item.EffectHealHP:
		healed := h.Heal(def.EffectAmount())
		messages = append(messages,
			fmt.Sprintf("❤️ Restored %d Uptime! (%d/%d)", healed, h.Uptime, h.MaxUptime))

	case item.EffectHealMP:
		restored := h.RestoreCredits(def.EffectAmount())
		messages = append(messages,
			fmt.Sprintf("💙 Restored %d API Credits! (%d/%d)", restored, h.APICredits, h.MaxAPICredits))

	case item.EffectCureStatus:
		h.StatusEffects.Remove(def.EffectValue)
		messages = append(messages,
			fmt.Sprintf("✨ %s cured!", effect.DisplayName(def.EffectValue)))

	case item.EffectEscape:
		if st.IsInCombat() {
			st.Combat.Active = false
			messages = append(messages, "💨 Graceful degradation successful! You've escaped combat!")
		}

	case item.EffectBuff:
		effectType, duration := def.BuffEffect()
		description := ""
		if effectDef, known := s.effects.Get(effectType); known {
			description = effectDef.Description
		}
		h.StatusEffects.Apply(effectType, duration, description)
		messages = append(messages,
			fmt.Sprintf("✨ %s active! (%d turns)", effect.DisplayName(effectType), duration))

	case item.EffectSpecial:
		if def.EffectValue == "fragment" {
			class, _ := s.heroClass(h)
			_, fragmentMsg := progress.AddRecipeFragment(h, class)
			messages = append(messages, fragmentMsg)
		}
	}

	h.Inventory.Remove(def.ID, 1)
	st.Touch()

	return nil, narrateState(strings.Join(messages, "\n"), map[string]any{
		"uptime":      h.Uptime,
		"api_credits": h.APICredits,
	}), nil
}

// handlePickup moves an item from the room floor into the hero's inventory.
func (s *Server) handlePickup(ctx context.Context, req *mcp.CallToolRequest, input PickupInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	room, ok := st.CurrentRoom()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero

	var found *item.ItemDef
	query := strings.ToLower(input.Item)
	for _, id := range room.Items {
		def, known := s.items.Get(id)
		if !known {
			continue
		}
		if strings.Contains(strings.ToLower(def.Name), query) {
			found = def
			break
		}
	}
	if found == nil {
		return nil, fail(msgItemNotFound(input.Item), gameerr.ItemNotFound(input.Item)), nil
	}

	if !h.Inventory.Add(found.ID, 1, s.cfg.Game.MaxInventorySlots) {
		return nil, fail(msgInventoryFull,
			gameerr.InventoryFull(s.cfg.Game.MaxInventorySlots)), nil
	}
	room.RemoveItem(found.ID)
	st.Touch()

	return nil, narrateState(
		fmt.Sprintf("✅ Picked up **%s**! Added to inventory.", found.Name),
		map[string]any{"inventory_count": len(h.Inventory)}), nil
}

// handleEquip moves a held weapon or armor into its equipment slot,
// displacing whatever was there back into narration. Slots hold ids, so the
// displaced item never leaves the inventory.
func (s *Server) handleEquip(ctx context.Context, req *mcp.CallToolRequest, input EquipInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero

	def, ok := inventory.Find(h.Inventory, s.items, input.Item, "")
	if !ok {
		return nil, fail(msgItemNotFound(input.Item), gameerr.ItemNotFound(input.Item)), nil
	}

	var msg string
	switch def.Kind {
	case item.KindWeapon:
		old, hadOld := h.Equipped.Weapon(s.items)
		h.Equipped.WeaponID = def.ID
		msg = fmt.Sprintf("⚔️ Equipped **%s** (%s)!", def.Name, def.DamageDice)
		if hadOld {
			msg += fmt.Sprintf(" (Unequipped %s)", old.Name)
		}

	case item.KindArmor:
		old, hadOld := h.Equipped.Armor(s.items)
		h.Equipped.ArmorID = def.ID
		msg = fmt.Sprintf("🛡️ Equipped **%s** (+%d protection)!", def.Name, def.Protection)
		if hadOld {
			msg += fmt.Sprintf(" (Unequipped %s)", old.Name)
		}

	default:
		return nil, fail("❓ This item cannot be equipped.",
			gameerr.Newf(gameerr.CodeInvalidTarget, "item %q is not equippable", def.Name).
				WithMeta("item", def.Name)), nil
	}
	st.Touch()

	weaponName := any(nil)
	if w, ok := h.Equipped.Weapon(s.items); ok {
		weaponName = w.Name
	}
	armorName := any(nil)
	if a, ok := h.Equipped.Armor(s.items); ok {
		armorName = a.Name
	}
	return nil, narrateState(msg, map[string]any{
		"weapon": weaponName,
		"armor":  armorName,
	}), nil
}
