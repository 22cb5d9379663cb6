package gameserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
	"github.com/cory-johannsen/integration-quest/internal/game/inventory"
	"github.com/cory-johannsen/integration-quest/internal/game/progress"
	"github.com/cory-johannsen/integration-quest/internal/game/session"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// CreateCharacterInput names the new hero and picks a class.
type CreateCharacterInput struct {
	Name  string `json:"name" jsonschema:"your hero's name"`
	Class string `json:"class" jsonschema:"character class: warrior, mage, rogue, or cleric"`
}

// ViewStatusInput is empty; the character sheet takes no arguments.
type ViewStatusInput struct{}

// handleCreateCharacter starts a fresh adventure: a level-1 hero with the
// starting kit, the entrance hub, and the first dungeon level generated
// eagerly so the hub's north exit already leads somewhere. Any previous
// adventure in the session is replaced wholesale.
func (s *Server) handleCreateCharacter(ctx context.Context, req *mcp.CallToolRequest, input CreateCharacterInput) (*mcp.CallToolResult, ToolResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		err := gameerr.New(gameerr.CodeInvalidTarget, "a hero needs a name")
		return nil, fail("❓ Every Integration Hero needs a name. Try again with one.", err), nil
	}

	class, ok := s.classes.Class(strings.ToLower(input.Class))
	if !ok {
		ids := make([]string, 0, len(s.classes.Classes()))
		for _, c := range s.classes.Classes() {
			ids = append(ids, c.ID)
		}
		err := gameerr.InvalidTarget(input.Class).WithMeta("classes", ids)
		return nil, fail(fmt.Sprintf(
			"❓ Unknown class '%s'. Choose one of: %s.", input.Class, strings.Join(ids, ", ")), err), nil
	}

	h, err := hero.New(name, class, s.gear, s.items, s.cfg.Game.MaxInventorySlots)
	if err != nil {
		return nil, fail(msgNoGame, gameerr.Wrap(err, "creating hero")), nil
	}

	entrance := s.generator.StartingRoom()
	st := session.NewGameState(h, entrance)
	entryID, err := st.ExtendLevel(s.generator.GenerateLevel(1), 1)
	if err != nil {
		return nil, fail(msgNoGame, gameerr.Wrap(err, "generating first level")), nil
	}
	entrance.Exits[dungeon.North] = entryID

	s.sessions.PutState(session.DefaultKey, st)
	s.logger.Info("character created",
		zap.String("hero", h.Name),
		zap.String("class", class.ID),
	)

	weapon, _ := h.Equipped.Weapon(s.items)
	armor, _ := h.Equipped.Armor(s.items)
	narrative := fmt.Sprintf(`📜 **%s the %s** awakens in the Integration Dungeon...

You clutch your %s—a humble starting connector, but it will grow.
Somewhere deep below, legacy systems await connection. The air smells of stale JSON and
broken promises.

🎭 **Role**: %s (%s)
📊 **Stats**:
   - Uptime: %d/%d
   - API Credits: %d/%d
   - Throughput (STR): %d
   - Formula Power (INT): %d
   - Rate Agility (DEX): %d
   - Error Resilience (CON): %d

⚔️ **Equipped**: %s (%s) | %s (+%d)
🎒 **Inventory**: %s

💡 Use 'explore' to examine your surroundings, or 'view_status' to see your full character sheet.
`,
		h.Name, class.Name,
		weapon.Name,
		class.Name, titleCase(class.ID),
		h.Uptime, h.MaxUptime,
		h.APICredits, h.MaxAPICredits,
		h.Throughput, h.FormulaPower, h.RateAgility, h.ErrorResilience,
		weapon.Name, weapon.DamageDice, armor.Name, armor.Protection,
		s.inventoryLine(h),
	)

	if s.cfg.Game.Multiplayer {
		if _, ok := s.authenticated(); !ok {
			narrative += "\n⚠️ **You're not logged in!** Your score won't be saved to the leaderboard.\n" +
				"Use `register_player()` or `login()` to compete on the leaderboard."
		}
	}

	return nil, narrateState(narrative, map[string]any{
		"hero_name":   h.Name,
		"role":        h.Role,
		"level":       h.Level,
		"uptime":      fmt.Sprintf("%d/%d", h.Uptime, h.MaxUptime),
		"api_credits": fmt.Sprintf("%d/%d", h.APICredits, h.MaxAPICredits),
	}), nil
}

// handleViewStatus renders the full character sheet.
func (s *Server) handleViewStatus(ctx context.Context, req *mcp.CallToolRequest, input ViewStatusInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero
	room, _ := st.CurrentRoom()

	weaponName, weaponDice := "None", "N/A"
	if weapon, ok := h.Equipped.Weapon(s.items); ok {
		weaponName, weaponDice = weapon.Name, weapon.DamageDice
	}
	armorName, armorProt := "None", 0
	if armor, ok := h.Equipped.Armor(s.items); ok {
		armorName, armorProt = armor.Name, armor.Protection
	}

	inventoryStr := s.inventoryLines(h, "\n   - ")
	if inventoryStr == "" {
		inventoryStr = "Empty"
	}

	var skillLines []string
	for _, id := range h.Skills {
		if def, ok := s.classes.Skill(id); ok {
			skillLines = append(skillLines, fmt.Sprintf(
				"%s (%d credits): %s", def.Name, def.Cost, def.Description))
		}
	}
	skillsStr := strings.Join(skillLines, "\n   - ")
	if skillsStr == "" {
		skillsStr = "Basic Attack only"
	}

	narrative := fmt.Sprintf(`📊 **%s the %s** - Level %d

❤️ **Uptime**: %d/%d
💙 **API Credits**: %d/%d
⭐ **XP**: %d/%d to next level
💰 **Gold**: %d

📈 **Stats**:
   - Throughput (STR): %d
   - Formula Power (INT): %d
   - Rate Agility (DEX): %d
   - Error Resilience (CON): %d
   - Armor: %d

⚔️ **Equipment**:
   - Weapon: %s (%s)
   - Armor: %s (+%d)

🎒 **Inventory** (%d/%d):
   - %s

⚡ **Skills**:
   - %s

✨ **Status Effects**: %s
🧩 **Recipe Fragments**: %d (collect 3 for +5 max Uptime)

📍 **Location**: Depth %d - %s
`,
		h.Name, titleCase(h.Role), h.Level,
		h.Uptime, h.MaxUptime,
		h.APICredits, h.MaxAPICredits,
		h.XP, progress.XPForLevel(h.Level+1),
		h.Gold,
		h.Throughput, h.FormulaPower, h.RateAgility, h.ErrorResilience,
		h.ArmorValue(s.items, s.effects),
		weaponName, weaponDice,
		armorName, armorProt,
		len(h.Inventory), s.cfg.Game.MaxInventorySlots, inventoryStr,
		skillsStr,
		h.StatusEffects.Format(),
		h.RecipeFragments,
		st.Depth, room.SystemName,
	)
	if st.IsInCombat() {
		narrative += "⚔️ **IN COMBAT**\n"
	}

	return nil, narrateState(narrative, map[string]any{
		"level":       h.Level,
		"uptime":      h.Uptime,
		"max_uptime":  h.MaxUptime,
		"api_credits": h.APICredits,
		"in_combat":   st.IsInCombat(),
	}), nil
}

// inventoryLine renders the inventory as a single comma-joined line.
func (s *Server) inventoryLine(h *hero.Hero) string {
	line := s.inventoryLines(h, ", ")
	if line == "" {
		return "Empty"
	}
	return line
}

// inventoryLines renders each inventory slot as "Name" or "Name xN", joined
// by sep. Returns "" for an empty inventory.
func (s *Server) inventoryLines(h *hero.Hero, sep string) string {
	defs, counts := inventory.Resolve(h.Inventory, s.items)
	parts := make([]string, 0, len(defs))
	for i, def := range defs {
		if counts[i] > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", def.Name, counts[i]))
		} else {
			parts = append(parts, def.Name)
		}
	}
	return strings.Join(parts, sep)
}
