package gameserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// restEncounterChance is the probability that resting triggers an ambush.
const restEncounterChance = 0.20

// Rest recovers a fraction of each missing pool, not of the maximum, so a
// barely hurt hero gains little and a battered one gains a lot.
const (
	restUptimeRecovery = 0.50
	restCreditRecovery = 0.75
)

// ExploreInput is empty; exploring always reads the current room.
type ExploreInput struct{}

// ExamineInput names the enemy or item to inspect.
type ExamineInput struct {
	Target string `json:"target" jsonschema:"name of the enemy or item to examine"`
}

// MoveInput picks a traversal direction.
type MoveInput struct {
	Direction string `json:"direction" jsonschema:"cardinal direction to move: north, south, east, or west"`
}

// RestInput is empty; resting takes no arguments.
type RestInput struct{}

// directionOrder fixes the rendering order of exits; map iteration order
// would shuffle them between calls.
var directionOrder = []string{dungeon.North, dungeon.South, dungeon.East, dungeon.West}

// handleExplore reveals the current room: description, exits, items, and
// living enemies.
func (s *Server) handleExplore(ctx context.Context, req *mcp.CallToolRequest, input ExploreInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	room, ok := st.CurrentRoom()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	room.IsDiscovered = true

	narrative, state := s.renderRoom(room)
	return nil, narrateState(narrative, state), nil
}

// renderRoom formats one room reveal and its compact state block. Move and
// explore share it: arriving in a room reads exactly like exploring it.
func (s *Server) renderRoom(room *dungeon.Room) (string, map[string]any) {
	var exits []string
	for _, dir := range directionOrder {
		if _, ok := room.Exits[dir]; ok {
			exits = append(exits, strings.ToUpper(dir))
		}
	}

	var itemNames []string
	for _, id := range room.Items {
		if def, ok := s.items.Get(id); ok {
			itemNames = append(itemNames, fmt.Sprintf("%s (%s)", def.Name, def.Tier))
		}
	}
	itemsStr := strings.Join(itemNames, ", ")
	if itemsStr == "" {
		itemsStr = "None"
	}

	var enemyLines []string
	for _, e := range room.AliveEnemies() {
		enemyLines = append(enemyLines, fmt.Sprintf(
			"%s **%s** (%d/%d HP)", e.Emoji, e.Name, e.HP, e.MaxHP))
	}
	enemiesStr := strings.Join(enemyLines, "\n   - ")
	if enemiesStr == "" {
		enemiesStr = "None"
	}

	footer := "✅ Room cleared. You may explore freely."
	if len(enemyLines) > 0 && !room.IsCleared {
		footer = "⚠️ Enemies block your path! You must fight or flee."
	}

	narrative := fmt.Sprintf(`🏛️ **%s**

%s

📍 **Exits**: [%s]
📦 **Items**: %s
👹 **Enemies**:
   - %s

%s
`,
		strings.ToUpper(room.SystemName),
		room.Description,
		strings.Join(exits, ", "),
		itemsStr,
		enemiesStr,
		footer,
	)

	lowerExits := make([]string, 0, len(exits))
	for _, dir := range directionOrder {
		if _, ok := room.Exits[dir]; ok {
			lowerExits = append(lowerExits, dir)
		}
	}
	return narrative, map[string]any{
		"room_type":   room.Type,
		"has_enemies": len(enemyLines) > 0,
		"has_items":   len(room.Items) > 0,
		"exits":       lowerExits,
	}
}

// handleExamine inspects an enemy or a room item by name. Examining an
// enemy clears its immunity gate and reveals its weakness.
func (s *Server) handleExamine(ctx context.Context, req *mcp.CallToolRequest, input ExamineInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	room, ok := st.CurrentRoom()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}

	if e, ok := room.FindEnemy(input.Target); ok {
		wasGated := e.IsImmune()
		weakness := e.MarkExamined()

		lines := []string{
			fmt.Sprintf("🔍 **%s**", strings.ToUpper(e.Name)),
			"",
			e.Description,
			"",
			fmt.Sprintf("**HP**: %d/%d", e.HP, e.MaxHP),
			fmt.Sprintf("**Damage**: %s", e.DamageDice),
			fmt.Sprintf("**Armor**: %d", e.Armor),
		}
		if weakness != "" {
			lines = append(lines, fmt.Sprintf("**Weakness**: %s", weakness))
		} else {
			lines = append(lines, "No known weakness")
		}
		if e.Resistance != "" {
			lines = append(lines, fmt.Sprintf("**Resistance**: %s", e.Resistance))
		}
		if e.SpecialAbility != "" {
			lines = append(lines, fmt.Sprintf("**Special**: %s", e.SpecialAbility))
		}
		lines = append(lines,
			"",
			fmt.Sprintf("**XP Reward**: %d", e.XPReward),
			fmt.Sprintf("**Gold Reward**: %d", e.GoldReward),
		)
		if wasGated {
			lines = append(lines, "", "💡 This enemy was IMMUNE until examined! You can now damage it.")
		}

		return nil, narrateState(strings.Join(lines, "\n"), map[string]any{
			"examined":     input.Target,
			"enemy_hp":     e.HP,
			"enemy_max_hp": e.MaxHP,
		}), nil
	}

	query := strings.ToLower(input.Target)
	for _, id := range room.Items {
		def, ok := s.items.Get(id)
		if !ok || !strings.Contains(strings.ToLower(def.Name), query) {
			continue
		}
		narrative := fmt.Sprintf(`🔍 **%s**

%s

**Tier**: %s
**Type**: %s

Use 'pickup' to add this to your inventory.
`, def.Name, def.Description, def.Tier, def.Kind)
		return nil, narrate(narrative), nil
	}

	return nil, fail(msgInvalidTarget(input.Target), gameerr.InvalidTarget(input.Target)), nil
}

// handleMove walks one exit. Traversing a to-be-generated exit extends the
// dungeon by a level first; arrival auto-explores the destination.
func (s *Server) handleMove(ctx context.Context, req *mcp.CallToolRequest, input MoveInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	room, ok := st.CurrentRoom()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}

	if st.IsInCombat() {
		return nil, fail("⚔️ You cannot move while in combat! Use 'flee' to escape.",
			gameerr.InCombat("move")), nil
	}

	direction := strings.ToLower(input.Direction)
	nextID, ok := room.Exits[direction]
	if !ok {
		return nil, fail(msgInvalidDirection(direction), gameerr.InvalidDirection(direction)), nil
	}

	if room.HasAliveEnemies() && !room.IsCleared {
		return nil, fail("⚠️ Enemies block your path! Defeat them first or use 'flee' to escape.",
			gameerr.Blocked()), nil
	}

	if _, exists := st.DungeonMap.Get(nextID); nextID == dungeon.GeneratedExit || !exists {
		newDepth := st.Depth + 1
		entryID, err := st.ExtendLevel(s.generator.GenerateLevel(newDepth), newDepth)
		if err != nil {
			return nil, fail(msgNoGame, gameerr.Wrap(err, "generating level")), nil
		}
		room.Exits[direction] = entryID
		nextID = entryID
	}

	if err := st.EnterRoom(nextID); err != nil {
		return nil, fail(msgNoGame, gameerr.Wrap(err, "entering room")), nil
	}

	dest, _ := st.CurrentRoom()
	dest.IsDiscovered = true
	narrative, state := s.renderRoom(dest)
	return nil, narrateState(narrative, state), nil
}

// handleRest recovers half the missing uptime and three quarters of the
// missing credits, then rolls the ambush check.
func (s *Server) handleRest(ctx context.Context, req *mcp.CallToolRequest, input RestInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	if st.IsInCombat() {
		return nil, fail("⚔️ You cannot rest during combat!", gameerr.InCombat("rest")), nil
	}

	h := st.Hero
	src := s.roller.Source()

	uptimeGain := h.Heal(int(float64(h.MaxUptime-h.Uptime) * restUptimeRecovery))
	creditGain := h.RestoreCredits(int(float64(h.MaxAPICredits-h.APICredits) * restCreditRecovery))

	messages := []string{
		"😴 You rest and recover...",
		fmt.Sprintf("❤️ Uptime restored: +%d (%d/%d)", uptimeGain, h.Uptime, h.MaxUptime),
		fmt.Sprintf("💙 API Credits restored: +%d (%d/%d)", creditGain, h.APICredits, h.MaxAPICredits),
	}

	if dice.Chance(src, restEncounterChance) {
		messages = append(messages, "\n⚠️ **AMBUSH!** A random encounter interrupts your rest!")

		room, ok := st.CurrentRoom()
		if ok {
			ambushers := s.generator.GenerateEnemies(st.Depth)
			room.Enemies = append(room.Enemies, ambushers...)
			room.IsCleared = false
			messages = append(messages, fmt.Sprintf("👹 %s appears!", ambushers[0].Name))
		}
	}

	st.Touch()
	return nil, narrateState(strings.Join(messages, "\n"), map[string]any{
		"uptime":      h.Uptime,
		"api_credits": h.APICredits,
	}), nil
}
