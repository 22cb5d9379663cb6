package gameserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
)

// In-character failure narration. The structured error code rides alongside
// these in the reply; the text is what the player reads.
const (
	msgNoGame              = "🚫 No active integration detected. Use create_character to initialize a new hero."
	msgNotInCombat         = "😌 No active incidents. The system is peaceful... for now."
	msgInventoryFull       = "📦 Inventory buffer overflow! Drop something before picking up more."
	msgInsufficientCredits = "💳 Insufficient API Credits! Rest or use a refill potion."
	msgMultiplayerDisabled = "❌ This feature requires multiplayer mode. Set game.multiplayer to true to enable."
	msgSavesDisabled       = "❌ Save storage is not configured on this server. Checkpoints are disabled."
)

func msgInvalidTarget(target string) string {
	return fmt.Sprintf("❓ Target '%s' not found in current scope. Check your room's contents.", target)
}

func msgInvalidDirection(direction string) string {
	return fmt.Sprintf("🧱 Cannot move %s. No endpoint exists in that direction.", direction)
}

func msgItemNotFound(item string) string {
	return fmt.Sprintf("🔍 '%s' not found in inventory. Check your loadout.", item)
}

// victoryMessages is the pool of closing lines appended when the last enemy
// of an encounter falls.
var victoryMessages = []string{
	"✅ The bug is squashed! Your recipe runs green.",
	"🔗 Integration successful! Data flows freely once more.",
	"📡 The rate limiter falls! '200 OK' echoes through the dungeon.",
	"⚡ You've connected the disconnected. The workflow is complete.",
	"🏆 The legacy system acknowledges your authority. COBOL bows before you.",
	"🎉 Job completed successfully! 0 errors, 0 warnings.",
	"💾 The API responds with valid JSON. You've won... this time.",
}

// gameOverMessages is the pool of closing lines appended when the hero's
// uptime hits zero.
var gameOverMessages = []string{
	"💀 SYSTEM DOWN. Your integration has crashed. Jobs pile up eternally...",
	"❌ Error 500: Internal Hero Failure. Support tickets multiply in your absence.",
	"⏱️ Connection timeout. Your adventure has... timed out.",
	"🏚️ The Monolith consumes you. You become part of the legacy code. Forever.",
	"📉 Uptime: 0%. SLA breached. The on-call engineer is summoned... but it's too late.",
	"🔄 Infinite loop detected. Your consciousness spins forever in the void.",
}

// pick draws one line from a message pool.
func pick(pool []string, src dice.Source) string {
	return pool[src.Intn(len(pool))]
}

// titleCase capitalizes the first letter of each space-separated word.
// Room types and class ids are lowercase tags; display wants "Boss" and
// "Circuit Breaker".
func titleCase(s string) string {
	words := strings.Split(s, " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// commas formats n with thousands separators: 1234567 renders "1,234,567".
func commas(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
