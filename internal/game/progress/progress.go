// Package progress implements the experience curve, leveling, and the
// smaller accumulators (gold, recipe fragments) of Integration Quest.
// Leveling is driven by the hero's injected class definition; nothing here
// reads global tables.
package progress

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
)

// SkillUnlockInterval is the level cadence of new-skill notices.
const SkillUnlockInterval = 5

// levelUpFlavor lines are picked at random per level gained. "{level}" is
// substituted with the new level; lines without the placeholder are used
// verbatim.
var levelUpFlavor = []string{
	"⬆️ LEVEL UP! Your integration skills grow stronger!",
	"🌟 New certification unlocked! Your hero advances to level {level}!",
	"📈 Experience processed! You've leveled up to {level}!",
	"🎓 Training complete! Welcome to level {level}, Integration Hero!",
}

// XPForLevel returns the experience required to advance to the given level
// from the one below it. The cost is consumed on level-up, so the hero's
// running XP resets toward the next requirement.
//
// Precondition: level >= 1.
// Postcondition: Returns floor(100 * level^1.5); strictly increasing in
// level.
func XPForLevel(level int) int {
	return int(100 * math.Pow(float64(level), 1.5))
}

// AddExperience grants xp to the hero and resolves any level-ups it pays
// for, looping until the remaining XP no longer covers the next level. Each
// level applies the class growth block, recomputes derived maxima, and
// restores uptime and credits to full.
//
// Precondition: h and class must be non-nil; xp >= 0; src must be non-nil.
// Postcondition: Returns whether at least one level was gained, plus the
// narration lines in resolution order.
func AddExperience(h *hero.Hero, class *skill.Class, xp int, src dice.Source) (bool, []string) {
	h.XP += xp
	messages := []string{fmt.Sprintf("📈 Gained %d XP! (Total: %d)", xp, h.XP)}

	leveledUp := false
	for h.XP >= XPForLevel(h.Level+1) {
		h.XP -= XPForLevel(h.Level + 1)
		h.Level++
		leveledUp = true

		messages = append(messages, applyLevelUp(h, class)...)

		flavor := levelUpFlavor[src.Intn(len(levelUpFlavor))]
		messages = append(messages, strings.ReplaceAll(flavor, "{level}", strconv.Itoa(h.Level)))
	}

	return leveledUp, messages
}

// applyLevelUp raises stats per the class growth block, recomputes maxima,
// and heals to full.
func applyLevelUp(h *hero.Hero, class *skill.Class) []string {
	h.Throughput += class.Growth.Throughput
	h.FormulaPower += class.Growth.FormulaPower
	h.RateAgility += class.Growth.RateAgility
	h.ErrorResilience += class.Growth.ErrorResilience

	messages := []string{growthLine(class)}

	oldMaxUptime := h.MaxUptime
	oldMaxCredits := h.MaxAPICredits
	h.MaxUptime = h.DerivedMaxUptime(class)
	h.MaxAPICredits = h.DerivedMaxAPICredits(class)
	h.Uptime = h.MaxUptime
	h.APICredits = h.MaxAPICredits

	messages = append(messages,
		fmt.Sprintf("❤️ Max Uptime: %d → %d (fully restored)", oldMaxUptime, h.MaxUptime),
		fmt.Sprintf("💙 Max API Credits: %d → %d (fully restored)", oldMaxCredits, h.MaxAPICredits),
	)

	if h.Level%SkillUnlockInterval == 0 {
		messages = append(messages, fmt.Sprintf("🌟 New skill unlocked at level %d!", h.Level))
	}

	return messages
}

// growthLine renders the class growth block as a stat line, largest raise
// first: "💪 Throughput +2, Error Resilience +1".
func growthLine(class *skill.Class) string {
	type raise struct {
		name  string
		delta int
		order int
	}
	raises := []raise{
		{"Throughput", class.Growth.Throughput, 0},
		{"Formula Power", class.Growth.FormulaPower, 1},
		{"Rate Agility", class.Growth.RateAgility, 2},
		{"Error Resilience", class.Growth.ErrorResilience, 3},
	}
	kept := raises[:0]
	for _, r := range raises {
		if r.delta != 0 {
			kept = append(kept, r)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool {
		if kept[i].delta != kept[j].delta {
			return kept[i].delta > kept[j].delta
		}
		return kept[i].order < kept[j].order
	})
	parts := make([]string, 0, len(kept))
	for _, r := range kept {
		parts = append(parts, fmt.Sprintf("%s +%d", r.name, r.delta))
	}
	line := strings.Join(parts, ", ")
	if class.Flair != "" {
		return class.Flair + " " + line
	}
	return line
}

// AddGold adds amount to the hero's gold, clamping the balance at zero so a
// negative adjustment can never leave a debt.
//
// Postcondition: h.Gold >= 0.
func AddGold(h *hero.Hero, amount int) {
	h.Gold += amount
	if h.Gold < 0 {
		h.Gold = 0
	}
}

// AddRecipeFragment banks one fragment. Every completed set of three
// permanently raises max uptime and reports the bonus; otherwise the
// message counts down the remainder.
//
// Precondition: h and class must be non-nil.
// Postcondition: Returns whether a bonus was applied, plus the collection
// message.
func AddRecipeFragment(h *hero.Hero, class *skill.Class) (bool, string) {
	h.RecipeFragments++

	if h.RecipeFragments%hero.FragmentSetSize == 0 {
		oldMax := h.MaxUptime
		h.MaxUptime = h.DerivedMaxUptime(class)
		bonus := h.MaxUptime - oldMax
		return true, fmt.Sprintf(
			"✨ Recipe Fragment collected! (%d total)\n🎉 3 fragments combined! Max Uptime +%d (%d → %d)",
			h.RecipeFragments, bonus, oldMax, h.MaxUptime,
		)
	}

	remaining := hero.FragmentSetSize - (h.RecipeFragments % hero.FragmentSetSize)
	return false, fmt.Sprintf(
		"✨ Recipe Fragment collected! (%d total)\nCollect %d more for +%d max Uptime bonus",
		h.RecipeFragments, remaining, hero.FragmentBonus,
	)
}
