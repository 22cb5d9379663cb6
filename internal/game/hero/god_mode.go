package hero

import "github.com/cory-johannsen/integration-quest/internal/game/effect"

// GodModeEffectName is the display name of the diagnostic override flag on
// the hero's status list.
const GodModeEffectName = "God Mode"

// Diagnostic override values applied while god mode is active.
const (
	godModeStat    = 999
	godModePool    = 9999
	godModeGold    = 999999
	godModeLevel   = 99
	godModeXP      = 999999
	godModeEffType = "transformed"
	godModeEffDesc = "Ascended beyond mortal limitations"
)

// SavedStats snapshots the hero's pre-override numbers so disabling god
// mode can restore them exactly.
type SavedStats struct {
	Throughput      int `json:"throughput"`
	FormulaPower    int `json:"formula_power"`
	RateAgility     int `json:"rate_agility"`
	ErrorResilience int `json:"error_resilience"`
	MaxUptime       int `json:"max_uptime"`
	Uptime          int `json:"uptime"`
	MaxAPICredits   int `json:"max_api_credits"`
	APICredits      int `json:"api_credits"`
	Gold            int `json:"gold"`
	Level           int `json:"level"`
	XP              int `json:"xp"`
}

// EnableGodMode snapshots the hero's current numbers, then applies the
// diagnostic overrides and pins the permanent God Mode status flag.
//
// Postcondition: GodModeActive is true and SavedStats is non-nil.
func (h *Hero) EnableGodMode() {
	h.SavedStats = &SavedStats{
		Throughput:      h.Throughput,
		FormulaPower:    h.FormulaPower,
		RateAgility:     h.RateAgility,
		ErrorResilience: h.ErrorResilience,
		MaxUptime:       h.MaxUptime,
		Uptime:          h.Uptime,
		MaxAPICredits:   h.MaxAPICredits,
		APICredits:      h.APICredits,
		Gold:            h.Gold,
		Level:           h.Level,
		XP:              h.XP,
	}

	h.Throughput = godModeStat
	h.FormulaPower = godModeStat
	h.RateAgility = godModeStat
	h.ErrorResilience = godModeStat
	h.MaxUptime = godModePool
	h.Uptime = godModePool
	h.MaxAPICredits = godModePool
	h.APICredits = godModePool
	h.Gold = godModeGold
	h.Level = godModeLevel
	h.XP = godModeXP

	h.StatusEffects.RemoveNamed(GodModeEffectName)
	h.StatusEffects.ApplyNamed(GodModeEffectName, godModeEffType, effect.PermanentDuration, godModeEffDesc)

	h.GodModeActive = true
}

// DisableGodMode restores the snapshot taken by EnableGodMode and clears
// the status flag. Returns false when no snapshot exists to restore; the
// god-mode flag is cleared either way.
//
// Postcondition: GodModeActive is false and SavedStats is nil.
func (h *Hero) DisableGodMode() bool {
	if h.SavedStats == nil {
		h.GodModeActive = false
		return false
	}

	s := h.SavedStats
	h.Throughput = s.Throughput
	h.FormulaPower = s.FormulaPower
	h.RateAgility = s.RateAgility
	h.ErrorResilience = s.ErrorResilience
	h.MaxUptime = s.MaxUptime
	h.Uptime = s.Uptime
	h.MaxAPICredits = s.MaxAPICredits
	h.APICredits = s.APICredits
	h.Gold = s.Gold
	h.Level = s.Level
	h.XP = s.XP

	h.StatusEffects.RemoveNamed(GodModeEffectName)
	h.SavedStats = nil
	h.GodModeActive = false
	return true
}
