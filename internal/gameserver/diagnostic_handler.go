package gameserver

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// diagnosticChecksum is the md5 digest the secret code must hash to.
const diagnosticChecksum = "c79c28c71f0363cc52f32fb29e130222"

// EnterDiagnosticCodeInput carries the code sequence to check.
type EnterDiagnosticCodeInput struct {
	Code string `json:"code" jsonschema:"diagnostic code sequence"`
}

// handleEnterDiagnosticCode checks the code against the diagnostic checksum
// and toggles god mode on a match. Unrecognized codes report a nominal
// system, never an error.
func (s *Server) handleEnterDiagnosticCode(ctx context.Context, req *mcp.CallToolRequest, input EnterDiagnosticCodeInput) (*mcp.CallToolResult, ToolResult, error) {
	st, ok := s.state()
	if !ok {
		return nil, fail(msgNoGame, gameerr.NoActiveSession()), nil
	}
	h := st.Hero

	sum := md5.Sum([]byte(input.Code))
	if hex.EncodeToString(sum[:]) != diagnosticChecksum {
		return nil, narrateState(
			fmt.Sprintf("🔧 Diagnostic code '%s' not recognized. System nominal.", input.Code),
			map[string]any{"diagnostic_complete": true}), nil
	}

	if h.GodModeActive {
		if !h.DisableGodMode() {
			st.Touch()
			return nil, narrateState(
				"⚠️ God mode disabled, but no saved stats found to restore.",
				map[string]any{"god_mode": false}), nil
		}
		st.Touch()

		narrative := fmt.Sprintf(`🌙 **RETURNING TO MORTAL FORM** 🌙

The legendary power fades as %s returns to their natural state...

**GOD MODE DISABLED**

📊 **RESTORED STATS**:
   - Throughput: %d
   - Formula Power: %d
   - Rate Agility: %d
   - Error Resilience: %d

❤️ **Uptime**: %d/%d
💙 **API Credits**: %d/%d
⭐ **Level**: %d
💰 **Gold**: %d

✨ **Status**: Normal (God Mode effect removed)

You are once again bound by mortal limitations. But you are wiser for the experience.
`,
			h.Name,
			h.Throughput, h.FormulaPower, h.RateAgility, h.ErrorResilience,
			h.Uptime, h.MaxUptime, h.APICredits, h.MaxAPICredits,
			h.Level, h.Gold,
		)

		return nil, narrateState(narrative, map[string]any{
			"god_mode":        false,
			"level":           h.Level,
			"uptime":          h.Uptime,
			"max_uptime":      h.MaxUptime,
			"api_credits":     h.APICredits,
			"max_api_credits": h.MaxAPICredits,
		}), nil
	}

	h.EnableGodMode()
	st.Touch()

	narrative := fmt.Sprintf(`⚡ **LEGENDARY POWER ACTIVATED** ⚡

🌟 The ancient Integration Architect's blessing flows through %s!
✨ You feel the power of infinite connections coursing through your circuits!

**GOD MODE ENABLED**

📊 **ASCENDED STATS**:
   - Throughput: %d (MAXIMUM)
   - Formula Power: %d (MAXIMUM)
   - Rate Agility: %d (MAXIMUM)
   - Error Resilience: %d (MAXIMUM)

❤️ **Uptime**: %d/%d
💙 **API Credits**: %d/%d
⭐ **Level**: %d
💰 **Gold**: %d

🔱 **Status**: GOD MODE (Active - use code again to disable)

You are now unstoppable. The dungeon trembles at your presence!
`,
		h.Name,
		h.Throughput, h.FormulaPower, h.RateAgility, h.ErrorResilience,
		h.Uptime, h.MaxUptime, h.APICredits, h.MaxAPICredits,
		h.Level, h.Gold,
	)

	return nil, narrateState(narrative, map[string]any{
		"god_mode":        true,
		"level":           h.Level,
		"uptime":          h.Uptime,
		"max_uptime":      h.MaxUptime,
		"api_credits":     h.APICredits,
		"max_api_credits": h.MaxAPICredits,
	}), nil
}
