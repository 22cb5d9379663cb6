package gameserver

import (
	"github.com/cory-johannsen/integration-quest/internal/game/combat"
	"github.com/cory-johannsen/integration-quest/internal/gameerr"
)

// ToolResult is the uniform reply shape of every tool. Narrative is the
// story text a connected model relays to the player; State is a compact
// machine-readable view for models that want numbers instead of prose.
// Recoverable failures ride in Error with the narrative explaining them
// in-world; the MCP error channel is reserved for transport breakage.
type ToolResult struct {
	Narrative string                   `json:"narrative" jsonschema:"story text describing what happened"`
	State     map[string]any           `json:"state,omitempty" jsonschema:"machine-readable view of the session after the action"`
	Error     *ToolError               `json:"error,omitempty" jsonschema:"structured failure detail when the action could not be taken"`
	CombatLog *combat.HeroAttackResult `json:"combat_log,omitempty" jsonschema:"dice-level breakdown of the hero's attack, when one was resolved"`
}

// ToolError is the in-band form of a recoverable game error.
type ToolError struct {
	Code    gameerr.Code   `json:"code"`
	Message string         `json:"message"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// narrate builds a success reply with no state block.
func narrate(text string) ToolResult {
	return ToolResult{Narrative: text}
}

// narrateState builds a success reply carrying a state block.
func narrateState(text string, state map[string]any) ToolResult {
	return ToolResult{Narrative: text, State: state}
}

// fail builds a failure reply: the in-world narrative the player sees plus
// the structured error a model can branch on.
func fail(narrative string, err error) ToolResult {
	return ToolResult{
		Narrative: narrative,
		Error: &ToolError{
			Code:    gameerr.CodeOf(err),
			Message: gameerr.MessageOf(err),
			Meta:    gameerr.MetaOf(err),
		},
	}
}
