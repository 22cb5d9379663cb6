package enemy

import (
	"fmt"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
)

// Engine-level special abilities, named in templates via special_ability.
const (
	// SpecialSkipTurn freezes the enemy with a 50% chance, costing it the turn.
	SpecialSkipTurn = "skip_turn_50"
	// SpecialDoubleAttack makes the enemy resolve two attacks every turn.
	SpecialDoubleAttack = "double_attack"
	// SpecialRateLimit inflicts the rate_limited status on the hero with a
	// 30% chance.
	SpecialRateLimit = "rate_limited_inflict"
)

// knownSpecials backs template validation.
var knownSpecials = map[string]bool{
	SpecialSkipTurn:     true,
	SpecialDoubleAttack: true,
	SpecialRateLimit:    true,
}

const (
	skipTurnChance   = 0.50
	rateLimitChance  = 0.30
	rateLimitEffect  = "rate_limited"
	rateLimitEffTurn = 2
)

// SpecialKind classifies what a triggered special ability does to the turn.
type SpecialKind int

const (
	// SpecialKindSkip negates the enemy's own turn.
	SpecialKindSkip SpecialKind = iota
	// SpecialKindExtraAttack grants one additional attack resolution.
	SpecialKindExtraAttack
	// SpecialKindInflict applies a status effect to the hero; the basic
	// attack still resolves.
	SpecialKindInflict
)

// Special is a triggered ability outcome for one enemy turn.
type Special struct {
	Kind    SpecialKind
	Message string
	// EffectType and EffectTurns are set only for SpecialKindInflict.
	EffectType  string
	EffectTurns int
}

// RollSpecial checks whether this enemy's special ability triggers this turn.
//
// Precondition: src must be non-nil.
// Postcondition: Returns (nil, false) when the instance has no special
// ability or its chance roll fails; SpecialDoubleAttack always triggers.
func (i *Instance) RollSpecial(src dice.Source) (*Special, bool) {
	switch i.SpecialAbility {
	case SpecialSkipTurn:
		if !dice.Chance(src, skipTurnChance) {
			return nil, false
		}
		return &Special{
			Kind:    SpecialKindSkip,
			Message: fmt.Sprintf("%s is frozen and skips its turn!", i.Name),
		}, true
	case SpecialDoubleAttack:
		return &Special{
			Kind:    SpecialKindExtraAttack,
			Message: fmt.Sprintf("%s attacks twice this turn!", i.Name),
		}, true
	case SpecialRateLimit:
		if !dice.Chance(src, rateLimitChance) {
			return nil, false
		}
		return &Special{
			Kind:        SpecialKindInflict,
			Message:     fmt.Sprintf("%s inflicts Rate Limited status!", i.Name),
			EffectType:  rateLimitEffect,
			EffectTurns: rateLimitEffTurn,
		}, true
	default:
		return nil, false
	}
}
