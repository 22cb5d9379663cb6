// Package combat implements the turn-based encounter engine: multi-enemy
// state tracking, hero and enemy attack resolution, defensive stances, flee
// checks, and enemy special abilities. All randomness flows through an
// injected dice.Source; all state is passed explicitly and serializes with
// the session snapshot.
package combat

import (
	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
)

// HeroSlot is the turn-order entry reserved for the hero. Every other entry
// is an enemy instance ID.
const HeroSlot = "hero"

// State is the live record of one encounter. Enemies are referenced by
// instance ID so the state survives a save/load round trip without detaching
// from the room's enemy list. JSON tags define the persisted shape.
type State struct {
	// Active is false once the encounter has been escaped or resolved.
	Active bool `json:"active"`
	// TurnOrder is the shuffled slot sequence: HeroSlot plus one enemy
	// instance ID per participant.
	TurnOrder []string `json:"turn_order"`
	// CurrentTurnIndex points at the slot whose turn is next.
	CurrentTurnIndex int `json:"current_turn_index"`
	// RoundNum starts at 1 and increments when the turn pointer wraps.
	RoundNum int `json:"round_num"`
	// HeroDefending discounts incoming damage until the stance resets.
	HeroDefending bool `json:"hero_defending"`
	// EnemiesDefeated counts kills scored during this encounter.
	EnemiesDefeated int `json:"enemies_defeated"`
}

// NewState starts an encounter against the given enemies. The turn order
// holds the hero slot and one slot per enemy, shuffled; the pointer starts
// at 0 and the round counter at 1.
//
// Precondition: src must be non-nil; enemies should be the room's living
// enemies at the moment combat begins.
// Postcondition: len(TurnOrder) == len(enemies)+1; Active is true.
func NewState(enemies []*enemy.Instance, src dice.Source) *State {
	order := make([]string, 0, len(enemies)+1)
	order = append(order, HeroSlot)
	for _, e := range enemies {
		order = append(order, e.ID)
	}
	shuffle(order, src)
	return &State{
		Active:           true,
		TurnOrder:        order,
		CurrentTurnIndex: 0,
		RoundNum:         1,
	}
}

// shuffle permutes slots in place using a Fisher-Yates walk over src.
func shuffle(slots []string, src dice.Source) {
	for i := len(slots) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		slots[i], slots[j] = slots[j], slots[i]
	}
}

// CurrentSlot returns the turn-order entry under the pointer.
//
// Precondition: TurnOrder must be non-empty.
func (s *State) CurrentSlot() string {
	return s.TurnOrder[s.CurrentTurnIndex]
}

// AdvanceTurn moves the pointer to the next slot, wrapping to the start and
// incrementing the round counter when the sequence is exhausted.
//
// Postcondition: CurrentTurnIndex < len(TurnOrder).
func (s *State) AdvanceTurn() {
	s.CurrentTurnIndex++
	if s.CurrentTurnIndex >= len(s.TurnOrder) {
		s.CurrentTurnIndex = 0
		s.RoundNum++
	}
}

// Participates reports whether the enemy instance ID holds a slot in this
// encounter's turn order.
func (s *State) Participates(id string) bool {
	for _, slot := range s.TurnOrder {
		if slot == id {
			return true
		}
	}
	return false
}

// Participants filters the room's enemy list down to this encounter's
// members, in room-list order. Defeated participants are included: victory
// accounting needs their rewards.
func (s *State) Participants(enemies []*enemy.Instance) []*enemy.Instance {
	var members []*enemy.Instance
	for _, e := range enemies {
		if s.Participates(e.ID) {
			members = append(members, e)
		}
	}
	return members
}

// IsOver reports whether the encounter has ended: the active flag was
// cleared (flee or escape) or no participating enemy is still alive.
func (s *State) IsOver(enemies []*enemy.Instance) bool {
	if !s.Active {
		return true
	}
	for _, e := range enemies {
		if e.IsAlive() && s.Participates(e.ID) {
			return false
		}
	}
	return true
}

// VictoryRewards totals the experience and gold of every participating
// enemy and counts the ones defeated. Called once when the last participant
// falls; enemies left over from earlier encounters in the same room are
// excluded.
func (s *State) VictoryRewards(enemies []*enemy.Instance) (xp, gold, defeated int) {
	for _, e := range s.Participants(enemies) {
		xp += e.XPReward
		gold += e.GoldReward
		if !e.IsAlive() {
			defeated++
		}
	}
	return xp, gold, defeated
}
