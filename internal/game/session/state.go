// Package session holds the per-player adventure aggregate and the
// registry that maps session keys to live states. Engine packages never
// reach into the registry; every operation receives its state explicitly.
package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cory-johannsen/integration-quest/internal/game/combat"
	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/game/hero"
)

// GameState is the top-level aggregate for one adventure: the hero, the
// dungeon graph generated so far, the hero's position in it, and the
// active encounter if any. It owns the hero and the map exclusively;
// rooms are referenced by ID. The JSON form is the save snapshot and
// must round-trip losslessly.
//
// A GameState is owned by the sequence of actions issued by its session
// and carries no internal locking.
type GameState struct {
	// Hero is the player character.
	Hero *hero.Hero `json:"hero"`
	// CurrentRoomID locates the hero in the dungeon map.
	CurrentRoomID string `json:"current_room_id"`
	// DungeonMap is every room generated so far, keyed by room ID.
	DungeonMap dungeon.Map `json:"dungeon_map"`
	// Combat is the active encounter, or nil outside combat.
	Combat *combat.State `json:"combat,omitempty"`
	// Depth is the dungeon level of the newest generated rooms the hero
	// has entered. Backtracking does not lower it.
	Depth int `json:"depth"`
	// MaxDepthReached is the deepest level generated this run.
	MaxDepthReached int `json:"max_depth_reached"`
	// TurnCount is the number of successful moves taken.
	TurnCount int `json:"turn_count"`
	// Flags carries free-form progression markers.
	Flags map[string]any `json:"flags,omitempty"`
	// SaveID identifies the snapshot this state was loaded from, empty
	// for a fresh run.
	SaveID string `json:"save_id,omitempty"`
	// CreatedAt is when the adventure started.
	CreatedAt time.Time `json:"created_at"`
	// LastUpdated is stamped by Touch on every mutating action.
	LastUpdated time.Time `json:"last_updated"`
}

// NewGameState starts a fresh adventure with the hero standing in the
// given entrance room at depth 1.
//
// Precondition: h and entrance must be non-nil; entrance must carry an ID.
// Postcondition: The map contains exactly the entrance room, the hero
// stands in it, and both timestamps are set.
func NewGameState(h *hero.Hero, entrance *dungeon.Room) *GameState {
	now := time.Now().UTC()
	m := dungeon.NewMap()
	m[entrance.ID] = entrance
	return &GameState{
		Hero:            h,
		CurrentRoomID:   entrance.ID,
		DungeonMap:      m,
		Depth:           1,
		MaxDepthReached: 1,
		CreatedAt:       now,
		LastUpdated:     now,
	}
}

// CurrentRoom returns the room the hero occupies, or (nil, false) if
// the current room ID does not resolve.
func (s *GameState) CurrentRoom() (*dungeon.Room, bool) {
	return s.DungeonMap.Get(s.CurrentRoomID)
}

// IsInCombat reports whether an encounter is live. A non-nil Combat
// with the active flag lowered (after a successful flee) does not count.
func (s *GameState) IsInCombat() bool {
	return s.Combat != nil && s.Combat.Active
}

// Touch stamps LastUpdated. Handlers call it after every state change.
func (s *GameState) Touch() {
	s.LastUpdated = time.Now().UTC()
}

// EnterRoom relocates the hero and counts the move.
//
// Precondition: roomID must exist in the map.
// Postcondition: CurrentRoomID points at the room, TurnCount has grown
// by one, and LastUpdated is stamped; the state is unchanged on error.
func (s *GameState) EnterRoom(roomID string) error {
	if _, ok := s.DungeonMap.Get(roomID); !ok {
		return fmt.Errorf("session: room %q is not on the map", roomID)
	}
	s.CurrentRoomID = roomID
	s.TurnCount++
	s.Touch()
	return nil
}

// ExtendLevel merges a freshly generated level into the map and records
// the new depth.
//
// Precondition: rooms must be a non-empty level in traversal order.
// Postcondition: Depth equals newDepth, MaxDepthReached covers it, and
// the level's entry room ID is returned for exit rewiring.
func (s *GameState) ExtendLevel(rooms []*dungeon.Room, newDepth int) (string, error) {
	if len(rooms) == 0 {
		return "", fmt.Errorf("session: cannot extend the map with an empty level")
	}
	if err := s.DungeonMap.AddLevel(rooms); err != nil {
		return "", err
	}
	s.Depth = newDepth
	if newDepth > s.MaxDepthReached {
		s.MaxDepthReached = newDepth
	}
	return rooms[0].ID, nil
}

// EncodeSnapshot serializes the full state graph for the persistence
// layer.
func (s *GameState) EncodeSnapshot() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("session: encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores a state from a stored snapshot. Unparseable
// or structurally broken snapshots come back as errors so the caller
// can report a load failure instead of crashing mid-adventure.
//
// Postcondition: The returned state has a hero and a current room that
// resolves on the map.
func DecodeSnapshot(data []byte) (*GameState, error) {
	var s GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("session: decode snapshot: %w", err)
	}
	if s.Hero == nil {
		return nil, fmt.Errorf("session: snapshot has no hero")
	}
	if len(s.DungeonMap) == 0 {
		return nil, fmt.Errorf("session: snapshot has no dungeon map")
	}
	if _, ok := s.DungeonMap.Get(s.CurrentRoomID); !ok {
		return nil, fmt.Errorf("session: snapshot's current room %q is not on the map", s.CurrentRoomID)
	}
	return &s, nil
}
