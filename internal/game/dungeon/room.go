// Package dungeon provides the procedural dungeon: room typing and flavor,
// depth-scaled enemy and loot population, linear level generation, and the
// persistent room map.
package dungeon

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
)

// Room type constants. Boss is forced by depth, never drawn from the weight
// table.
const (
	RoomCorridor = "corridor"
	RoomChamber  = "chamber"
	RoomTreasure = "treasure"
	RoomTrap     = "trap"
	RoomBoss     = "boss"
)

// The four traversal directions.
const (
	North = "north"
	South = "south"
	East  = "east"
	West  = "west"
)

// GeneratedExit marks an exit whose destination level does not exist yet.
// Traversal resolves it lazily: a new level is generated and the exit is
// rewired to its entry room.
const GeneratedExit = "generated"

// ValidDirection reports whether dir is one of the four traversal directions.
func ValidDirection(dir string) bool {
	return dir == North || dir == South || dir == East || dir == West
}

// Room is a node in the dungeon graph. It is the persisted form: the session
// snapshot serializes the map's rooms as-is. Items holds item definition IDs;
// duplicates are legal. Enemy instances stay listed after defeat as markers.
type Room struct {
	ID           string            `json:"id"`
	Type         string            `json:"room_type"`
	SystemName   string            `json:"system_name"`
	Description  string            `json:"description"`
	Exits        map[string]string `json:"exits"`
	Items        []string          `json:"items"`
	Enemies      []*enemy.Instance `json:"enemies"`
	IsCleared    bool              `json:"is_cleared"`
	IsDiscovered bool              `json:"is_discovered"`
	Depth        int               `json:"depth"`
}

// AliveEnemies returns the room's living enemies in list order.
func (r *Room) AliveEnemies() []*enemy.Instance {
	var alive []*enemy.Instance
	for _, e := range r.Enemies {
		if e.IsAlive() {
			alive = append(alive, e)
		}
	}
	return alive
}

// HasAliveEnemies reports whether any enemy in the room is still alive.
func (r *Room) HasAliveEnemies() bool {
	for _, e := range r.Enemies {
		if e.IsAlive() {
			return true
		}
	}
	return false
}

// FindEnemy returns the first living enemy whose name contains query
// case-insensitively, or (nil, false) if none matches.
func (r *Room) FindEnemy(query string) (*enemy.Instance, bool) {
	q := strings.ToLower(query)
	for _, e := range r.Enemies {
		if e.IsAlive() && strings.Contains(strings.ToLower(e.Name), q) {
			return e, true
		}
	}
	return nil, false
}

// EnemyByID returns the enemy instance with the given ID regardless of
// health, or (nil, false) if absent.
func (r *Room) EnemyByID(id string) (*enemy.Instance, bool) {
	for _, e := range r.Enemies {
		if e.ID == id {
			return e, true
		}
	}
	return nil, false
}

// RemoveItem deletes the first occurrence of itemID from the room's item
// list. Returns true if an item was removed.
func (r *Room) RemoveItem(itemID string) bool {
	for i, id := range r.Items {
		if id == itemID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Map is the persistent dungeon graph, keyed by room ID. Rooms are never
// deleted; the map only grows as levels generate.
type Map map[string]*Room

// NewMap creates an empty dungeon map.
func NewMap() Map {
	return make(Map)
}

// Add inserts a room into the map.
//
// Precondition: r must not be nil and must carry a non-empty ID.
// Postcondition: Returns an error on a duplicate room ID; the map is
// unchanged on error.
func (m Map) Add(r *Room) error {
	if r == nil || r.ID == "" {
		return fmt.Errorf("dungeon map: room must carry an ID")
	}
	if _, exists := m[r.ID]; exists {
		return fmt.Errorf("dungeon map: duplicate room ID %q", r.ID)
	}
	m[r.ID] = r
	return nil
}

// AddLevel inserts every room of a generated level.
//
// Postcondition: Returns an error on the first duplicate ID; earlier rooms
// of the level remain inserted.
func (m Map) AddLevel(rooms []*Room) error {
	for _, r := range rooms {
		if err := m.Add(r); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the room with the given ID, or (nil, false) if absent.
func (m Map) Get(id string) (*Room, bool) {
	r, ok := m[id]
	return r, ok
}
