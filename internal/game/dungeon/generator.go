package dungeon

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
)

// DefaultRoomsPerLevel is the length of a generated level's linear chain.
const DefaultRoomsPerLevel = 4

// BossDepthInterval forces a boss level at every multiple of this depth.
const BossDepthInterval = 5

// Loot and encounter bounds per room type.
const (
	corridorLootMax = 2
	treasureLootMin = 2
	treasureLootMax = 4
)

// WeightTable is the room-type distribution for non-boss depths. Weights
// must be non-negative and sum to 1.
type WeightTable struct {
	Corridor float64
	Chamber  float64
	Treasure float64
	Trap     float64
}

// DefaultWeights returns the standard room-type distribution.
func DefaultWeights() WeightTable {
	return WeightTable{Corridor: 0.40, Chamber: 0.30, Treasure: 0.15, Trap: 0.15}
}

// Validate checks the table for a proper distribution.
func (w WeightTable) Validate() error {
	for _, v := range []float64{w.Corridor, w.Chamber, w.Treasure, w.Trap} {
		if v < 0 {
			return fmt.Errorf("room weights: negative weight %v", v)
		}
	}
	sum := w.Corridor + w.Chamber + w.Treasure + w.Trap
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("room weights: must sum to 1, got %v", sum)
	}
	return nil
}

// isZero reports whether the table is entirely unset.
func (w WeightTable) isZero() bool {
	return w.Corridor == 0 && w.Chamber == 0 && w.Treasure == 0 && w.Trap == 0
}

// Config tunes the generator. The zero value yields the defaults.
type Config struct {
	// RoomsPerLevel is the number of rooms chained per level; <= 0 uses
	// DefaultRoomsPerLevel.
	RoomsPerLevel int
	// Weights is the room-type distribution; the zero value uses
	// DefaultWeights.
	Weights WeightTable
}

// Generator builds rooms, levels, enemies, and loot from the injected
// template registries. It holds no game state of its own; all randomness
// flows through the injected source.
type Generator struct {
	enemies *enemy.Registry
	items   *item.Registry
	flavors Flavors
	src     dice.Source

	roomsPerLevel int
	weights       WeightTable
}

// NewGenerator creates a Generator over the given template tables.
//
// Precondition: all registries and src must be non-nil; flavors must cover
// every room type (LoadFlavors guarantees this); the enemy registry must
// populate every tier.
// Postcondition: Returns a ready Generator, or an error naming the first
// missing dependency.
func NewGenerator(enemies *enemy.Registry, items *item.Registry, flavors Flavors, src dice.Source, cfg Config) (*Generator, error) {
	if enemies == nil {
		return nil, fmt.Errorf("generator: enemy registry must not be nil")
	}
	if items == nil {
		return nil, fmt.Errorf("generator: item registry must not be nil")
	}
	if len(flavors) == 0 {
		return nil, fmt.Errorf("generator: room flavors must not be empty")
	}
	if src == nil {
		return nil, fmt.Errorf("generator: random source must not be nil")
	}
	for _, tier := range []string{enemy.TierCommon, enemy.TierUncommon, enemy.TierRare, enemy.TierBoss} {
		if len(enemies.ByTier(tier)) == 0 {
			return nil, fmt.Errorf("generator: enemy tier %q has no templates", tier)
		}
	}

	roomsPerLevel := cfg.RoomsPerLevel
	if roomsPerLevel <= 0 {
		roomsPerLevel = DefaultRoomsPerLevel
	}
	weights := cfg.Weights
	if weights.isZero() {
		weights = DefaultWeights()
	}
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	return &Generator{
		enemies:       enemies,
		items:         items,
		flavors:       flavors,
		src:           src,
		roomsPerLevel: roomsPerLevel,
		weights:       weights,
	}, nil
}

// rollRoomType draws a room type from the weight table.
func (g *Generator) rollRoomType() string {
	r := g.src.Float64()
	switch {
	case r < g.weights.Corridor:
		return RoomCorridor
	case r < g.weights.Corridor+g.weights.Chamber:
		return RoomChamber
	case r < g.weights.Corridor+g.weights.Chamber+g.weights.Treasure:
		return RoomTreasure
	default:
		return RoomTrap
	}
}

// GenerateRoom builds one room at the given depth. An empty roomType rolls
// the type from the weight table, except that boss depths always force a
// boss room.
//
// Precondition: depth must be >= 1.
// Postcondition: The room carries a fresh unique ID; rooms without living
// enemies start cleared.
func (g *Generator) GenerateRoom(depth int, roomType string) *Room {
	if roomType == "" {
		if depth%BossDepthInterval == 0 {
			roomType = RoomBoss
		} else {
			roomType = g.rollRoomType()
		}
	}

	systemName, description := g.flavors.Pick(roomType, g.src)
	room := &Room{
		ID:          uuid.NewString(),
		Type:        roomType,
		SystemName:  systemName,
		Description: description,
		Exits:       make(map[string]string),
		Depth:       depth,
	}

	switch roomType {
	case RoomCorridor, RoomChamber:
		room.Enemies = g.GenerateEnemies(depth)
		room.Items = g.GenerateLoot(item.TierCommon, dice.Between(g.src, 0, corridorLootMax))
	case RoomTreasure:
		room.Items = g.GenerateLoot(item.TierUncommon, dice.Between(g.src, treasureLootMin, treasureLootMax))
	case RoomTrap:
		room.Enemies = g.GenerateEnemies(depth)
	case RoomBoss:
		room.Enemies = []*enemy.Instance{g.bossForDepth(depth)}
	}

	room.IsCleared = !room.HasAliveEnemies()
	return room
}

// GenerateEnemies spawns a depth-appropriate enemy group: common ×1–2 through
// depth 3, uncommon ×1–3 through 6, rare ×1–2 through 9, then a mixed
// uncommon/rare pack of 2–3.
func (g *Generator) GenerateEnemies(depth int) []*enemy.Instance {
	var tier string
	var count int
	switch {
	case depth <= 3:
		tier, count = enemy.TierCommon, dice.Between(g.src, 1, 2)
	case depth <= 6:
		tier, count = enemy.TierUncommon, dice.Between(g.src, 1, 3)
	case depth <= 9:
		tier, count = enemy.TierRare, dice.Between(g.src, 1, 2)
	default:
		tier, count = enemy.TierUncommon, dice.Between(g.src, 2, 3)
		if g.src.Intn(2) == 1 {
			tier = enemy.TierRare
		}
	}

	pool := g.enemies.ByTier(tier)
	instances := make([]*enemy.Instance, 0, count)
	for i := 0; i < count; i++ {
		tmpl := pool[g.src.Intn(len(pool))]
		instances = append(instances, enemy.NewInstance(uuid.NewString(), tmpl, depth))
	}
	return instances
}

// bossForDepth spawns the boss guarding the given depth: pool index
// (depth/5)−1, clamped to the final boss when depth outruns the pool.
func (g *Generator) bossForDepth(depth int) *enemy.Instance {
	pool := g.enemies.Bosses()
	idx := depth/BossDepthInterval - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(pool) {
		idx = len(pool) - 1
	}
	return enemy.NewInstance(uuid.NewString(), pool[idx], depth)
}

// GenerateLoot rolls up to count item drops of minTier or better. Each slot
// draws a category uniformly among weapon/armor/consumable, runs an
// independent drop-rate trial per candidate, and picks uniformly among the
// survivors; a slot with no survivors drops nothing, so count is a maximum.
//
// Postcondition: Returns item definition IDs, possibly with duplicates.
func (g *Generator) GenerateLoot(minTier string, count int) []string {
	categories := []string{item.KindWeapon, item.KindArmor, item.KindConsumable}

	var loot []string
	for i := 0; i < count; i++ {
		kind := categories[g.src.Intn(len(categories))]

		var survivors []*item.ItemDef
		for _, def := range g.items.ByKind(kind) {
			if !def.IsMinTier(minTier) {
				continue
			}
			if dice.Chance(g.src, def.DropRate) {
				survivors = append(survivors, def)
			}
		}
		if len(survivors) == 0 {
			continue
		}
		loot = append(loot, survivors[g.src.Intn(len(survivors))].ID)
	}
	return loot
}

// GenerateLevel builds one linear level at the given depth: rooms chained by
// north exits, the final room boss-typed on boss depths, and a trailing
// to-be-generated exit so the next level resolves lazily on traversal.
//
// Precondition: depth must be >= 1.
// Postcondition: Returns roomsPerLevel rooms in traversal order; every room
// but the last exits north to its successor.
func (g *Generator) GenerateLevel(depth int) []*Room {
	rooms := make([]*Room, 0, g.roomsPerLevel)
	for i := 0; i < g.roomsPerLevel; i++ {
		if i == g.roomsPerLevel-1 && depth%BossDepthInterval == 0 {
			rooms = append(rooms, g.GenerateRoom(depth, RoomBoss))
		} else {
			rooms = append(rooms, g.GenerateRoom(depth, ""))
		}
	}
	for i := 0; i < len(rooms)-1; i++ {
		rooms[i].Exits[North] = rooms[i+1].ID
	}
	rooms[len(rooms)-1].Exits[North] = GeneratedExit
	return rooms
}

// StartingRoom builds the fixed entrance hub: enemy-free, cleared,
// discovered, stocked with two common drops, and exiting north into the
// not-yet-generated first level.
func (g *Generator) StartingRoom() *Room {
	return &Room{
		ID:         uuid.NewString(),
		Type:       RoomCorridor,
		SystemName: "Integration Hub Entrance",
		Description: "🏛️ **THE INTEGRATION HUB**\n\n" +
			"You stand at the entrance to the Integration Dungeon. Ancient APIs hum in the distance. " +
			"Somewhere deep below, legacy systems await connection. The air smells of stale JSON and " +
			"broken promises.\n\n" +
			"Your journey begins here, Integration Hero.",
		Exits:        map[string]string{North: GeneratedExit},
		Items:        g.GenerateLoot(item.TierCommon, 2),
		IsCleared:    true,
		IsDiscovered: true,
		Depth:        1,
	}
}
