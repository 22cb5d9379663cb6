package dungeon

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
)

// FlavorSet holds the narrative pools for one room type: the system names a
// room can be called and the descriptions it can carry.
type FlavorSet struct {
	Type         string   `yaml:"type"`
	SystemNames  []string `yaml:"system_names"`
	Descriptions []string `yaml:"descriptions"`
}

// Validate checks the flavor set for completeness.
//
// Postcondition: Returns nil iff the type is a known room type and both pools
// are non-empty.
func (f *FlavorSet) Validate() error {
	switch f.Type {
	case RoomCorridor, RoomChamber, RoomTreasure, RoomTrap, RoomBoss:
	default:
		return fmt.Errorf("room flavor: unknown room type %q", f.Type)
	}
	if len(f.SystemNames) == 0 {
		return fmt.Errorf("room flavor %q: system_names must not be empty", f.Type)
	}
	if len(f.Descriptions) == 0 {
		return fmt.Errorf("room flavor %q: descriptions must not be empty", f.Type)
	}
	return nil
}

// Flavors maps each room type to its narrative pools. Generation requires a
// set for every room type, so a missing file fails at load time, not at the
// first unlucky room roll.
type Flavors map[string]*FlavorSet

// Pick draws a random system name and description for roomType.
//
// Precondition: roomType must be present (guaranteed by LoadFlavors).
func (f Flavors) Pick(roomType string, src dice.Source) (systemName, description string) {
	set := f[roomType]
	systemName = set.SystemNames[src.Intn(len(set.SystemNames))]
	description = set.Descriptions[src.Intn(len(set.Descriptions))]
	return systemName, description
}

// LoadFlavors reads every *.yaml file in dir, one FlavorSet per file, and
// requires exactly one set for each of the five room types.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns a Flavors covering all room types, or an error on
// the first parse, validation, duplicate, or coverage failure.
func LoadFlavors(dir string) (Flavors, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading room flavor dir %q: %w", dir, err)
	}

	flavors := make(Flavors)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		var set FlavorSet
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&set); err != nil {
			return nil, fmt.Errorf("parsing %q: %w", path, err)
		}
		if err := set.Validate(); err != nil {
			return nil, fmt.Errorf("validating %q: %w", path, err)
		}
		if _, exists := flavors[set.Type]; exists {
			return nil, fmt.Errorf("room flavor: duplicate set for type %q", set.Type)
		}
		flavors[set.Type] = &set
	}

	for _, roomType := range []string{RoomCorridor, RoomChamber, RoomTreasure, RoomTrap, RoomBoss} {
		if _, ok := flavors[roomType]; !ok {
			return nil, fmt.Errorf("room flavor: no set for type %q", roomType)
		}
	}
	return flavors, nil
}
