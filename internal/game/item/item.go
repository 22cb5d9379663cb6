// Package item defines the static item content: connector weapons, error
// handler armor, and recipe component consumables, loaded from YAML and
// indexed for loot generation and inventory lookups.
package item

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
)

// Kind constants for ItemDef.Kind.
const (
	KindWeapon     = "weapon"
	KindArmor      = "armor"
	KindConsumable = "consumable"
)

// validKinds is the set of valid ItemDef kinds.
var validKinds = map[string]bool{
	KindWeapon:     true,
	KindArmor:      true,
	KindConsumable: true,
}

// Tier constants for ItemDef.Tier, ordered weakest to strongest.
const (
	TierCommon    = "common"
	TierUncommon  = "uncommon"
	TierRare      = "rare"
	TierEpic      = "epic"
	TierLegendary = "legendary"
)

// tierRank orders tiers for minimum-tier loot filtering.
var tierRank = map[string]int{
	TierCommon:    0,
	TierUncommon:  1,
	TierRare:      2,
	TierEpic:      3,
	TierLegendary: 4,
}

// Consumable effect type constants for ItemDef.EffectType.
const (
	EffectHealHP     = "heal_hp"
	EffectHealMP     = "heal_mp"
	EffectCureStatus = "cure_status"
	EffectEscape     = "escape"
	EffectBuff       = "buff"
	EffectSpecial    = "special"
)

// validEffectTypes is the set of valid consumable effect types.
var validEffectTypes = map[string]bool{
	EffectHealHP:     true,
	EffectHealMP:     true,
	EffectCureStatus: true,
	EffectEscape:     true,
	EffectBuff:       true,
	EffectSpecial:    true,
}

// Armor special effect tags consumed by combat resolution.
const (
	SpecialSurviveLethal = "survive_lethal"
)

// ItemDef defines the static properties of an item loaded from YAML. Kind
// determines which of the kind-specific fields apply: DamageDice for
// weapons, Protection for armor, EffectType and EffectValue for consumables.
type ItemDef struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	Description   string  `yaml:"description"`
	Kind          string  `yaml:"kind"`
	Tier          string  `yaml:"tier"`
	DropRate      float64 `yaml:"drop_rate"`
	DamageDice    string  `yaml:"damage_dice"`
	Protection    int     `yaml:"protection"`
	SpecialEffect string  `yaml:"special_effect"`
	EffectType    string  `yaml:"effect_type"`
	EffectValue   string  `yaml:"effect_value"`
}

// Validate checks that the ItemDef satisfies its invariants, including the
// kind-specific field requirements.
//
// Precondition: d is non-nil.
// Postcondition: returns nil iff all fields are valid.
func (d *ItemDef) Validate() error {
	var errs []error
	if d.ID == "" {
		errs = append(errs, errors.New("ID must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("Name must not be empty"))
	}
	if !validKinds[d.Kind] {
		errs = append(errs, fmt.Errorf("Kind must be one of weapon, armor, consumable; got %q", d.Kind))
	}
	if _, ok := tierRank[d.Tier]; !ok {
		errs = append(errs, fmt.Errorf("Tier must be one of common, uncommon, rare, epic, legendary; got %q", d.Tier))
	}
	if d.DropRate < 0 || d.DropRate > 1 {
		errs = append(errs, fmt.Errorf("DropRate must be in [0, 1]; got %v", d.DropRate))
	}
	switch d.Kind {
	case KindWeapon:
		if err := dice.Check(d.DamageDice); err != nil {
			errs = append(errs, fmt.Errorf("DamageDice: %w", err))
		}
	case KindArmor:
		if d.Protection < 0 {
			errs = append(errs, errors.New("Protection must be >= 0"))
		}
	case KindConsumable:
		errs = append(errs, d.validateConsumable()...)
	}
	if len(errs) > 0 {
		return fmt.Errorf("item validation failed: %v", errs)
	}
	return nil
}

func (d *ItemDef) validateConsumable() []error {
	var errs []error
	if !validEffectTypes[d.EffectType] {
		errs = append(errs, fmt.Errorf("EffectType must be a known consumable effect; got %q", d.EffectType))
		return errs
	}
	switch d.EffectType {
	case EffectHealHP, EffectHealMP:
		if _, err := strconv.Atoi(d.EffectValue); err != nil {
			errs = append(errs, fmt.Errorf("EffectValue must be an integer amount for %s; got %q", d.EffectType, d.EffectValue))
		}
	case EffectCureStatus, EffectSpecial:
		if d.EffectValue == "" {
			errs = append(errs, fmt.Errorf("EffectValue is required for %s", d.EffectType))
		}
	case EffectBuff:
		if _, _, err := parseBuffValue(d.EffectValue); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// IsMinTier reports whether the item's tier is at or above min.
//
// Precondition: both tiers must be valid tier constants.
func (d *ItemDef) IsMinTier(min string) bool {
	return tierRank[d.Tier] >= tierRank[min]
}

// EffectAmount returns the numeric effect value for heal consumables, or 0
// when the value is not numeric.
func (d *ItemDef) EffectAmount() int {
	v, err := strconv.Atoi(d.EffectValue)
	if err != nil {
		return 0
	}
	return v
}

// BuffEffect returns the status effect type and duration encoded in a buff
// consumable's EffectValue ("buffered:3" applies buffered for 3 turns).
//
// Precondition: d.EffectType == EffectBuff and d validated.
func (d *ItemDef) BuffEffect() (effectType string, duration int) {
	effectType, duration, _ = parseBuffValue(d.EffectValue)
	return effectType, duration
}

func parseBuffValue(v string) (string, int, error) {
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, fmt.Errorf("EffectValue must be \"effect_type:duration\" for buff; got %q", v)
	}
	duration, err := strconv.Atoi(parts[1])
	if err != nil || duration < 1 {
		return "", 0, fmt.Errorf("EffectValue duration must be a positive integer for buff; got %q", v)
	}
	return parts[0], duration, nil
}

// LoadItems reads all *.yaml and *.yml files from dir, parses each as an
// ItemDef, validates it, and returns the collected slice in filename order.
//
// Precondition: dir is a readable directory path.
// Postcondition: returns all valid ItemDefs or the first encountered error.
func LoadItems(dir string) ([]*ItemDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("LoadItems: cannot read directory %q: %w", dir, err)
	}

	var items []*ItemDef
	for _, entry := range entries {
		ext := filepath.Ext(entry.Name())
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("LoadItems: cannot read file %q: %w", path, err)
		}
		var d ItemDef
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("LoadItems: cannot parse file %q: %w", path, err)
		}
		if err := d.Validate(); err != nil {
			return nil, fmt.Errorf("LoadItems: invalid item in %q: %w", path, err)
		}
		items = append(items, &d)
	}
	return items, nil
}
