// Package enemy provides tiered enemy template definitions and live combat
// instances, including depth-based health scaling and special-ability rolls.
package enemy

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
)

// Tier constants for Template.Tier, ordered weakest to strongest. Boss is
// reserved for the boss pool and never drawn by the depth tier policy.
const (
	TierCommon   = "common"
	TierUncommon = "uncommon"
	TierRare     = "rare"
	TierBoss     = "boss"
)

// DefaultEmoji decorates enemies whose template does not set one.
const DefaultEmoji = "👹"

var validTiers = map[string]bool{
	TierCommon:   true,
	TierUncommon: true,
	TierRare:     true,
	TierBoss:     true,
}

// Template defines a reusable enemy archetype loaded from YAML. MaxHP is the
// unscaled base; spawning applies the depth multiplier.
type Template struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Emoji       string `yaml:"emoji"`
	Description string `yaml:"description"`
	MaxHP       int    `yaml:"max_hp"`
	DamageDice  string `yaml:"damage_dice"`
	Armor       int    `yaml:"armor"`
	// Weakness is revealed by examine; Resistance is pure flavor.
	Weakness   string `yaml:"weakness"`
	Resistance string `yaml:"resistance"`
	// SpecialAbility names one of the engine-level abilities (see specials.go);
	// empty means none.
	SpecialAbility string `yaml:"special_ability"`
	// AbilityScript names a Lua script run on this enemy's turn in place of
	// its basic attack. Boss-tier only.
	AbilityScript string `yaml:"ability_script"`
	// ImmuneUntilExamined gates all incoming damage until the hero examines
	// this enemy.
	ImmuneUntilExamined bool   `yaml:"immune_until_examined"`
	XPReward            int    `yaml:"xp_reward"`
	GoldReward          int    `yaml:"gold_reward"`
	Tier                string `yaml:"tier"`
}

// Validate checks that the template satisfies basic invariants.
//
// Precondition: t must not be nil.
// Postcondition: Returns nil iff ID, Name, and Description are non-empty,
// MaxHP >= 1, DamageDice parses, Armor and rewards are non-negative, the tier
// is known, and any special ability is one the engine implements; returns an
// error on the first violation otherwise.
func (t *Template) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("enemy template: id must not be empty")
	}
	if t.Name == "" {
		return fmt.Errorf("enemy template %q: name must not be empty", t.ID)
	}
	if t.Description == "" {
		return fmt.Errorf("enemy template %q: description must not be empty", t.ID)
	}
	if t.MaxHP < 1 {
		return fmt.Errorf("enemy template %q: max_hp must be >= 1", t.ID)
	}
	if err := dice.Check(t.DamageDice); err != nil {
		return fmt.Errorf("enemy template %q: damage_dice %q is not valid dice notation: %w", t.ID, t.DamageDice, err)
	}
	if t.Armor < 0 {
		return fmt.Errorf("enemy template %q: armor must be >= 0", t.ID)
	}
	if t.XPReward < 0 {
		return fmt.Errorf("enemy template %q: xp_reward must be >= 0", t.ID)
	}
	if t.GoldReward < 0 {
		return fmt.Errorf("enemy template %q: gold_reward must be >= 0", t.ID)
	}
	if !validTiers[t.Tier] {
		return fmt.Errorf("enemy template %q: tier must be one of common, uncommon, rare, boss; got %q", t.ID, t.Tier)
	}
	if t.SpecialAbility != "" && !knownSpecials[t.SpecialAbility] {
		return fmt.Errorf("enemy template %q: unknown special_ability %q", t.ID, t.SpecialAbility)
	}
	if t.AbilityScript != "" && t.Tier != TierBoss {
		return fmt.Errorf("enemy template %q: ability_script is boss-tier only", t.ID)
	}
	return nil
}

// LoadTemplateFromBytes parses a single enemy template from raw YAML bytes.
// Unknown fields are rejected so content typos fail at load time.
//
// Postcondition: Returns a validated *Template with a non-empty Emoji, or an
// error.
func LoadTemplateFromBytes(data []byte) (*Template, error) {
	var tmpl Template
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parsing enemy template YAML: %w", err)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	if tmpl.Emoji == "" {
		tmpl.Emoji = DefaultEmoji
	}
	return &tmpl, nil
}

// LoadTemplates reads all *.yaml files in dir in lexical order and returns
// the parsed templates. Lexical order matters for the boss pool: the boss at
// index i guards depth 5×(i+1).
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns all templates or an error on the first parse or
// validate failure; on error, the partial result is discarded.
func LoadTemplates(dir string) ([]*Template, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading enemy dir %q: %w", dir, err)
	}

	var templates []*Template
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}

		tmpl, err := LoadTemplateFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		templates = append(templates, tmpl)
	}
	return templates, nil
}
