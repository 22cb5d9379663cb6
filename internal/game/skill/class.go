package skill

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StatBlock is a bundle of additive modifiers to the four primary stats.
// Used both for one-time creation bonuses and per-level growth.
type StatBlock struct {
	Throughput      int `yaml:"throughput"`
	FormulaPower    int `yaml:"formula_power"`
	RateAgility     int `yaml:"rate_agility"`
	ErrorResilience int `yaml:"error_resilience"`
}

// IsZero reports whether every modifier in the block is zero.
func (b StatBlock) IsZero() bool {
	return b == StatBlock{}
}

// Class defines a playable character class: its creation-time stat bonuses,
// permanent uptime/credit pool modifiers, per-level growth, and skill list.
//
// UptimeMod and CreditsMod are permanent terms in the derived-maximum
// formulas, not one-shot grants; a warrior's +20 uptime applies at every
// recalculation.
//
// Precondition: ID, Name, and a non-zero Growth block must be present after
// loading.
type Class struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Flair       string     `yaml:"flair"` // sigil shown on the class's level-up stat line
	Creation    StatBlock  `yaml:"creation"`
	UptimeMod   int        `yaml:"uptime_mod"`
	CreditsMod  int        `yaml:"credits_mod"`
	Growth      StatBlock  `yaml:"growth"`
	Skills      []SkillDef `yaml:"skills"`
}

// Validate checks the class definition and every skill it carries.
//
// Precondition: c must be non-nil.
// Postcondition: Returns nil if the class is usable, or an error naming
// every violated field including per-skill failures.
func (c *Class) Validate() error {
	var problems []string
	if c.ID == "" {
		problems = append(problems, "id must be non-empty")
	}
	if c.Name == "" {
		problems = append(problems, "name must be non-empty")
	}
	if c.Growth.IsZero() {
		problems = append(problems, "growth must raise at least one stat")
	}
	seen := make(map[string]bool, len(c.Skills))
	for i := range c.Skills {
		s := &c.Skills[i]
		if err := s.Validate(); err != nil {
			problems = append(problems, err.Error())
			continue
		}
		if seen[s.ID] {
			problems = append(problems, fmt.Sprintf("duplicate skill id %q", s.ID))
		}
		seen[s.ID] = true
	}
	if len(problems) > 0 {
		return fmt.Errorf("class %q invalid: %s", c.ID, strings.Join(problems, "; "))
	}
	return nil
}

// LoadClasses reads all .yaml files in dir and parses each as a Class.
// Files are processed in lexical filename order.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed, validated classes or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var classes []*Class
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var c Class
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil {
			return nil, fmt.Errorf("parsing class file %s: %w", path, err)
		}
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		classes = append(classes, &c)
	}
	return classes, nil
}
