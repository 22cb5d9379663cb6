// Package main provides the content validator. It loads every YAML content
// table the game server loads, runs the cross-table reference checks, and
// exits non-zero when any table would fail at server startup.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/integration-quest/internal/game/dice"
	"github.com/cory-johannsen/integration-quest/internal/game/dungeon"
	"github.com/cory-johannsen/integration-quest/internal/game/effect"
	"github.com/cory-johannsen/integration-quest/internal/game/enemy"
	"github.com/cory-johannsen/integration-quest/internal/game/item"
	"github.com/cory-johannsen/integration-quest/internal/game/skill"
	"github.com/cory-johannsen/integration-quest/internal/scripting"
)

func main() {
	contentDir := flag.String("content", "", "path to YAML content directory")
	scriptDir := flag.String("scripts", "", "optional path to Lua boss ability scripts")
	flag.Parse()

	if *contentDir == "" {
		fmt.Fprintln(os.Stderr, "usage: validate-content -content <dir> [-scripts <dir>]")
		os.Exit(1)
	}

	start := time.Now()
	var problems []string
	report := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	classes, err := skill.LoadRegistry(filepath.Join(*contentDir, "skills"))
	if err != nil {
		report("classes: %v", err)
	}
	items, err := item.LoadRegistry(filepath.Join(*contentDir, "items"))
	if err != nil {
		report("items: %v", err)
	}
	effects, err := effect.LoadDirectory(filepath.Join(*contentDir, "effects"))
	if err != nil {
		report("effects: %v", err)
	}
	enemies, err := enemy.LoadRegistry(filepath.Join(*contentDir, "enemies"))
	if err != nil {
		report("enemies: %v", err)
	}
	flavors, err := dungeon.LoadFlavors(filepath.Join(*contentDir, "rooms"))
	if err != nil {
		report("rooms: %v", err)
	}

	if items != nil {
		if _, err := item.LoadStartingGear(filepath.Join(*contentDir, "starting_gear.yaml"), items); err != nil {
			report("starting gear: %v", err)
		}
	}

	// Consumables name effect types the registry must know, or use_item
	// would apply ghosts at runtime.
	if items != nil && effects != nil {
		for _, def := range items.ByKind(item.KindConsumable) {
			switch def.EffectType {
			case item.EffectCureStatus:
				if _, ok := effects.Get(def.EffectValue); !ok {
					report("item %q cures unknown effect %q", def.ID, def.EffectValue)
				}
			case item.EffectBuff:
				effectType, _ := def.BuffEffect()
				if _, ok := effects.Get(effectType); !ok {
					report("item %q applies unknown effect %q", def.ID, effectType)
				}
			}
		}
	}

	// The generator re-checks that every tier has at least one template and
	// that loot candidates exist.
	if items != nil && enemies != nil && flavors != nil {
		src := dice.NewCryptoSource()
		if _, err := dungeon.NewGenerator(enemies, items, flavors, src, dungeon.Config{}); err != nil {
			report("generator: %v", err)
		}
	}

	if enemies != nil {
		checkBossScripts(enemies, *scriptDir, report)
	}

	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "error: %s\n", p)
		}
		fmt.Fprintf(os.Stderr, "%d problem(s) found\n", len(problems))
		os.Exit(1)
	}

	fmt.Printf("content ok: %d classes, %d items, %d effects, %d enemies (%d bosses), %d room flavors in %s\n",
		len(classes.Classes()), items.Len(), len(effects.All()),
		enemies.Len(), len(enemies.Bosses()), len(flavors),
		time.Since(start).Round(time.Millisecond))
}

// checkBossScripts verifies that every ability_script a boss template names
// resolves to a loadable Lua script. Without a script directory the server
// falls back to basic attacks, so a missing directory only warns.
func checkBossScripts(enemies *enemy.Registry, scriptDir string, report func(string, ...any)) {
	var scripted []*enemy.Template
	for _, tmpl := range enemies.Bosses() {
		if tmpl.AbilityScript != "" {
			scripted = append(scripted, tmpl)
		}
	}
	if len(scripted) == 0 {
		return
	}
	if scriptDir == "" {
		fmt.Fprintf(os.Stderr, "warning: %d boss template(s) name ability scripts; pass -scripts to verify them\n", len(scripted))
		return
	}

	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop()), zap.NewNop(), 0)
	defer mgr.Close()
	if err := mgr.LoadDir(scriptDir); err != nil {
		report("scripts: %v", err)
		return
	}
	for _, tmpl := range scripted {
		if !mgr.Has(tmpl.AbilityScript) {
			report("boss %q names missing ability script %q", tmpl.ID, tmpl.AbilityScript)
		}
	}
}
